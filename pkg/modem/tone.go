package modem

import "math"

// Symbol is one tone slot in a frame.
type Symbol uint8

const (
	SymbolMark     Symbol = iota // data bit 0
	SymbolSpace                  // data bit 1
	SymbolPreamble               // frame sync

	symbolInvalid // detection produced no confident classification
)

func (s Symbol) String() string {
	switch s {
	case SymbolMark:
		return "mark"
	case SymbolSpace:
		return "space"
	case SymbolPreamble:
		return "preamble"
	default:
		return "invalid"
	}
}

// synthesize renders the symbol sequence as one continuous sample buffer,
// each symbol occupying exactly one window.
func (c FSKConfig) synthesize(symbols []Symbol) []float64 {
	size := c.WindowSize()
	out := make([]float64, 0, len(symbols)*size)
	for _, s := range symbols {
		out = c.appendTone(out, c.freq(s), size)
	}
	return out
}

// appendTone appends size samples of a sine at freq, starting at phase zero
// so every tone is reproducible sample for sample. A short linear ramp at
// each end removes the click the speaker would otherwise emit on the edge;
// tones too short to carry both ramps are left unshaped.
func (c FSKConfig) appendTone(dst []float64, freq float64, size int) []float64 {
	ramp := int(c.EdgeRamp * float64(c.SampleRate))
	shape := ramp > 0 && size > 2*ramp
	for i := 0; i < size; i++ {
		t := float64(i) / float64(c.SampleRate)
		v := c.Amplitude * math.Sin(2*math.Pi*freq*t)
		if shape {
			switch {
			case i < ramp:
				v *= float64(i) / float64(ramp)
			case i >= size-ramp:
				v *= float64(size-1-i) / float64(ramp)
			}
		}
		dst = append(dst, v)
	}
	return dst
}
