package modem

import (
	"fmt"
	"math"
)

// FSKConfig bundles every parameter the encode and decode paths share.
// Sender and receiver cannot interoperate unless their configs agree, so a
// config is built once per session and never mutated.
type FSKConfig struct {
	SampleRate     int     // samples per second
	SymbolDuration float64 // seconds per symbol window

	MarkFreq     float64 // tone carrying a 0 bit
	SpaceFreq    float64 // tone carrying a 1 bit
	PreambleFreq float64 // frame sync tone

	MagnitudeThreshold float64 // spectral peaks below this count as noise
	FreqTolerance      float64 // Hz within which a peak matches a tone
	PreambleCount      int     // sync symbols sent before the data bits

	Amplitude float64 // peak level of synthesized tones, in (0, 1]
	EdgeRamp  float64 // seconds of linear fade at each end of a tone
}

// DefaultConfig returns the parameters the bench rigs are tuned for. The
// thresholds suit a short acoustic path; a different speaker or microphone
// placement usually needs its own numbers.
func DefaultConfig() FSKConfig {
	return FSKConfig{
		SampleRate:         44100,
		SymbolDuration:     0.2,
		MarkFreq:           1200,
		SpaceFreq:          1800,
		PreambleFreq:       2400,
		MagnitudeThreshold: 100,
		FreqTolerance:      50,
		PreambleCount:      2,
		Amplitude:          0.5,
		EdgeRamp:           0.01,
	}
}

// WindowSize is the symbol window length in samples. A non-integer product
// of rate and duration rounds to the nearest sample; encode and decode both
// use this value, so the two stay aligned.
func (c FSKConfig) WindowSize() int {
	return int(math.Round(c.SymbolDuration * float64(c.SampleRate)))
}

// Validate rejects configs that cannot work before any audio is produced.
// Beyond positivity checks, the three tones must be pairwise separated by
// more than twice the frequency tolerance; otherwise one spectral peak could
// match two symbols at once and decoding would be ambiguous.
func (c FSKConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.SymbolDuration <= 0 {
		return fmt.Errorf("symbol duration must be positive, got %g", c.SymbolDuration)
	}
	if c.WindowSize() < 2 {
		return fmt.Errorf("symbol window of %d samples is too short to analyze", c.WindowSize())
	}
	nyquist := float64(c.SampleRate) / 2
	tones := []struct {
		name string
		freq float64
	}{
		{"mark", c.MarkFreq},
		{"space", c.SpaceFreq},
		{"preamble", c.PreambleFreq},
	}
	for _, tone := range tones {
		if tone.freq <= 0 {
			return fmt.Errorf("%s frequency must be positive, got %g", tone.name, tone.freq)
		}
		if tone.freq >= nyquist {
			return fmt.Errorf("%s frequency %g Hz is not below the Nyquist limit %g Hz", tone.name, tone.freq, nyquist)
		}
	}
	if c.FreqTolerance < 0 {
		return fmt.Errorf("frequency tolerance must not be negative, got %g", c.FreqTolerance)
	}
	for i, a := range tones {
		for _, b := range tones[i+1:] {
			if math.Abs(a.freq-b.freq) <= 2*c.FreqTolerance {
				return fmt.Errorf("%s frequency %g Hz and %s frequency %g Hz are within twice the tolerance %g Hz",
					a.name, a.freq, b.name, b.freq, c.FreqTolerance)
			}
		}
	}
	if c.MagnitudeThreshold <= 0 {
		return fmt.Errorf("magnitude threshold must be positive, got %g", c.MagnitudeThreshold)
	}
	if c.PreambleCount < 1 {
		return fmt.Errorf("preamble count must be at least 1, got %d", c.PreambleCount)
	}
	if c.Amplitude <= 0 || c.Amplitude > 1 {
		return fmt.Errorf("amplitude must be in (0, 1], got %g", c.Amplitude)
	}
	if c.EdgeRamp < 0 {
		return fmt.Errorf("edge ramp must not be negative, got %g", c.EdgeRamp)
	}
	return nil
}

// freq maps a symbol to its configured tone.
func (c FSKConfig) freq(s Symbol) float64 {
	switch s {
	case SymbolMark:
		return c.MarkFreq
	case SymbolSpace:
		return c.SpaceFreq
	default:
		return c.PreambleFreq
	}
}
