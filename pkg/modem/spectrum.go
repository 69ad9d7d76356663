package modem

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// Detection is the dominant spectral component of one analysis window.
type Detection struct {
	Freq      float64 // Hz
	Magnitude float64 // raw FFT peak magnitude
}

// analyzer finds the dominant tone in fixed-size windows. It owns an FFT
// plan and scratch buffers, so decode builds a fresh one per call instead of
// hanging it off the Modem; the Modem stays free of mutable state and can be
// shared between goroutines.
type analyzer struct {
	fft        *fourier.FFT
	sampleRate float64
	scratch    []float64
	coeffs     []complex128
}

func newAnalyzer(size, sampleRate int) *analyzer {
	return &analyzer{
		fft:        fourier.NewFFT(size),
		sampleRate: float64(sampleRate),
		scratch:    make([]float64, size),
		coeffs:     make([]complex128, size/2+1),
	}
}

// dominantTone applies a Hann window to buf and returns the strongest
// frequency bin. A buf shorter than the analyzer size is zero padded, so a
// trailing partial window still yields a best-effort estimate. Silence comes
// back with magnitude near zero and an arbitrary frequency; the magnitude
// threshold is what decides significance, never the frequency alone.
func (a *analyzer) dominantTone(buf []float64) Detection {
	n := copy(a.scratch, buf)
	for i := n; i < len(a.scratch); i++ {
		a.scratch[i] = 0
	}
	window.Hann(a.scratch)
	a.fft.Coefficients(a.coeffs, a.scratch)

	best := 0
	bestMag := 0.0
	for i, c := range a.coeffs {
		if mag := cmplx.Abs(c); mag > bestMag {
			best, bestMag = i, mag
		}
	}
	return Detection{
		Freq:      a.fft.Freq(best) * a.sampleRate,
		Magnitude: bestMag,
	}
}

// matches reports whether d is a confident detection of the expected tone.
// Both legs are required: the frequency must land within the tolerance and
// the magnitude must clear the threshold.
func (c FSKConfig) matches(d Detection, freq float64) bool {
	return d.Magnitude >= c.MagnitudeThreshold && math.Abs(d.Freq-freq) <= c.FreqTolerance
}

// classify maps a detection onto the symbol alphabet. Validate guarantees
// the tones sit further apart than twice the tolerance, so at most one of
// the three tests can pass.
func (c FSKConfig) classify(d Detection) Symbol {
	switch {
	case c.matches(d, c.MarkFreq):
		return SymbolMark
	case c.matches(d, c.SpaceFreq):
		return SymbolSpace
	case c.matches(d, c.PreambleFreq):
		return SymbolPreamble
	default:
		return symbolInvalid
	}
}
