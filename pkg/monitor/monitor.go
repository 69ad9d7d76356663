// Package monitor quantifies what a microphone actually picked up. These
// numbers answer the bench questions that come before any decoding: is the
// input alive, how loud is the room, did anything move when the pump was
// told to act.
package monitor

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes one recording.
type Stats struct {
	Samples  int
	Duration time.Duration
	RMS      float64
	Peak     float64 // largest absolute sample
	Mean     float64 // DC offset; a healthy capture sits near zero
	StdDev   float64
}

// Analyze computes level statistics for buf. A nonzero mean on a supposedly
// quiet capture usually means a biased or broken input path.
func Analyze(buf []float64, sampleRate int) Stats {
	s := Stats{Samples: len(buf)}
	if sampleRate > 0 {
		s.Duration = time.Duration(float64(len(buf)) / float64(sampleRate) * float64(time.Second))
	}
	if len(buf) == 0 {
		return s
	}
	s.RMS = floats.Norm(buf, 2) / math.Sqrt(float64(len(buf)))
	for _, v := range buf {
		if a := math.Abs(v); a > s.Peak {
			s.Peak = a
		}
	}
	s.Mean, s.StdDev = stat.MeanStdDev(buf, nil)
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	return s
}

// Comparison relates a command-window recording to a quiet baseline.
type Comparison struct {
	RMSRatio  float64
	PeakRatio float64
	DeltaDB   float64 // RMS change in decibels
	Active    bool    // RMS rose by at least the requested factor
}

// Compare reports how far active lifted the signal over baseline. minRatio
// is the RMS factor that counts as real activity; anything at or below 1
// falls back to a factor of 2. A dead baseline against a live recording
// compares as infinitely active.
func Compare(baseline, active Stats, minRatio float64) Comparison {
	if minRatio <= 1 {
		minRatio = 2
	}
	var c Comparison
	switch {
	case baseline.RMS > 0:
		c.RMSRatio = active.RMS / baseline.RMS
		c.DeltaDB = 20 * math.Log10(c.RMSRatio)
	case active.RMS > 0:
		c.RMSRatio = math.Inf(1)
		c.DeltaDB = math.Inf(1)
	}
	switch {
	case baseline.Peak > 0:
		c.PeakRatio = active.Peak / baseline.Peak
	case active.Peak > 0:
		c.PeakRatio = math.Inf(1)
	}
	c.Active = c.RMSRatio >= minRatio
	return c
}

// CountClicks counts threshold crossings separated by at least minGap, the
// way one counts pump relay clicks in a capture. Crossings closer together
// than the gap collapse into a single click.
func CountClicks(buf []float64, sampleRate int, threshold float64, minGap time.Duration) int {
	if threshold <= 0 || sampleRate <= 0 {
		return 0
	}
	gap := int(minGap.Seconds() * float64(sampleRate))
	if gap < 1 {
		gap = 1
	}
	count := 0
	next := 0
	for i, v := range buf {
		if i < next {
			continue
		}
		if math.Abs(v) >= threshold {
			count++
			next = i + gap
		}
	}
	return count
}

// ClickThreshold derives a crossing threshold from a quiet baseline: the
// louder of twice the baseline peak and four times its RMS, a rule of
// thumb that survives both hissy and dead-quiet rooms.
func ClickThreshold(baseline Stats) float64 {
	return math.Max(2*baseline.Peak, 4*baseline.RMS)
}
