package link

import (
	"context"
	"math"
	"sync"
	"time"
)

// PowerGate tracks the short-term input level so the link can hold a
// transmission until the channel is quiet. A zero threshold disables the
// gate entirely.
type PowerGate struct {
	Threshold float64 // RMS at or above this counts as busy
	Window    int     // samples of history, 0 picks a default

	mu     sync.Mutex
	ring   []float64 // squared samples
	pos    int
	filled int
	sum    float64
}

const defaultGateWindow = 4096

// Update folds freshly captured samples into the level estimate. It runs on
// the stream callback, so it keeps a running sum instead of rescanning the
// window.
func (g *PowerGate) Update(in []float64) {
	if g.Threshold <= 0 {
		return
	}
	g.mu.Lock()
	if g.ring == nil {
		w := g.Window
		if w <= 0 {
			w = defaultGateWindow
		}
		g.ring = make([]float64, w)
	}
	for _, v := range in {
		sq := v * v
		g.sum += sq - g.ring[g.pos]
		g.ring[g.pos] = sq
		g.pos++
		if g.pos == len(g.ring) {
			g.pos = 0
		}
		if g.filled < len(g.ring) {
			g.filled++
		}
	}
	// The running sum accumulates float error; it must never go negative.
	if g.sum < 0 {
		g.sum = 0
	}
	g.mu.Unlock()
}

// Level is the RMS over the samples currently in the window.
func (g *PowerGate) Level() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.filled == 0 || g.sum <= 0 {
		return 0
	}
	return math.Sqrt(g.sum / float64(g.filled))
}

// WaitIdle blocks until the level drops below the threshold or ctx ends.
func (g *PowerGate) WaitIdle(ctx context.Context) error {
	if g.Threshold <= 0 {
		return nil
	}
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if g.Level() < g.Threshold {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
