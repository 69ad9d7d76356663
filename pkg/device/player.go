package device

import "sync"

// Player streams queued tracks into a device's output callbacks, zero
// filling whenever nothing is queued. Play may be called from any
// goroutine; Feed must only run on the stream callback.
type Player struct {
	mu    sync.Mutex
	queue []*track
}

type track struct {
	samples []float64
	pos     int
	done    chan struct{}
}

// Play schedules samples for playback behind whatever is already queued.
// The returned channel closes once the final sample has been handed to the
// device; the sound itself still trails by the device's output latency.
func (p *Player) Play(samples []float64) <-chan struct{} {
	t := &track{samples: samples, done: make(chan struct{})}
	if len(samples) == 0 {
		close(t.done)
		return t.done
	}
	p.mu.Lock()
	p.queue = append(p.queue, t)
	p.mu.Unlock()
	return t.done
}

// Pending reports whether any queued track still has samples to write.
func (p *Player) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue) > 0
}

// Feed fills out from the head of the queue.
func (p *Player) Feed(out []float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := 0
	for i < len(out) && len(p.queue) > 0 {
		t := p.queue[0]
		n := copy(out[i:], t.samples[t.pos:])
		t.pos += n
		i += n
		if t.pos == len(t.samples) {
			close(t.done)
			p.queue = p.queue[1:]
		}
	}
	for ; i < len(out); i++ {
		out[i] = 0
	}
}
