package device

import (
	"reflect"
	"testing"
)

func TestPlayerStreamsAndSignals(t *testing.T) {
	var p Player
	track := make([]float64, BufferSize+100)
	for i := range track {
		track[i] = float64(i%7) / 10
	}
	done := p.Play(track)

	out := alloc()
	p.Feed(out)
	if !reflect.DeepEqual(out, track[:BufferSize]) {
		t.Error("first buffer does not match the head of the track")
	}
	select {
	case <-done:
		t.Fatal("done closed before the track finished")
	default:
	}
	if !p.Pending() {
		t.Error("Pending is false with samples still queued")
	}

	p.Feed(out)
	if !reflect.DeepEqual(out[:100], track[BufferSize:]) {
		t.Error("second buffer does not match the tail of the track")
	}
	for i, v := range out[100:] {
		if v != 0 {
			t.Errorf("sample %d after the track is %g, not zero", 100+i, v)
			break
		}
	}
	select {
	case <-done:
	default:
		t.Fatal("done not closed after the final samples were written")
	}
	if p.Pending() {
		t.Error("Pending is true after the track drained")
	}

	p.Feed(out)
	for i, v := range out {
		if v != 0 {
			t.Errorf("idle player wrote %g at %d", v, i)
			break
		}
	}
}

func TestPlayerQueuesInOrder(t *testing.T) {
	var p Player
	first := p.Play([]float64{1, 1, 1})
	second := p.Play([]float64{2, 2})

	out := make([]float64, 5)
	p.Feed(out)
	if !reflect.DeepEqual(out, []float64{1, 1, 1, 2, 2}) {
		t.Errorf("tracks played as %v", out)
	}
	select {
	case <-first:
	default:
		t.Error("first track not signalled")
	}
	select {
	case <-second:
	default:
		t.Error("second track not signalled")
	}
}

func TestPlayerEmptyTrack(t *testing.T) {
	var p Player
	select {
	case <-p.Play(nil):
	default:
		t.Fatal("empty track did not complete immediately")
	}
}
