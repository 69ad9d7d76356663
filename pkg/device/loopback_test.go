package device

import (
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/exp/rand"
)

func TestLoopback(t *testing.T) {
	lastOutput := alloc()
	rng := rand.New(rand.NewSource(1))
	var ticks, mismatches atomic.Int64

	var dev Device = &Loopback{SampleRate: 48000}
	err := dev.Start(func(in, out []float64) {
		ticks.Add(1)
		if !reflect.DeepEqual(in, lastOutput) {
			mismatches.Add(1)
		}
		for i := range out {
			out[i] = rng.Float64()*2 - 1
		}
		copy(lastOutput, out)
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if err := dev.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if ticks.Load() == 0 {
		t.Fatal("loopback never invoked the callback")
	}
	if n := mismatches.Load(); n != 0 {
		t.Errorf("%d callbacks saw input that was not the previous output", n)
	}
}
