package device

import "testing"

func TestRecorderChunksOverlap(t *testing.T) {
	r := NewRecorder(700, 4)
	feed := make([]float64, BufferSize)
	for i := range feed {
		feed[i] = float64(i)
	}
	// The fed stream is three ramps back to back, so stream[i] = i mod 512.
	stream := func(i int) float64 { return float64(i % BufferSize) }

	r.Feed(feed)
	select {
	case <-r.Chunks():
		t.Fatal("chunk emitted before enough samples arrived")
	default:
	}

	r.Feed(feed)
	r.Feed(feed)

	first := <-r.Chunks()
	if len(first) != 700 {
		t.Fatalf("chunk length %d, expected 700", len(first))
	}
	for i := range first {
		if first[i] != stream(i) {
			t.Fatalf("first chunk diverges at %d: %g", i, first[i])
		}
	}

	// The next chunk must start half a chunk into the stream.
	second := <-r.Chunks()
	for i := range second {
		if second[i] != stream(350+i) {
			t.Fatalf("second chunk diverges at %d: %g", i, second[i])
		}
	}
}

func TestRecorderDropsWhenFull(t *testing.T) {
	r := NewRecorder(100, 1)
	r.Feed(make([]float64, 1000))
	// Chunks complete at sample 100 and every 50 after: 19 total, 1 kept.
	if got := r.Dropped(); got != 18 {
		t.Errorf("Dropped = %d, expected 18", got)
	}
}
