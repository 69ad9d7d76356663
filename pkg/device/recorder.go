package device

import "sync/atomic"

// Recorder groups input callbacks into fixed-size chunks for offline
// analysis. Consecutive chunks overlap by half, so any event no longer
// than half a chunk lands whole in at least one of them instead of being
// split across a boundary. Feed runs on the stream callback and never
// blocks: when the consumer falls behind, finished chunks are discarded
// and counted rather than stalling the audio thread.
type Recorder struct {
	chunkSize int
	hop       int
	chunks    chan []float64
	pending   []float64
	dropped   atomic.Int64
}

func NewRecorder(chunkSize, queue int) *Recorder {
	return &Recorder{
		chunkSize: chunkSize,
		hop:       max(chunkSize/2, 1),
		chunks:    make(chan []float64, queue),
	}
}

// Chunks delivers completed chunks, each exactly chunkSize samples.
func (r *Recorder) Chunks() <-chan []float64 {
	return r.chunks
}

// Dropped reports how many chunks were discarded because the consumer
// lagged.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Feed appends captured samples and emits any chunks they complete.
func (r *Recorder) Feed(in []float64) {
	r.pending = append(r.pending, in...)
	for len(r.pending) >= r.chunkSize {
		chunk := make([]float64, r.chunkSize)
		copy(chunk, r.pending)
		r.pending = append(r.pending[:0], r.pending[r.hop:]...)
		select {
		case r.chunks <- chunk:
		default:
			r.dropped.Add(1)
		}
	}
}
