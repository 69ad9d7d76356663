package device

import (
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

// Bus simulates a shared air column. Every node hears the sum of what all
// nodes played on the previous tick, its own output included, plus optional
// Gaussian noise. Two Links wired to one Bus behave like two rigs in the
// same room, which is how the protocol tests run without sound hardware.
type Bus struct {
	SampleRate float64 // 0 runs unpaced
	NoiseLevel float64 // stddev of the additive noise, 0 for a clean line
	Seed       uint64  // noise source seed, fixed so tests reproduce

	mu      sync.Mutex
	nodes   []*BusNode
	line    []float64
	rng     *rand.Rand
	stopped int

	done     chan struct{}
	pumpOnce sync.Once
	stopOnce sync.Once
}

// BusNode is one endpoint on the bus. It satisfies Device.
type BusNode struct {
	bus      *Bus
	input    []float64
	output   []float64
	callback func(in, out []float64)
}

// Build attaches n nodes and returns them. Call it once, before any node
// starts.
func (b *Bus) Build(n int) []*BusNode {
	b.line = alloc()
	b.rng = rand.New(rand.NewSource(b.Seed))
	b.done = make(chan struct{})
	for i := 0; i < n; i++ {
		b.nodes = append(b.nodes, &BusNode{
			bus:    b,
			input:  alloc(),
			output: alloc(),
		})
	}
	return b.nodes
}

// Stop shuts the bus down regardless of node state.
func (b *Bus) Stop() {
	b.stopOnce.Do(func() { close(b.done) })
}

// Join blocks until the bus has shut down, either via Stop or because every
// node stopped.
func (b *Bus) Join() {
	<-b.done
}

func (b *Bus) update() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, n := range b.nodes {
		if n.callback != nil {
			n.callback(n.input, n.output)
		}
	}
	clear(b.line)
	for _, n := range b.nodes {
		if n.callback != nil {
			addTo(b.line, n.output)
		}
	}
	if b.NoiseLevel > 0 {
		addNoise(b.rng, b.line, b.NoiseLevel)
	}
	for _, n := range b.nodes {
		copy(n.input, b.line)
	}
}

func (b *Bus) pump() {
	if b.SampleRate == 0 {
		for {
			select {
			case <-b.done:
				return
			default:
				b.update()
			}
		}
	}
	ticker := time.NewTicker(time.Duration(BufferSize / b.SampleRate * float64(time.Second)))
	defer ticker.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.update()
		}
	}
}

// Start registers the node's callback. The first node to start launches the
// shared pump.
func (n *BusNode) Start(callback func(in, out []float64)) error {
	n.bus.mu.Lock()
	n.callback = callback
	n.bus.mu.Unlock()
	n.bus.pumpOnce.Do(func() { go n.bus.pump() })
	return nil
}

// Stop detaches the node. When the last node detaches the bus shuts down.
func (n *BusNode) Stop() error {
	b := n.bus
	b.mu.Lock()
	if n.callback != nil {
		n.callback = nil
		b.stopped++
	}
	last := b.stopped == len(b.nodes)
	b.mu.Unlock()
	if last {
		b.Stop()
	}
	return nil
}
