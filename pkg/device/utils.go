package device

import "golang.org/x/exp/rand"

func alloc() []float64 {
	return make([]float64, BufferSize)
}

func addTo(dst, src []float64) {
	for i := range dst {
		dst[i] += src[i]
	}
}

func addNoise(rng *rand.Rand, buf []float64, level float64) {
	for i := range buf {
		buf[i] += rng.NormFloat64() * level
	}
}
