package device

// Int32ToFloat64 rescales raw 32 bit device samples into [-1, 1]. The
// destination must be at least as long as the source. No allocation, since
// this runs inside stream callbacks.
func Int32ToFloat64(in []int32, out []float64) {
	for i, v := range in {
		out[i] = float64(v) / 0x7fffffff
	}
}

// Float64ToInt32 rescales [-1, 1] samples to raw 32 bit device samples,
// clipping anything outside the range instead of wrapping it.
func Float64ToInt32(in []float64, out []int32) {
	for i, v := range in {
		switch {
		case v >= 1:
			out[i] = 0x7fffffff
		case v <= -1:
			out[i] = -0x7fffffff
		default:
			out[i] = int32(v * 0x7fffffff)
		}
	}
}
