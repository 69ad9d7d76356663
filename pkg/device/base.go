package device

// Device is a mono full-duplex audio endpoint. Start launches the stream
// and invokes callback once per buffer with the samples just captured and
// the buffer to fill for playback, both float64 in [-1, 1]. The callback
// runs on the stream goroutine, must not block, and must fill the whole
// output buffer every call.
type Device interface {
	Start(callback func(in, out []float64)) error
	Stop() error
}

// BufferSize is the sample count per callback on the backends that let us
// choose. Hardware backends may deliver other sizes; callbacks take the
// buffer length as given.
const BufferSize = 512
