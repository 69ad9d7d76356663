//go:build windows

package device

import "github.com/xsjk/go-asio"

// ASIO drives one input and one output channel of an ASIO interface as a
// mono device. The pump rigs live on Windows hosts with ASIO drivers, so
// this is the production backend there; development under WSL uses the
// portaudio backend instead.
type ASIO struct {
	DeviceName string
	SampleRate float64
	InChannel  int
	OutChannel int

	device asio.Device
	in     []float64
	out    []float64
}

func (a *ASIO) Start(callback func(in, out []float64)) error {
	a.device.Load(a.DeviceName)
	a.device.SetSampleRate(a.SampleRate)
	a.device.Open()
	a.device.Start(func(in, out [][]int32) {
		src := in[a.InChannel]
		dst := out[a.OutChannel]
		// The driver picks its own buffer length.
		if len(a.in) < len(src) {
			a.in = make([]float64, len(src))
		}
		if len(a.out) < len(dst) {
			a.out = make([]float64, len(dst))
		}
		fin, fout := a.in[:len(src)], a.out[:len(dst)]
		Int32ToFloat64(src, fin)
		callback(fin, fout)
		Float64ToInt32(fout, dst)
	})
	return nil
}

func (a *ASIO) Stop() error {
	a.device.Stop()
	a.device.Close()
	a.device.Unload()
	return nil
}
