package device

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudio streams through the host's audio stack via portaudio. Device
// indexes follow the order ListDevices reports; -1 picks the host default.
type PortAudio struct {
	SampleRate   float64
	InputDevice  int
	OutputDevice int

	stream *portaudio.Stream
	in     []float64
	out    []float64
}

func (p *PortAudio) Start(callback func(in, out []float64)) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}
	inDev, err := p.pick(p.InputDevice, portaudio.DefaultInputDevice)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("portaudio input: %w", err)
	}
	outDev, err := p.pick(p.OutputDevice, portaudio.DefaultOutputDevice)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("portaudio output: %w", err)
	}

	params := portaudio.HighLatencyParameters(inDev, outDev)
	params.SampleRate = p.SampleRate
	params.FramesPerBuffer = BufferSize
	params.Input.Channels = 1
	params.Output.Channels = 1

	p.in = make([]float64, BufferSize)
	p.out = make([]float64, BufferSize)
	stream, err := portaudio.OpenStream(params, func(in, out []float32) {
		if len(p.in) < len(in) {
			p.in = make([]float64, len(in))
		}
		if len(p.out) < len(out) {
			p.out = make([]float64, len(out))
		}
		fin, fout := p.in[:len(in)], p.out[:len(out)]
		for i, v := range in {
			fin[i] = float64(v)
		}
		callback(fin, fout)
		for i, v := range fout {
			switch {
			case v >= 1:
				out[i] = 1
			case v <= -1:
				out[i] = -1
			default:
				out[i] = float32(v)
			}
		}
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("portaudio open: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("portaudio start: %w", err)
	}
	p.stream = stream
	return nil
}

func (p *PortAudio) pick(index int, def func() (*portaudio.DeviceInfo, error)) (*portaudio.DeviceInfo, error) {
	if index < 0 {
		return def()
	}
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if index >= len(devs) {
		return nil, fmt.Errorf("device index %d out of range, %d devices present", index, len(devs))
	}
	return devs[index], nil
}

func (p *PortAudio) Stop() error {
	if p.stream != nil {
		p.stream.Stop()
		p.stream.Close()
		p.stream = nil
	}
	return portaudio.Terminate()
}

// ListDevices reports the host's audio devices in index order, for the
// device picker and the troubleshooting docs.
func ListDevices() ([]*portaudio.DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}
	defer portaudio.Terminate()
	return portaudio.Devices()
}
