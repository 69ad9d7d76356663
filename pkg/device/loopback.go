package device

import "time"

// Loopback hands every buffer written to its output straight back as the
// input of the next callback. SampleRate throttles the stream to real time;
// 0 runs it unpaced, as fast as the callback returns.
type Loopback struct {
	SampleRate float64
	done       chan struct{}
}

func (d *Loopback) Start(callback func(in, out []float64)) error {
	d.done = make(chan struct{})
	go func() {
		buf := [2][]float64{alloc(), alloc()}
		swap := false
		update := func() {
			if swap {
				callback(buf[0], buf[1])
			} else {
				callback(buf[1], buf[0])
			}
			swap = !swap
		}

		if d.SampleRate == 0 {
			for {
				select {
				case <-d.done:
					return
				default:
					update()
				}
			}
		}
		ticker := time.NewTicker(time.Duration(BufferSize / d.SampleRate * float64(time.Second)))
		defer ticker.Stop()
		for {
			select {
			case <-d.done:
				return
			case <-ticker.C:
				update()
			}
		}
	}()
	return nil
}

func (d *Loopback) Stop() error {
	close(d.done)
	return nil
}
