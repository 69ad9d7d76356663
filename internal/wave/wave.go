// Package wave reads and writes the mono PCM files the toolkit exchanges
// with disk. Samples are normalized float64 in [-1, 1] everywhere else, so
// the 16 bit conversion lives here and nowhere else.
package wave

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/youpy/go-wav"
)

const wavBits = 16

// Read decodes a PCM WAV stream into normalized samples and reports its
// sample rate. Multi-channel files collapse to channel 0.
func Read(r io.Reader) ([]float64, int, error) {
	// The RIFF parser wants random access, so buffer the stream first.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read wav: %w", err)
	}
	reader := wav.NewReader(bytes.NewReader(data))
	format, err := reader.Format()
	if err != nil {
		return nil, 0, fmt.Errorf("read wav header: %w", err)
	}
	if format.AudioFormat != wav.AudioFormatPCM {
		return nil, 0, fmt.Errorf("unsupported wav audio format %d", format.AudioFormat)
	}
	if format.BitsPerSample != wavBits {
		return nil, 0, fmt.Errorf("unsupported wav bit depth %d", format.BitsPerSample)
	}
	scale := float64(int(1) << (wavBits - 1))
	var out []float64
	for {
		samples, err := reader.ReadSamples(2048)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read wav samples: %w", err)
		}
		for _, s := range samples {
			out = append(out, float64(reader.IntValue(s, 0))/scale)
		}
	}
	return out, int(format.SampleRate), nil
}

// Write encodes normalized samples as 16 bit mono PCM at sampleRate.
// Samples outside [-1, 1] clip.
func Write(w io.Writer, samples []float64, sampleRate int) error {
	writer := wav.NewWriter(w, uint32(len(samples)), 1, uint32(sampleRate), wavBits)
	buf := make([]wav.Sample, 0, 2048)
	for _, v := range samples {
		switch {
		case v > 1:
			v = 1
		case v < -1:
			v = -1
		}
		buf = append(buf, wav.Sample{Values: [2]int{int(math.Round(v * 32767)), 0}})
		if len(buf) == cap(buf) {
			if err := writer.WriteSamples(buf); err != nil {
				return fmt.Errorf("write wav samples: %w", err)
			}
			buf = buf[:0]
		}
	}
	if len(buf) > 0 {
		if err := writer.WriteSamples(buf); err != nil {
			return fmt.Errorf("write wav samples: %w", err)
		}
	}
	return nil
}

// ReadFile reads a WAV file from disk.
func ReadFile(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return Read(f)
}

// WriteFile writes samples to a WAV file on disk.
func WriteFile(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, samples, sampleRate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
