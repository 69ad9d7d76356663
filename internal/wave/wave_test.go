package wave

import (
	"bytes"
	"io"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/youpy/go-wav"
)

const SAMPLE_RATE = 8000

func sine(freq float64, n int) []float64 {
	buf := make([]float64, n)
	for i := range buf {
		buf[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/SAMPLE_RATE)
	}
	return buf
}

func TestRoundTrip(t *testing.T) {
	in := sine(440, 4000)
	var b bytes.Buffer
	if err := Write(&b, in, SAMPLE_RATE); err != nil {
		t.Fatal(err)
	}
	out, rate, err := Read(&b)
	if err != nil {
		t.Fatal(err)
	}
	if rate != SAMPLE_RATE {
		t.Errorf("sample rate = %d, want %d", rate, SAMPLE_RATE)
	}
	if len(out) != len(in) {
		t.Fatalf("length = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if math.Abs(out[i]-in[i]) > 1e-3 {
			t.Fatalf("sample %d = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestReadFromPlainStream(t *testing.T) {
	in := sine(200, 1600)
	var b bytes.Buffer
	if err := Write(&b, in, SAMPLE_RATE); err != nil {
		t.Fatal(err)
	}
	// The wrapper leaves Read as the only method, the way a pipe or
	// network source would behave.
	out, rate, err := Read(struct{ io.Reader }{&b})
	if err != nil {
		t.Fatal(err)
	}
	if rate != SAMPLE_RATE || len(out) != len(in) {
		t.Errorf("read back %d samples at %d Hz, want %d at %d", len(out), rate, len(in), SAMPLE_RATE)
	}
}

func TestWriteClipsOutOfRange(t *testing.T) {
	var b bytes.Buffer
	if err := Write(&b, []float64{2, -2, 0}, SAMPLE_RATE); err != nil {
		t.Fatal(err)
	}
	out, _, err := Read(&b)
	if err != nil {
		t.Fatal(err)
	}
	if out[0] < 0.99 || out[1] > -0.99 {
		t.Errorf("out of range samples should clip to full scale, got %v", out)
	}
	if out[2] != 0 {
		t.Errorf("zero sample read back as %v", out[2])
	}
}

func TestRoundTripEmpty(t *testing.T) {
	var b bytes.Buffer
	if err := Write(&b, nil, SAMPLE_RATE); err != nil {
		t.Fatal(err)
	}
	out, rate, err := Read(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 || rate != SAMPLE_RATE {
		t.Errorf("empty file read back %d samples at %d Hz", len(out), rate)
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	if _, _, err := Read(strings.NewReader("not a riff stream at all")); err == nil {
		t.Error("garbage input should not parse as wav")
	}
}

func TestReadRejectsWrongBitDepth(t *testing.T) {
	var b bytes.Buffer
	w := wav.NewWriter(&b, 4, 1, SAMPLE_RATE, 8)
	err := w.WriteSamples([]wav.Sample{
		{Values: [2]int{128, 0}},
		{Values: [2]int{130, 0}},
		{Values: [2]int{126, 0}},
		{Values: [2]int{128, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := Read(&b); err == nil || !strings.Contains(err.Error(), "bit depth") {
		t.Errorf("8 bit file should be rejected, got %v", err)
	}
}

func TestReadFileWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	in := sine(880, 2000)
	if err := WriteFile(path, in, SAMPLE_RATE); err != nil {
		t.Fatal(err)
	}
	out, rate, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if rate != SAMPLE_RATE || len(out) != len(in) {
		t.Errorf("read back %d samples at %d Hz, want %d at %d", len(out), rate, len(in), SAMPLE_RATE)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, _, err := ReadFile(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("missing file should error")
	}
}
