package modem

import (
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

const (
	SAMPLE_RATE     = 44100
	SYMBOL_DURATION = 0.2
	MARK_FREQ       = 1200.0
	SPACE_FREQ      = 1800.0
	PREAMBLE_FREQ   = 2400.0

	MAGNITUDE_THRESHOLD = 100.0
	FREQ_TOLERANCE      = 50.0
	PREAMBLE_COUNT      = 2

	AMPLITUDE = 0.5
	EDGE_RAMP = 0.01

	NOISE_SEED   = 42
	NOISE_LEVEL  = AMPLITUDE / 10
	NOISE_TRIALS = 5
)

var testConfig = FSKConfig{
	SampleRate:         SAMPLE_RATE,
	SymbolDuration:     SYMBOL_DURATION,
	MarkFreq:           MARK_FREQ,
	SpaceFreq:          SPACE_FREQ,
	PreambleFreq:       PREAMBLE_FREQ,
	MagnitudeThreshold: MAGNITUDE_THRESHOLD,
	FreqTolerance:      FREQ_TOLERANCE,
	PreambleCount:      PREAMBLE_COUNT,
	Amplitude:          AMPLITUDE,
	EdgeRamp:           EDGE_RAMP,
}

func newTestModem(t *testing.T) *Modem {
	t.Helper()
	m, err := New(testConfig, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func addNoise(rng *rand.Rand, buf []float64, level float64) {
	for i := range buf {
		buf[i] += rng.NormFloat64() * level
	}
}

func TestEncodeLength(t *testing.T) {
	m := newTestModem(t)
	buf, err := m.EncodeCommand(CommandPing)
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	expected := (PREAMBLE_COUNT + CodewordBits) * testConfig.WindowSize()
	if len(buf) != expected {
		t.Errorf("encoded length is %d samples, expected %d", len(buf), expected)
	}
	if expected != 88200 { // (2 + 8) * 0.2 * 44100
		t.Errorf("window arithmetic drifted: %d", expected)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	m := newTestModem(t)
	a, err := m.EncodeCommand(CommandCapture)
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	b, err := m.EncodeCommand(CommandCapture)
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("two encodings of the same command are different")
	}
}

func TestEncodeAmplitudeBounds(t *testing.T) {
	m := newTestModem(t)
	buf, err := m.EncodeCommand(CommandPong)
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	for i, v := range buf {
		if v > AMPLITUDE || v < -AMPLITUDE {
			t.Fatalf("sample %d is %g, outside [-%g, %g]", i, v, AMPLITUDE, AMPLITUDE)
		}
	}
}

func TestEncodeRejectsUnknownCommand(t *testing.T) {
	m := newTestModem(t)
	if _, err := m.EncodeCommand(Command(0b1111)); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("EncodeCommand(0b1111) error = %v, expected ErrUnknownCommand", err)
	}
}

func TestRoundTrip(t *testing.T) {
	m := newTestModem(t)
	for _, cmd := range Commands {
		buf, err := m.EncodeCommand(cmd)
		if err != nil {
			t.Fatalf("EncodeCommand(%v): %v", cmd, err)
		}
		got, ok := m.DecodeCommand(buf)
		if !ok || got != cmd {
			t.Errorf("round trip of %v gave %v, %v", cmd, got, ok)
		}
	}
}

func TestRoundTripWithNoise(t *testing.T) {
	m := newTestModem(t)
	// The encoder output ends flush with the last data symbol, so every
	// realization also exercises frame location against the buffer edge.
	for seed := uint64(1); seed <= NOISE_TRIALS; seed++ {
		rng := rand.New(rand.NewSource(seed))
		for _, cmd := range Commands {
			buf, err := m.EncodeCommand(cmd)
			if err != nil {
				t.Fatalf("EncodeCommand(%v): %v", cmd, err)
			}
			addNoise(rng, buf, NOISE_LEVEL)
			got, ok := m.DecodeCommand(buf)
			if !ok || got != cmd {
				t.Errorf("seed %d: noisy round trip of %v gave %v, %v", seed, cmd, got, ok)
			}
		}
	}
}

func TestDecodeSilence(t *testing.T) {
	m := newTestModem(t)
	if cmd, ok := m.DecodeCommand(make([]float64, 4*testConfig.WindowSize())); ok {
		t.Errorf("silence decoded to %v", cmd)
	}
}

func TestDecodeEmptyAndShort(t *testing.T) {
	m := newTestModem(t)
	if cmd, ok := m.DecodeCommand(nil); ok {
		t.Errorf("empty buffer decoded to %v", cmd)
	}
	if cmd, ok := m.DecodeCommand(make([]float64, testConfig.WindowSize()/2)); ok {
		t.Errorf("sub-window buffer decoded to %v", cmd)
	}
}

func TestDecodeNoiseOnly(t *testing.T) {
	m := newTestModem(t)
	rng := rand.New(rand.NewSource(NOISE_SEED))
	buf := make([]float64, 6*testConfig.WindowSize())
	addNoise(rng, buf, NOISE_LEVEL)
	if cmd, ok := m.DecodeCommand(buf); ok {
		t.Errorf("bare noise decoded to %v", cmd)
	}
}

func TestDecodePreambleOnly(t *testing.T) {
	m := newTestModem(t)
	syms := make([]Symbol, PREAMBLE_COUNT)
	for i := range syms {
		syms[i] = SymbolPreamble
	}
	buf := testConfig.synthesize(syms)
	if cmd, ok := m.DecodeCommand(buf); ok {
		t.Errorf("preamble with no data decoded to %v", cmd)
	}
}

func TestDecodeTruncated(t *testing.T) {
	m := newTestModem(t)
	buf, err := m.EncodeCommand(CommandDone)
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	cut := (PREAMBLE_COUNT + 3) * testConfig.WindowSize()
	if cmd, ok := m.DecodeCommand(buf[:cut]); ok {
		t.Errorf("frame truncated mid-data decoded to %v", cmd)
	}
}

func TestDecodeLeadingNoise(t *testing.T) {
	m := newTestModem(t)
	rng := rand.New(rand.NewSource(NOISE_SEED))
	frame, err := m.EncodeCommand(CommandPing)
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}

	// The noise prefix is deliberately not a multiple of the scan hop, so
	// the provisional anchor lands off the symbol grid and the locator has
	// to recover the alignment itself.
	size := testConfig.WindowSize()
	prefix := make([]float64, 3*size+size/3)
	addNoise(rng, prefix, NOISE_LEVEL)
	tail := make([]float64, size)

	buf := append(append(prefix, frame...), tail...)
	got, ok := m.DecodeCommand(buf)
	if !ok || got != CommandPing {
		t.Errorf("frame behind noise decoded to %v, %v, expected PING", got, ok)
	}
}

func TestDecodeLongerPreamble(t *testing.T) {
	// A sender configured with more preamble repeats than the receiver
	// expects still interoperates: after confirming its own run length the
	// locator walks across the extra repeats to the data grid, and the
	// frame again ends flush with the buffer.
	cfg := testConfig
	cfg.PreambleCount = 2 * PREAMBLE_COUNT
	sender, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	buf, err := sender.EncodeCommand(CommandDone)
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	m := newTestModem(t)
	if got, ok := m.DecodeCommand(buf); !ok || got != CommandDone {
		t.Errorf("frame with a doubled preamble decoded to %v, %v, expected DONE", got, ok)
	}
}

func TestDecodeWithLogger(t *testing.T) {
	log, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("zap.NewDevelopment: %v", err)
	}
	m, err := New(testConfig, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	buf, err := m.EncodeCommand(CommandPong)
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	if got, ok := m.DecodeCommand(buf); !ok || got != CommandPong {
		t.Errorf("decode with logging gave %v, %v", got, ok)
	}
}

func TestLocateFrameSymbols(t *testing.T) {
	m := newTestModem(t)
	buf, err := m.EncodeCommand(CommandPing)
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	an := newAnalyzer(testConfig.WindowSize(), SAMPLE_RATE)
	syms, ok := locateFrame(testConfig, an, zap.NewNop(), buf)
	if !ok {
		t.Fatal("no frame located in a clean encoding")
	}
	// PING is 0100 0100 on the wire, most significant bit first.
	expected := []Symbol{
		SymbolMark, SymbolSpace, SymbolMark, SymbolMark,
		SymbolMark, SymbolSpace, SymbolMark, SymbolMark,
	}
	if !reflect.DeepEqual(syms, expected) {
		t.Errorf("located symbols %v, expected %v", syms, expected)
	}
}

func TestDominantToneDiagnostic(t *testing.T) {
	m := newTestModem(t)
	buf := testConfig.appendTone(nil, SPACE_FREQ, testConfig.WindowSize())
	det := m.DominantTone(buf)
	if det.Freq < SPACE_FREQ-FREQ_TOLERANCE || det.Freq > SPACE_FREQ+FREQ_TOLERANCE {
		t.Errorf("DominantTone reported %g Hz for a %g Hz tone", det.Freq, SPACE_FREQ)
	}
	if det := m.DominantTone(nil); det != (Detection{}) {
		t.Errorf("DominantTone on an empty buffer = %+v", det)
	}
}
