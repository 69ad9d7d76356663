package modem

import (
	"fmt"

	"go.uber.org/zap"
)

// Modem turns commands into sample buffers and back. Buffers are mono
// float64 in [-1, 1]. The modem carries no mutable state beyond its config,
// so one instance may encode and decode from any number of goroutines.
type Modem struct {
	cfg FSKConfig
	log *zap.Logger
}

// New validates cfg and builds a modem around it. log may be nil; pass one
// to see per-window detections and decode decisions while tuning a rig.
func New(cfg FSKConfig, log *zap.Logger) (*Modem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fsk config: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Modem{cfg: cfg, log: log}, nil
}

// Config returns the parameters the modem was built with.
func (m *Modem) Config() FSKConfig { return m.cfg }

// EncodeCommand renders cmd as a playable buffer: the configured number of
// preamble symbols, then the codeword most significant bit first, a 0 bit
// as the mark tone and a 1 bit as the space tone. Identical arguments yield
// bit-identical buffers.
func (m *Modem) EncodeCommand(cmd Command) ([]float64, error) {
	if !cmd.Valid() {
		return nil, fmt.Errorf("%w: %#04b", ErrUnknownCommand, uint8(cmd))
	}
	symbols := make([]Symbol, 0, m.cfg.PreambleCount+CodewordBits)
	for i := 0; i < m.cfg.PreambleCount; i++ {
		symbols = append(symbols, SymbolPreamble)
	}
	word := cmd.Codeword()
	for i := CodewordBits - 1; i >= 0; i-- {
		if word>>uint(i)&1 == 0 {
			symbols = append(symbols, SymbolMark)
		} else {
			symbols = append(symbols, SymbolSpace)
		}
	}
	return m.cfg.synthesize(symbols), nil
}

// DecodeCommand scans buf for one frame and returns the command it carries.
// ok is false when no confident frame is present: silence, bare noise, a
// missing or unconfirmed preamble, a truncated data region, an ambiguous
// symbol, or a codeword that fails its check all come back as not-ok rather
// than as a guess.
func (m *Modem) DecodeCommand(buf []float64) (Command, bool) {
	an := newAnalyzer(m.cfg.WindowSize(), m.cfg.SampleRate)
	syms, ok := locateFrame(m.cfg, an, m.log, buf)
	if !ok {
		m.log.Debug("no frame located", zap.Int("samples", len(buf)))
		return 0, false
	}
	var word uint8
	for _, s := range syms {
		switch s {
		case SymbolMark:
			word <<= 1
		case SymbolSpace:
			word = word<<1 | 1
		default:
			m.log.Debug("frame holds a symbol that is neither mark nor space")
			return 0, false
		}
	}
	cmd, ok := commandFromCodeword(word)
	if !ok {
		m.log.Debug("codeword rejected", zap.String("word", fmt.Sprintf("%08b", word)))
		return 0, false
	}
	m.log.Debug("command decoded", zap.Stringer("command", cmd))
	return cmd, true
}

// DominantTone analyzes buf as one window and reports its strongest
// spectral component. This is a diagnostic surface for checking what a
// microphone actually picked up; the decode path does not use it.
func (m *Modem) DominantTone(buf []float64) Detection {
	if len(buf) == 0 {
		return Detection{}
	}
	return newAnalyzer(len(buf), m.cfg.SampleRate).dominantTone(buf)
}
