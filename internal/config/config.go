// Package config holds the YAML schema for a rig and builds the modem,
// device and link stack from it. Values start from Default and a config
// file only overrides what it names.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"Tonelink/pkg/device"
	"Tonelink/pkg/link"
	"Tonelink/pkg/modem"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Backend selects which audio stack drives the link.
type Backend string

const (
	BackendPortAudio Backend = "portaudio"
	BackendASIO      Backend = "asio"
	BackendLoopback  Backend = "loopback"
)

// IsValid reports whether b is a recognised backend.
func (b Backend) IsValid() bool {
	switch b {
	case BackendPortAudio, BackendASIO, BackendLoopback:
		return true
	}
	return false
}

type Config struct {
	Audio AudioConfig `yaml:"audio"`
	FSK   FSKConfig   `yaml:"fsk"`
	Link  LinkConfig  `yaml:"link"`
}

// AudioConfig picks the device a rig talks through.
type AudioConfig struct {
	Backend Backend `yaml:"backend"`

	// Portaudio device indexes in ListDevices order, -1 for the host default.
	InputDevice  int `yaml:"input_device"`
	OutputDevice int `yaml:"output_device"`

	// ASIO driver name and channel pair, used only by the asio backend.
	ASIODevice     string `yaml:"asio_device"`
	ASIOInChannel  int    `yaml:"asio_in_channel"`
	ASIOOutChannel int    `yaml:"asio_out_channel"`
}

// FSKConfig mirrors the modem parameters, see modem.FSKConfig.
type FSKConfig struct {
	SampleRate         int     `yaml:"sample_rate"`
	SymbolDuration     float64 `yaml:"symbol_duration"`
	MarkFreq           float64 `yaml:"mark_freq"`
	SpaceFreq          float64 `yaml:"space_freq"`
	PreambleFreq       float64 `yaml:"preamble_freq"`
	MagnitudeThreshold float64 `yaml:"magnitude_threshold"`
	FreqTolerance      float64 `yaml:"freq_tolerance"`
	PreambleCount      int     `yaml:"preamble_count"`
	Amplitude          float64 `yaml:"amplitude"`
	EdgeRamp           float64 `yaml:"edge_ramp"`
}

// LinkConfig shapes the request and retry behaviour of the command link.
type LinkConfig struct {
	ChunkSeconds        float64 `yaml:"chunk_seconds"`
	ReplyTimeoutSeconds float64 `yaml:"reply_timeout_seconds"`
	MaxRetries          int     `yaml:"max_retries"`
	MinBackoffSeconds   float64 `yaml:"min_backoff_seconds"`
	MaxBackoffSeconds   float64 `yaml:"max_backoff_seconds"`
	BusyThreshold       float64 `yaml:"busy_threshold"`
}

// Default returns the configuration a rig runs with when no file overrides
// anything. The modem numbers come from modem.DefaultConfig.
func Default() *Config {
	fsk := modem.DefaultConfig()
	return &Config{
		Audio: AudioConfig{
			Backend:      BackendPortAudio,
			InputDevice:  -1,
			OutputDevice: -1,
		},
		FSK: FSKConfig{
			SampleRate:         fsk.SampleRate,
			SymbolDuration:     fsk.SymbolDuration,
			MarkFreq:           fsk.MarkFreq,
			SpaceFreq:          fsk.SpaceFreq,
			PreambleFreq:       fsk.PreambleFreq,
			MagnitudeThreshold: fsk.MagnitudeThreshold,
			FreqTolerance:      fsk.FreqTolerance,
			PreambleCount:      fsk.PreambleCount,
			Amplitude:          fsk.Amplitude,
			EdgeRamp:           fsk.EdgeRamp,
		},
		Link: LinkConfig{
			ChunkSeconds:        5,
			ReplyTimeoutSeconds: 30,
			MaxRetries:          3,
			MinBackoffSeconds:   0.25,
			MaxBackoffSeconds:   0.75,
			BusyThreshold:       0,
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := FromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// FromReader decodes YAML from r over the defaults and validates the
// result. Unknown keys are an error; an empty document keeps every default.
func FromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg is coherent, returning a joined error listing
// every failure found.
func (c *Config) Validate() error {
	var errs []error

	if !c.Audio.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("audio.backend %q is invalid; valid values: portaudio, asio, loopback", c.Audio.Backend))
	}
	if c.Audio.Backend == BackendASIO && c.Audio.ASIODevice == "" {
		errs = append(errs, errors.New("audio.asio_device is required when audio.backend is asio"))
	}

	if err := c.FSK.toModem().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("fsk: %w", err))
	}

	if c.Link.ChunkSeconds <= 0 {
		errs = append(errs, fmt.Errorf("link.chunk_seconds %v must be positive", c.Link.ChunkSeconds))
	}
	if c.Link.ReplyTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("link.reply_timeout_seconds %v must be positive", c.Link.ReplyTimeoutSeconds))
	}
	if c.Link.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("link.max_retries %d must not be negative", c.Link.MaxRetries))
	}
	if c.Link.MinBackoffSeconds < 0 || c.Link.MaxBackoffSeconds < c.Link.MinBackoffSeconds {
		errs = append(errs, fmt.Errorf("link backoff range [%v, %v] is invalid",
			c.Link.MinBackoffSeconds, c.Link.MaxBackoffSeconds))
	}
	if c.Link.BusyThreshold < 0 {
		errs = append(errs, fmt.Errorf("link.busy_threshold %v must not be negative", c.Link.BusyThreshold))
	}

	return errors.Join(errs...)
}

func (c *FSKConfig) toModem() modem.FSKConfig {
	return modem.FSKConfig{
		SampleRate:         c.SampleRate,
		SymbolDuration:     c.SymbolDuration,
		MarkFreq:           c.MarkFreq,
		SpaceFreq:          c.SpaceFreq,
		PreambleFreq:       c.PreambleFreq,
		MagnitudeThreshold: c.MagnitudeThreshold,
		FreqTolerance:      c.FreqTolerance,
		PreambleCount:      c.PreambleCount,
		Amplitude:          c.Amplitude,
		EdgeRamp:           c.EdgeRamp,
	}
}

// Modem builds the configured modem.
func (c *Config) Modem(log *zap.Logger) (*modem.Modem, error) {
	return modem.New(c.FSK.toModem(), log)
}

// Device builds the configured audio device. The device is not started.
func (c *Config) Device() (device.Device, error) {
	switch c.Audio.Backend {
	case BackendPortAudio:
		return &device.PortAudio{
			SampleRate:   float64(c.FSK.SampleRate),
			InputDevice:  c.Audio.InputDevice,
			OutputDevice: c.Audio.OutputDevice,
		}, nil
	case BackendASIO:
		return newASIODevice(c)
	case BackendLoopback:
		return &device.Loopback{SampleRate: float64(c.FSK.SampleRate)}, nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", c.Audio.Backend)
	}
}

// BuildLink assembles the whole stack behind one ready-to-open link.
func (c *Config) BuildLink(log *zap.Logger) (*link.Link, error) {
	m, err := c.Modem(log)
	if err != nil {
		return nil, err
	}
	dev, err := c.Device()
	if err != nil {
		return nil, err
	}
	return &link.Link{
		Modem:         m,
		Device:        dev,
		ChunkDuration: seconds(c.Link.ChunkSeconds),
		ReplyTimeout:  seconds(c.Link.ReplyTimeoutSeconds),
		MaxRetries:    c.Link.MaxRetries,
		Backoff: link.RandomBackoffTimer{
			MinDelay: seconds(c.Link.MinBackoffSeconds),
			MaxDelay: seconds(c.Link.MaxBackoffSeconds),
		},
		BusyThreshold: c.Link.BusyThreshold,
		Log:           log,
	}, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
