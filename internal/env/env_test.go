package env

import (
	"strings"
	"testing"

	"Tonelink/internal/config"
)

func TestApplyOverrides(t *testing.T) {
	t.Setenv("TONELINK_BACKEND", "loopback")
	t.Setenv("TONELINK_INPUT_DEVICE", "3")
	t.Setenv("TONELINK_SAMPLE_RATE", "22050")

	cfg := config.Default()
	if err := Apply(cfg, nil); err != nil {
		t.Fatal(err)
	}
	if cfg.Audio.Backend != config.BackendLoopback {
		t.Errorf("backend = %q, want loopback", cfg.Audio.Backend)
	}
	if cfg.Audio.InputDevice != 3 {
		t.Errorf("input device = %d, want 3", cfg.Audio.InputDevice)
	}
	if cfg.Audio.OutputDevice != -1 {
		t.Errorf("output device = %d, want untouched -1", cfg.Audio.OutputDevice)
	}
	if cfg.FSK.SampleRate != 22050 {
		t.Errorf("sample rate = %d, want 22050", cfg.FSK.SampleRate)
	}
}

func TestApplyLeavesConfigAloneWhenUnset(t *testing.T) {
	cfg := config.Default()
	if err := Apply(cfg, nil); err != nil {
		t.Fatal(err)
	}
	if *cfg != *config.Default() {
		t.Errorf("nothing set, config should be untouched: %+v", cfg)
	}
}

func TestApplyRejectsBadInteger(t *testing.T) {
	t.Setenv("TONELINK_INPUT_DEVICE", "mic")
	err := Apply(config.Default(), nil)
	if err == nil || !strings.Contains(err.Error(), "TONELINK_INPUT_DEVICE") {
		t.Errorf("unparsable integer should fail with the variable named, got %v", err)
	}
}

func TestApplyRejectsBadBackend(t *testing.T) {
	t.Setenv("TONELINK_BACKEND", "jack")
	if err := Apply(config.Default(), nil); err == nil {
		t.Error("unknown backend from the environment should fail validation")
	}
}
