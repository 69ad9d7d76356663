// Package env overlays TONELINK_* environment variables onto a loaded
// configuration, so a rig can be repointed at another sound device without
// touching its config file. A .env file in the working directory is read
// first when present.
package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"Tonelink/internal/config"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Apply loads .env if one exists and folds the TONELINK_* variables into
// cfg. Unset variables leave cfg alone.
func Apply(cfg *config.Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
	} else {
		logger.Debug("loaded .env")
	}

	if v, ok := os.LookupEnv("TONELINK_BACKEND"); ok {
		cfg.Audio.Backend = config.Backend(v)
		logger.Info("backend from environment", zap.String("backend", v))
	}
	if v, ok := os.LookupEnv("TONELINK_ASIO_DEVICE"); ok {
		cfg.Audio.ASIODevice = v
		logger.Info("asio device from environment", zap.String("device", v))
	}
	if err := applyInt("TONELINK_INPUT_DEVICE", &cfg.Audio.InputDevice, logger); err != nil {
		return err
	}
	if err := applyInt("TONELINK_OUTPUT_DEVICE", &cfg.Audio.OutputDevice, logger); err != nil {
		return err
	}
	if err := applyInt("TONELINK_SAMPLE_RATE", &cfg.FSK.SampleRate, logger); err != nil {
		return err
	}

	return cfg.Validate()
}

func applyInt(name string, dst *int, logger *zap.Logger) error {
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s=%q: %w", name, v, err)
	}
	*dst = n
	logger.Info("value from environment", zap.String("name", name), zap.Int("value", n))
	return nil
}
