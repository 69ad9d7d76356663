//go:build !windows

package config

import (
	"errors"

	"Tonelink/pkg/device"
)

func newASIODevice(*Config) (device.Device, error) {
	return nil, errors.New("the asio backend needs a windows host; use portaudio here")
}
