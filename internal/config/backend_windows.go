//go:build windows

package config

import "Tonelink/pkg/device"

func newASIODevice(c *Config) (device.Device, error) {
	return &device.ASIO{
		DeviceName: c.Audio.ASIODevice,
		SampleRate: float64(c.FSK.SampleRate),
		InChannel:  c.Audio.ASIOInChannel,
		OutChannel: c.Audio.ASIOOutChannel,
	}, nil
}
