package cmd

import (
	"fmt"

	"Tonelink/pkg/device"

	"github.com/spf13/cobra"
)

// devicesCmd lists what portaudio can see, so config files and the
// TONELINK_*_DEVICE variables have indexes to refer to.
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the audio devices portaudio can see",
	RunE: func(cmd *cobra.Command, args []string) error {
		devs, err := device.ListDevices()
		if err != nil {
			return err
		}
		for i, d := range devs {
			fmt.Printf("%3d  %-48s  in:%-2d out:%-2d  %6.0f Hz\n",
				i, d.Name, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
