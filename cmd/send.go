package cmd

import (
	"fmt"
	"strings"
	"time"

	"Tonelink/internal/wave"
	"Tonelink/pkg/modem"

	"github.com/spf13/cobra"
)

var sendWAV string

var sendCmd = &cobra.Command{
	Use:   "send COMMAND",
	Short: "Play one command, or render it into a WAV file",
	Long: `Encode a single command and play it through the configured device.
With --wav the frame is written to a file instead, which is how the test
fixtures for other rigs get made.

Known commands: ` + commandNames() + `.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		c, err := modem.ParseCommand(args[0])
		if err != nil {
			return err
		}

		if sendWAV != "" {
			m, err := cfg.Modem(logger)
			if err != nil {
				return err
			}
			buf, err := m.EncodeCommand(c)
			if err != nil {
				return err
			}
			if err := wave.WriteFile(sendWAV, buf, cfg.FSK.SampleRate); err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d samples) to %s\n", c, len(buf), sendWAV)
			return nil
		}

		l, err := cfg.BuildLink(logger)
		if err != nil {
			return err
		}
		if err := l.Open(); err != nil {
			return err
		}
		defer l.Close()

		ctx, cancel := signalContext()
		defer cancel()
		if err := l.Send(ctx, c); err != nil {
			return err
		}
		// The device is still draining its latency worth of audio.
		time.Sleep(200 * time.Millisecond)
		fmt.Printf("sent %s\n", c)
		return nil
	},
}

func commandNames() string {
	names := make([]string, len(modem.Commands))
	for i, c := range modem.Commands {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendWAV, "wav", "w", "", "write the frame to this WAV file instead of playing it")
}
