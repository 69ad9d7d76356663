package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Ask the remote rig to take a capture and wait for it to finish",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

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

		start := time.Now()
		if err := l.Capture(ctx); err != nil {
			return err
		}
		fmt.Printf("capture done in %v\n", time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)
}
