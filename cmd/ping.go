package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pingCount int

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the rig on the other end is alive and decoding",
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

		for i := 0; i < pingCount; i++ {
			start := time.Now()
			if err := l.Ping(ctx); err != nil {
				return fmt.Errorf("ping %d/%d: %w", i+1, pingCount, err)
			}
			fmt.Printf("pong %d/%d in %v\n", i+1, pingCount, time.Since(start).Round(time.Millisecond))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVarP(&pingCount, "count", "n", 1, "number of pings to send")
}
