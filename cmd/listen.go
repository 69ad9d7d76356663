package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Tonelink/pkg/link"

	"github.com/spf13/cobra"
)

var listenSeconds float64

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print every command heard on the channel",
	Long: `Decode the input continuously and print each command as it arrives,
whoever sent it. Useful for checking that a rig can hear its peer at all.
Runs until interrupted, or until --seconds pass without hearing anything.`,
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

		timeout := seconds(listenSeconds)
		for {
			c, err := l.Listen(ctx, timeout)
			switch {
			case errors.Is(err, link.ErrTimeout):
				fmt.Printf("nothing heard in %v\n", timeout)
				return nil
			case errors.Is(err, context.Canceled):
				return nil
			case err != nil:
				return err
			}
			fmt.Printf("%s  %s\n", time.Now().Format(time.TimeOnly), c)
		}
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)
	listenCmd.Flags().Float64VarP(&listenSeconds, "seconds", "s", 0, "give up after this quiet span, 0 means never")
}
