package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Tonelink/pkg/device"
	"Tonelink/pkg/link"
	"Tonelink/pkg/modem"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	loopbackPings   int
	loopbackNoise   float64
	loopbackCapture bool
)

var loopbackCmd = &cobra.Command{
	Use:   "loopback",
	Short: "Soak test the whole stack on a simulated bus, no hardware needed",
	Long: `Wire a client and a server rig to a simulated air column and run the
protocol between them in real time: pings, then a capture request. Both
rigs hear everything including themselves, so this exercises the same
echo filtering a live room does. --noise adds Gaussian noise to the bus
to rehearse a bad room.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		m, err := cfg.Modem(logger)
		if err != nil {
			return err
		}

		bus := &device.Bus{
			SampleRate: float64(cfg.FSK.SampleRate),
			NoiseLevel: loopbackNoise,
			Seed:       uint64(time.Now().UnixNano()),
		}
		nodes := bus.Build(2)

		server := &link.Link{
			Modem:         m,
			Device:        nodes[0],
			ChunkDuration: seconds(cfg.Link.ChunkSeconds),
			Log:           logger.Named("server"),
		}
		client := &link.Link{
			Modem:         m,
			Device:        nodes[1],
			ChunkDuration: seconds(cfg.Link.ChunkSeconds),
			ReplyTimeout:  seconds(cfg.Link.ReplyTimeoutSeconds),
			MaxRetries:    cfg.Link.MaxRetries,
			Log:           logger.Named("client"),
		}
		if err := server.Open(); err != nil {
			return err
		}
		defer server.Close()
		if err := client.Open(); err != nil {
			return err
		}
		defer client.Close()

		ctx, cancel := signalContext()
		defer cancel()
		serveCtx, stopServe := context.WithCancel(ctx)
		defer stopServe()

		served := make(chan error, 1)
		go func() {
			served <- server.Serve(serveCtx, func(c modem.Command) (modem.Command, bool) {
				switch c {
				case modem.CommandPing:
					return modem.CommandPong, true
				case modem.CommandCapture:
					return modem.CommandDone, true
				default:
					return 0, false
				}
			})
		}()

		for i := 0; i < loopbackPings; i++ {
			start := time.Now()
			if err := client.Ping(ctx); err != nil {
				return fmt.Errorf("loopback ping %d/%d: %w", i+1, loopbackPings, err)
			}
			fmt.Printf("pong %d/%d in %v\n", i+1, loopbackPings, time.Since(start).Round(time.Millisecond))
		}
		if loopbackCapture {
			start := time.Now()
			if err := client.Capture(ctx); err != nil {
				return fmt.Errorf("loopback capture: %w", err)
			}
			fmt.Printf("capture acknowledged in %v\n", time.Since(start).Round(time.Millisecond))
		}

		stopServe()
		if err := <-served; err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("server loop ended", zap.Error(err))
		}
		fmt.Println("loopback soak PASSED")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loopbackCmd)
	loopbackCmd.Flags().IntVarP(&loopbackPings, "pings", "n", 2, "pings to run across the bus")
	loopbackCmd.Flags().Float64Var(&loopbackNoise, "noise", 0, "stddev of Gaussian noise added to the bus")
	loopbackCmd.Flags().BoolVar(&loopbackCapture, "capture", true, "finish with a capture round trip")
}
