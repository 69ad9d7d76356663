package cmd

import (
	"context"
	"fmt"
	"time"

	"Tonelink/internal/wave"
	"Tonelink/pkg/device"
	"Tonelink/pkg/monitor"

	"github.com/spf13/cobra"
)

var (
	monitorSeconds  float64
	baselineSeconds float64
	minRatio        float64
	clickThreshold  float64
	monitorWAV      string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Record from the input and report level statistics",
	Long: `Record the configured input and print RMS, peak and DC offset, the
numbers that tell a dead microphone from a live one. With --baseline a
quiet reference is recorded first; trigger the pump when the prompt says
so and the two recordings are compared to decide whether anything
actually happened.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		dev, err := cfg.Device()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		rate := cfg.FSK.SampleRate
		var baseline monitor.Stats
		if baselineSeconds > 0 {
			fmt.Printf("recording %.1fs of baseline, keep the rig quiet\n", baselineSeconds)
			buf, err := record(ctx, dev, int(baselineSeconds*float64(rate)))
			if err != nil {
				return err
			}
			baseline = monitor.Analyze(buf, rate)
			printStats("baseline", baseline)
			fmt.Printf("now trigger the pump; recording %.1fs\n", monitorSeconds)
		}

		buf, err := record(ctx, dev, int(monitorSeconds*float64(rate)))
		if err != nil {
			return err
		}
		stats := monitor.Analyze(buf, rate)
		printStats("input", stats)

		threshold := clickThreshold
		if threshold == 0 && baselineSeconds > 0 {
			threshold = monitor.ClickThreshold(baseline)
		}
		if threshold > 0 {
			clicks := monitor.CountClicks(buf, rate, threshold, 50*time.Millisecond)
			fmt.Printf("  clicks over %.4f: %d\n", threshold, clicks)
		}

		if baselineSeconds > 0 {
			c := monitor.Compare(baseline, stats, minRatio)
			fmt.Printf("  rms ratio %.2f (%.1f dB), peak ratio %.2f\n", c.RMSRatio, c.DeltaDB, c.PeakRatio)
			if c.Active {
				fmt.Println("  ACTIVE: the input moved against the baseline")
			} else {
				fmt.Println("  quiet: no activity against the baseline")
			}
		}

		if monitorWAV != "" {
			if err := wave.WriteFile(monitorWAV, buf, rate); err != nil {
				return err
			}
			fmt.Printf("recording written to %s\n", monitorWAV)
		}
		return nil
	},
}

func printStats(name string, s monitor.Stats) {
	fmt.Printf("%s: %d samples over %v\n", name, s.Samples, s.Duration.Round(time.Millisecond))
	fmt.Printf("  rms %.5f  peak %.5f  mean %+.5f  stddev %.5f\n", s.RMS, s.Peak, s.Mean, s.StdDev)
}

// record pulls n input samples from a freshly started device, then stops it.
// The output stays silent throughout.
func record(ctx context.Context, dev device.Device, n int) ([]float64, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]float64, 0, n)
	done := make(chan struct{})
	err := dev.Start(func(in, out []float64) {
		for i := range out {
			out[i] = 0
		}
		if len(buf) >= n {
			return
		}
		take := min(n-len(buf), len(in))
		buf = append(buf, in[:take]...)
		if len(buf) == n {
			close(done)
		}
	})
	if err != nil {
		return nil, err
	}
	select {
	case <-done:
	case <-ctx.Done():
		dev.Stop()
		return nil, ctx.Err()
	}
	if err := dev.Stop(); err != nil {
		return nil, err
	}
	return buf, nil
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().Float64VarP(&monitorSeconds, "seconds", "s", 5, "recording length")
	monitorCmd.Flags().Float64VarP(&baselineSeconds, "baseline", "b", 0, "record a quiet baseline of this length first and compare")
	monitorCmd.Flags().Float64Var(&minRatio, "min-ratio", 2, "rms factor over baseline that counts as activity")
	monitorCmd.Flags().Float64Var(&clickThreshold, "click-threshold", 0, "count clicks over this level, 0 derives it from the baseline")
	monitorCmd.Flags().StringVarP(&monitorWAV, "wav", "w", "", "also write the recording to this WAV file")
}
