package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"Tonelink/internal/config"
	"Tonelink/internal/env"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "tonelink",
	Short: "tonelink drives pump diagnostic rigs over an audio command channel",
	Long: `tonelink encodes four bit commands as FSK tones and carries them over
whatever audio path connects two rigs: a patch cable, a speaker standing
next to a microphone, or a simulated bus when no hardware is around.`,
	SilenceUsage: true,
}

var (
	configPath string
	debug      bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file, defaults apply when omitted")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "log at debug level")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

// setup is the common preamble of every subcommand that touches audio.
func setup() (*config.Config, *zap.Logger, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, nil, err
	}
	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
	}
	if err := env.Apply(cfg, logger); err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
