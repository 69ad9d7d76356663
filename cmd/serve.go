package cmd

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"time"

	"Tonelink/pkg/modem"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	onCapture      string
	captureSeconds float64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer commands from the remote rig until interrupted",
	Long: `Run the responder side of the channel. PING is answered with PONG.
CAPTURE runs the --on-capture shell command and answers DONE when it
exits cleanly, ERROR otherwise; with no command configured a capture
request is logged and acknowledged, which is handy while cabling up.`,
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

		logger.Info("serving", zap.String("on_capture", onCapture))
		err = l.Serve(ctx, func(c modem.Command) (modem.Command, bool) {
			switch c {
			case modem.CommandPing:
				return modem.CommandPong, true
			case modem.CommandCapture:
				if err := runCapture(ctx, logger); err != nil {
					logger.Error("capture failed", zap.Error(err))
					return modem.CommandError, true
				}
				return modem.CommandDone, true
			default:
				// Our own replies come back through the microphone.
				return 0, false
			}
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func runCapture(ctx context.Context, logger *zap.Logger) error {
	if onCapture == "" {
		logger.Info("capture requested, no --on-capture command configured")
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, seconds(captureSeconds))
	defer cancel()

	shell, flag := "/bin/sh", "-c"
	if runtime.GOOS == "windows" {
		shell, flag = "cmd", "/C"
	}
	start := time.Now()
	out, err := exec.CommandContext(ctx, shell, flag, onCapture).CombinedOutput()
	logger.Info("capture command finished",
		zap.Duration("took", time.Since(start)),
		zap.ByteString("output", out),
		zap.Error(err))
	return err
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&onCapture, "on-capture", "", "shell command that performs a capture")
	serveCmd.Flags().Float64Var(&captureSeconds, "capture-timeout", 60, "seconds the capture command may take")
}
