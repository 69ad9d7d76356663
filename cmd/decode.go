package cmd

import (
	"fmt"

	"Tonelink/internal/wave"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var decodeCmd = &cobra.Command{
	Use:   "decode FILE...",
	Short: "Decode commands out of recorded WAV files",
	Long: `Run the demodulator over recordings instead of live audio. Each file
is decoded with the configured tone set at the file's own sample rate,
so captures made on another rig decode as they were heard there. When no
frame is found the strongest tone in the file is printed, which usually
says whether the problem is silence, hum, or a detuned rig.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		failed := 0
		for _, path := range args {
			buf, rate, err := wave.ReadFile(path)
			if err != nil {
				return err
			}
			if rate != cfg.FSK.SampleRate {
				logger.Info("decoding at the file's rate",
					zap.String("file", path),
					zap.Int("file_rate", rate),
					zap.Int("config_rate", cfg.FSK.SampleRate))
			}
			fileCfg := *cfg
			fileCfg.FSK.SampleRate = rate
			m, err := fileCfg.Modem(logger)
			if err != nil {
				return err
			}
			if c, ok := m.DecodeCommand(buf); ok {
				fmt.Printf("%s: %s\n", path, c)
				continue
			}
			failed++
			d := m.DominantTone(buf)
			fmt.Printf("%s: no command found; strongest tone %.1f Hz at magnitude %.1f\n",
				path, d.Freq, d.Magnitude)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files held no command", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
