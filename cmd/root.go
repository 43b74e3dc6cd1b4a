package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seisnet/css3convert/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "css3convert",
	Short: "Convert decoded seismic waveform segments to a CSS3.0 flat-file database",
	Long:  "Pairs decoded waveform segments with station metadata and writes CSS3.0 relational tables, a binary waveform store and PAZFIR instrument response files.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
