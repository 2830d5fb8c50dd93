package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/signal-scout/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "signal-scout",
	Short: "B2B buying-signal detection pipeline",
	Long:  "Collects posts from public sources, scores them against an Ideal Customer Profile, classifies buying signals via Claude with a deterministic fallback, and accumulates per-company knowledge over time.",
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
