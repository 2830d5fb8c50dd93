package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/signal-scout/internal/sched"
)

var (
	watchCron      string
	watchImmediate bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the pipeline continuously on a cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv()
		if err != nil {
			return err
		}

		spec := watchCron
		if spec == "" {
			spec = cfg.Schedule.Cron
		}
		immediate := watchImmediate || cfg.Schedule.Immediate

		s := sched.New(func(ctx context.Context) error {
			result, err := e.Pipeline.Run(ctx)
			if err != nil {
				return err
			}
			zap.L().Info("watch: run finished",
				zap.String("run_id", result.RunID),
				zap.Int("emitted", result.EventsEmitted),
			)
			return nil
		})
		if err := s.Start(ctx, spec, immediate); err != nil {
			return err
		}
		defer s.Stop()

		<-ctx.Done()
		zap.L().Info("watch: shutting down", zap.Int64("skipped_ticks", s.Skipped()))
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchCron, "cron", "", "cron schedule (overrides config)")
	watchCmd.Flags().BoolVar(&watchImmediate, "immediate", false, "run once immediately before the first tick")
	rootCmd.AddCommand(watchCmd)
}
