package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/signal-scout/internal/pipeline"
)

var runJSON bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one pipeline pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv()
		if err != nil {
			return err
		}

		result, err := e.Pipeline.Run(cmd.Context())
		if err != nil {
			return err
		}

		return printRunResult(result)
	},
}

func printRunResult(result *pipeline.Result) error {
	if runJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Run %s finished in %s\n", result.RunID, result.Duration.Round(time.Millisecond))
	fmt.Printf("  collected: %d  matched: %d  classified: %d  emitted: %d  duplicates: %d\n",
		result.EventsCollected, result.EventsMatched, result.EventsClassified,
		result.EventsEmitted, result.DuplicatesSkipped)
	for source, count := range result.EventsBySource {
		fmt.Printf("  source %-12s %d\n", source, count)
	}
	for category, count := range result.EventsByCategory {
		fmt.Printf("  category %-22s %d\n", category, count)
	}
	if len(result.CollectorErrors) > 0 {
		fmt.Printf("  collector errors:\n")
		for label, msg := range result.CollectorErrors {
			fmt.Printf("    %s: %s\n", label, msg)
		}
	}
	fmt.Printf("  tokens in/out: %d/%d  cost: $%.4f\n",
		result.TokenUsage.InputTokens, result.TokenUsage.OutputTokens, result.Cost)
	return nil
}

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the run result as JSON")
	rootCmd.AddCommand(runCmd)
}
