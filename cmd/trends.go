package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	trendsWindow int
	trendsJSON   bool
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show per-category signal volume trends",
	RunE: func(cmd *cobra.Command, args []string) error {
		e := initMemory()

		window := trendsWindow
		if window <= 0 {
			window = cfg.Memory.TrendWindowDays
		}
		trends := e.History.DetectTrends(window)

		if trendsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(trends)
		}

		if len(trends) == 0 {
			fmt.Println("no signals in the comparison windows")
			return nil
		}
		arrows := map[string]string{"up": "▲", "down": "▼", "stable": "="}
		for _, tr := range trends {
			fmt.Printf("%-24s %3d recent  %s %s\n",
				tr.Category, tr.RecentCount, arrows[string(tr.Trend)], tr.Trend)
		}
		return nil
	},
}

func init() {
	trendsCmd.Flags().IntVar(&trendsWindow, "window", 0, "window size in days (default from config)")
	trendsCmd.Flags().BoolVar(&trendsJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(trendsCmd)
}
