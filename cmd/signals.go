package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/signal-scout/internal/model"
)

var (
	signalsLimit    int
	signalsCompany  string
	signalsCategory string
	signalsJSON     bool
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Show recorded buying signals",
	RunE: func(cmd *cobra.Command, args []string) error {
		e := initMemory()

		var list []model.StoredSignal
		switch {
		case signalsCompany != "":
			list = e.History.GetByCompany(signalsCompany)
		case signalsCategory != "":
			category := model.SignalCategory(signalsCategory)
			if !model.ValidSignalCategory(category) {
				return eris.Errorf("unknown category %q", signalsCategory)
			}
			list = e.History.GetByCategory(category)
		default:
			list = e.History.GetRecent(signalsLimit)
		}

		if signalsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}

		if len(list) == 0 {
			fmt.Println("no signals recorded yet")
			return nil
		}
		for _, s := range list {
			fmt.Printf("%s  %-24s %-22s %-8s conf=%.2f  %s\n",
				s.Timestamp.Format("2006-01-02"), s.CompanyName, s.Category,
				s.Strength, s.Confidence, s.URL)
		}
		return nil
	},
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback <event-id> <relevant|irrelevant|partially_relevant> [comment]",
	Short: "Record a relevance verdict for an emitted event",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		verdict := model.FeedbackVerdict(args[1])
		switch verdict {
		case model.FeedbackRelevant, model.FeedbackIrrelevant, model.FeedbackPartiallyRelevant:
		default:
			return eris.Errorf("unknown verdict %q", args[1])
		}

		comment := ""
		if len(args) == 3 {
			comment = args[2]
		}

		e := initMemory()
		e.Feedback.Record(args[0], verdict, comment)
		fmt.Printf("feedback recorded for %s\n", args[0])
		return nil
	},
}

func init() {
	signalsCmd.Flags().IntVar(&signalsLimit, "limit", 20, "number of recent signals to show")
	signalsCmd.Flags().StringVar(&signalsCompany, "company", "", "filter by company name")
	signalsCmd.Flags().StringVar(&signalsCategory, "category", "", "filter by signal category")
	signalsCmd.Flags().BoolVar(&signalsJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(signalsCmd, feedbackCmd)
}
