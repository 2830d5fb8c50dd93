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
	companiesTop   int
	companiesStage string
	companiesJSON  bool
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Show accumulated company knowledge",
	RunE: func(cmd *cobra.Command, args []string) error {
		e := initMemory()

		var list []model.CompanyKnowledge
		if companiesStage != "" {
			stage := model.BuyingStage(companiesStage)
			if !model.ValidBuyingStage(stage) {
				return eris.Errorf("unknown buying stage %q", companiesStage)
			}
			list = e.Companies.GetCompaniesByStage(stage)
		} else {
			list = e.Companies.GetTopCompanies(companiesTop)
		}

		if companiesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}

		if len(list) == 0 {
			fmt.Println("no companies recorded yet")
			return nil
		}
		for _, k := range list {
			fmt.Printf("%-30s signals=%-4d stage=%-14s last_seen=%s\n",
				k.CompanyName, k.SignalCount, k.LatestBuyingStage,
				k.LastSeenAt.Format("2006-01-02"))
		}
		return nil
	},
}

var companiesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one company's full record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := initMemory()

		k, ok := e.Companies.GetCompany(args[0])
		if !ok {
			return eris.Errorf("company %q not found", args[0])
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(k)
	},
}

var companiesNoteCmd = &cobra.Command{
	Use:   "note <name> <note>",
	Short: "Append a note to a known company",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := initMemory()

		if !e.Companies.AddNote(args[0], args[1]) {
			return eris.Errorf("company %q not found", args[0])
		}
		fmt.Printf("note added to %s\n", args[0])
		return nil
	},
}

var companiesAliasCmd = &cobra.Command{
	Use:   "alias <name> <alias>",
	Short: "Attach an alias to a company",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := initMemory()

		e.Companies.AddAlias(args[0], args[1])
		fmt.Printf("alias %q added to %s\n", args[1], args[0])
		return nil
	},
}

func init() {
	companiesCmd.Flags().IntVar(&companiesTop, "top", 20, "limit to the top N companies by signal count")
	companiesCmd.Flags().StringVar(&companiesStage, "stage", "", "filter by latest buying stage")
	companiesCmd.Flags().BoolVar(&companiesJSON, "json", false, "print as JSON")
	companiesCmd.AddCommand(companiesShowCmd, companiesNoteCmd, companiesAliasCmd)
	rootCmd.AddCommand(companiesCmd)
}
