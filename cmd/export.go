package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/signal-scout/internal/output"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the rolling signal summary to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		writer, err := output.NewWriter(cfg.Output.Dir)
		if err != nil {
			return eris.Wrap(err, "open output")
		}

		summary := writer.Summary()
		if summary.TotalEvents == 0 {
			return eris.New("nothing to export: no events recorded yet")
		}

		if err := output.ExportExcel(summary, exportOut); err != nil {
			return err
		}
		fmt.Printf("exported %d events (%d recent) to %s\n",
			summary.TotalEvents, len(summary.Recent), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "signals_report.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
