package output

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ExportExcel renders a summary into an xlsx workbook at path with a
// Signals sheet of recent events and a Breakdown sheet of the category,
// strength, and source histograms.
func ExportExcel(summary Summary, path string) error {
	f := xlsx.NewFile()

	signals, err := f.AddSheet("Signals")
	if err != nil {
		return eris.Wrap(err, "output: add signals sheet")
	}

	header := signals.AddRow()
	for _, col := range []string{
		"Event ID", "Timestamp", "Company", "Match Score",
		"Category", "Strength", "Buying Stage", "Confidence",
		"Source", "URL", "Reasoning",
	} {
		header.AddCell().Value = col
	}

	for _, e := range summary.Recent {
		row := signals.AddRow()
		row.AddCell().Value = e.EventID
		row.AddCell().Value = e.Timestamp.UTC().Format(time.RFC3339)
		row.AddCell().Value = e.Company.CompanyName
		row.AddCell().SetFloatWithFormat(e.Company.MatchScore, "0.00")
		row.AddCell().Value = string(e.Signal.Category)
		row.AddCell().Value = string(e.Signal.Strength)
		row.AddCell().Value = string(e.Signal.BuyingStage)
		row.AddCell().SetFloatWithFormat(e.Signal.Confidence, "0.00")
		row.AddCell().Value = string(e.Source.Platform)
		row.AddCell().Value = e.Source.URL
		row.AddCell().Value = e.Signal.Reasoning
	}

	breakdown, err := f.AddSheet("Breakdown")
	if err != nil {
		return eris.Wrap(err, "output: add breakdown sheet")
	}

	title := breakdown.AddRow()
	title.AddCell().Value = "Dimension"
	title.AddCell().Value = "Value"
	title.AddCell().Value = "Count"

	for category, count := range summary.ByCategory {
		row := breakdown.AddRow()
		row.AddCell().Value = "category"
		row.AddCell().Value = string(category)
		row.AddCell().SetInt(count)
	}
	for strength, count := range summary.ByStrength {
		row := breakdown.AddRow()
		row.AddCell().Value = "strength"
		row.AddCell().Value = string(strength)
		row.AddCell().SetInt(count)
	}
	for source, count := range summary.BySource {
		row := breakdown.AddRow()
		row.AddCell().Value = "source"
		row.AddCell().Value = string(source)
		row.AddCell().SetInt(count)
	}

	if !strings.HasSuffix(path, ".xlsx") {
		path += ".xlsx"
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "output: save workbook %s", path)
	}
	return nil
}
