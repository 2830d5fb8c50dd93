package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/signal-scout/internal/model"
)

func emittedEvent(id string) model.BuyingSignalEvent {
	return model.BuyingSignalEvent{
		EventID:   id,
		Timestamp: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		Source: model.SignalSource{
			Platform:    model.SourceLinkedIn,
			ContentType: "post",
			URL:         "https://linkedin.com/posts/" + id,
		},
		Company: model.CompanyMatch{CompanyName: "Acme", MatchScore: 0.75},
		Signal: model.SignalClassification{
			IsSignal:    true,
			Confidence:  0.9,
			Category:    model.CategoryTMSLogistics,
			Strength:    model.StrengthStrong,
			BuyingStage: model.StageEvaluation,
			Reasoning:   "Active RFP mentioned.",
		},
		Raw:      model.RawContent{Body: "issuing an rfp for a new tms"},
		Pipeline: model.Provenance{CollectedAt: time.Now().UTC(), ProcessedAt: time.Now().UTC(), PipelineVersion: "1.0.0"},
	}
}

func TestWriteEventPersistsAllSurfaces(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	written, err := w.WriteEvent("run_1", emittedEvent("evt_1"))
	require.NoError(t, err)
	assert.True(t, written)
	written, err = w.WriteEvent("run_1", emittedEvent("evt_2"))
	require.NoError(t, err)
	assert.True(t, written)

	// Standalone documents.
	_, err = os.Stat(filepath.Join(dir, "events", "evt_1.json"))
	assert.NoError(t, err)

	// Run log.
	events, err := w.ReadRun("run_1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "evt_1", events[0].EventID)

	// Rolling summary.
	s := w.Summary()
	assert.Equal(t, 2, s.TotalEvents)
	assert.Equal(t, 2, s.ByCategory[model.CategoryTMSLogistics])
	assert.Equal(t, 2, s.ByStrength[model.StrengthStrong])
	assert.Equal(t, 2, s.BySource[model.SourceLinkedIn])
	assert.Len(t, s.Recent, 2)
}

func TestWriteEventSkipsInvalid(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	bad := emittedEvent("evt_bad")
	bad.Signal.Confidence = 1.5

	written, err := w.WriteEvent("run_1", bad)
	require.NoError(t, err)
	assert.False(t, written)
	assert.Zero(t, w.Summary().TotalEvents)
}

func TestSummarySurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)
	_, err = w.WriteEvent("run_1", emittedEvent("evt_1"))
	require.NoError(t, err)

	reopened, err := NewWriter(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Summary().TotalEvents)
	assert.Len(t, reopened.Summary().Recent, 1)
}

func TestSummaryRecentWindowCaps(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	for i := 0; i < latestSummarySize+10; i++ {
		ev := emittedEvent("evt_" + string(rune('a'+i%26)) + string(rune('a'+i/26)))
		_, err := w.WriteEvent("run_1", ev)
		require.NoError(t, err)
	}

	s := w.Summary()
	assert.Equal(t, latestSummarySize+10, s.TotalEvents)
	assert.Len(t, s.Recent, latestSummarySize)
}

func TestExportExcel(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)
	_, err = w.WriteEvent("run_1", emittedEvent("evt_1"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "signals_report.xlsx")
	require.NoError(t, ExportExcel(w.Summary(), path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	signals := f.Sheets[0]
	require.GreaterOrEqual(t, len(signals.Rows), 2)
	assert.Equal(t, "Event ID", signals.Rows[0].Cells[0].Value)
	assert.Equal(t, "evt_1", signals.Rows[1].Cells[0].Value)
	assert.Equal(t, "Acme", signals.Rows[1].Cells[2].Value)
}
