package memory

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/signal-scout/internal/model"
)

func newHistory(t *testing.T) *SignalHistory {
	t.Helper()
	return NewSignalHistory(filepath.Join(t.TempDir(), "signals.json"))
}

func TestHashBodyNormalization(t *testing.T) {
	a := hashBody("We need a   new TMS\n\nurgently")
	b := hashBody("we need a new tms urgently")
	assert.Equal(t, a, b)
	assert.Regexp(t, `^h[0-9a-z]+$`, a)

	assert.NotEqual(t, hashBody("completely different content"), a)
}

func TestHashBodyIgnoresTrailingContent(t *testing.T) {
	prefix := ""
	for len(prefix) < 200 {
		prefix += "supply chain visibility gaps are hurting our planning cycle "
	}
	assert.Equal(t, hashBody(prefix+"tail one"), hashBody(prefix+"tail two"))
}

func TestRecordDeduplicatesByBody(t *testing.T) {
	h := newHistory(t)
	now := time.Now().UTC()

	e1 := signalEvent("e1", "Acme", model.CategoryTMSLogistics, model.StageEvaluation, now)
	assert.True(t, h.Record(e1))

	// Same body, different ID and URL.
	e2 := signalEvent("e2", "Acme", model.CategoryTMSLogistics, model.StageEvaluation, now)
	e2.Raw.Body = e1.Raw.Body
	assert.False(t, h.Record(e2))
	assert.Equal(t, 1, h.Count())
}

func TestRecordDeduplicatesByURL(t *testing.T) {
	h := newHistory(t)
	now := time.Now().UTC()

	e1 := signalEvent("e1", "Acme", model.CategoryTMSLogistics, model.StageEvaluation, now)
	require.True(t, h.Record(e1))

	e2 := signalEvent("e2", "Acme", model.CategoryTMSLogistics, model.StageEvaluation, now)
	e2.Source.URL = e1.Source.URL
	assert.False(t, h.Record(e2))

	assert.True(t, h.IsDuplicate(e1.Raw.Body, ""))
	assert.True(t, h.IsDuplicate("unseen body", e1.Source.URL))
	assert.False(t, h.IsDuplicate("unseen body", "https://example.com/unseen"))
}

func TestHistoryGetters(t *testing.T) {
	h := newHistory(t)
	now := time.Now().UTC()

	require.True(t, h.Record(signalEvent("e1", "Acme", model.CategoryTMSLogistics, model.StageEvaluation, now.Add(-time.Hour))))
	require.True(t, h.Record(signalEvent("e2", "Globex", model.CategoryERPMigration, model.StageResearch, now)))
	require.True(t, h.Record(signalEvent("e3", "acme", model.CategoryWMSWarehouse, model.StageAwareness, now.Add(-30*24*time.Hour))))

	assert.Len(t, h.GetByCompany("ACME"), 2)
	assert.Len(t, h.GetByCategory(model.CategoryERPMigration), 1)
	assert.Len(t, h.GetSince(now.Add(-2*time.Hour)), 2)

	recent := h.GetRecent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "e2", recent[0].EventID)
	assert.Equal(t, "e1", recent[1].EventID)
}

func TestDetectTrends(t *testing.T) {
	h := newHistory(t)
	now := time.Now().UTC()
	recent := now.Add(-24 * time.Hour)
	previous := now.Add(-10 * 24 * time.Hour)

	// TMS: 2 recent vs 1 previous -> up.
	require.True(t, h.Record(signalEvent("t1", "A", model.CategoryTMSLogistics, model.StageResearch, recent)))
	require.True(t, h.Record(signalEvent("t2", "B", model.CategoryTMSLogistics, model.StageResearch, recent)))
	require.True(t, h.Record(signalEvent("t3", "C", model.CategoryTMSLogistics, model.StageResearch, previous)))

	// ERP: 0 recent vs 2 previous -> down.
	require.True(t, h.Record(signalEvent("p1", "D", model.CategoryERPMigration, model.StageResearch, previous)))
	require.True(t, h.Record(signalEvent("p2", "E", model.CategoryERPMigration, model.StageResearch, previous)))

	// WMS: 1 recent vs 1 previous -> stable.
	require.True(t, h.Record(signalEvent("w1", "F", model.CategoryWMSWarehouse, model.StageResearch, recent)))
	require.True(t, h.Record(signalEvent("w2", "G", model.CategoryWMSWarehouse, model.StageResearch, previous)))

	// Older than both windows: excluded entirely.
	require.True(t, h.Record(signalEvent("x1", "H", model.CategorySupplierRisk, model.StageResearch, now.Add(-40*24*time.Hour))))

	trends := h.DetectTrends(7)
	require.Len(t, trends, 3)

	byCategory := map[model.SignalCategory]model.CategoryTrend{}
	for _, tr := range trends {
		byCategory[tr.Category] = tr
	}

	assert.Equal(t, model.TrendUp, byCategory[model.CategoryTMSLogistics].Trend)
	assert.Equal(t, 2, byCategory[model.CategoryTMSLogistics].RecentCount)
	assert.Equal(t, model.TrendDown, byCategory[model.CategoryERPMigration].Trend)
	assert.Equal(t, 0, byCategory[model.CategoryERPMigration].RecentCount)
	assert.Equal(t, model.TrendStable, byCategory[model.CategoryWMSWarehouse].Trend)

	// Highest recent volume leads.
	assert.Equal(t, model.CategoryTMSLogistics, trends[0].Category)
}
