package pipeline

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/signal-scout/internal/classify"
	"github.com/sells-group/signal-scout/internal/collector"
	"github.com/sells-group/signal-scout/internal/icp"
	"github.com/sells-group/signal-scout/internal/memory"
	"github.com/sells-group/signal-scout/internal/model"
	"github.com/sells-group/signal-scout/internal/output"
	"github.com/sells-group/signal-scout/pkg/anthropic"
)

func classificationJSON(confidence float64) string {
	return `{"is_signal": true, "confidence": ` + strconv.FormatFloat(confidence, 'f', -1, 64) + `, "category": "tms_logistics", "strength": "strong", "buying_stage": "evaluation", "reasoning": "test", "keywords": [], "suggested_actions": []}`
}

func rawEvent(id, company, body string) model.RawEvent {
	return model.RawEvent{
		ID:          id,
		Source:      model.SourceLinkedIn,
		ContentType: "post",
		URL:         "https://linkedin.com/posts/" + id,
		Title:       "post " + id,
		Body:        body,
		AuthorRole:  "Director of Supply Chain",
		CompanyHint: company,
		CollectedAt: time.Now().UTC(),
	}
}

func testPipeline(t *testing.T, events []model.RawEvent, client anthropic.Client) (*Pipeline, *memory.CompanyMemory, *memory.SignalHistory, *output.Writer) {
	t.Helper()

	registry := collector.NewRegistry()
	registry.Register("stub", &stubCollector{events: events})

	matcher := icp.NewMatcherWithCriteria(&icp.Criteria{
		Name:             "Test ICP",
		TargetRoles:      []string{"supply chain"},
		ExcludeCompanies: []string{"Excluded Corp"},
	})

	classifier := classify.New(client, classify.Config{Model: "claude-sonnet-4-5-20250929"})

	writer, err := output.NewWriter(t.TempDir())
	require.NoError(t, err)

	companies := memory.NewCompanyMemory(t.TempDir() + "/companies.json")
	history := memory.NewSignalHistory(t.TempDir() + "/signals.json")

	p := New(registry, matcher, classifier, writer, companies, history, Options{
		ConfidenceThreshold: 0.6,
		Version:             "1.0.0",
		Model:               "claude-sonnet-4-5-20250929",
		StageDir:            t.TempDir(),
	})
	return p, companies, history, writer
}

func TestRunEndToEnd(t *testing.T) {
	events := []model.RawEvent{
		rawEvent("e1", "Excluded Corp", "issuing an rfp for a new tms platform evaluation"),
		rawEvent("e2", "Acme Logistics", "kicking off a vendor selection for transportation management"),
		rawEvent("e3", "Globex", "mild curiosity about modernize-ing our freight ops"),
	}

	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.Messages) == 1 && strings.Contains(req.Messages[0].Content, "Acme Logistics")
	})).Return(textResponse(classificationJSON(0.9)), nil)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.Messages) == 1 && strings.Contains(req.Messages[0].Content, "Globex")
	})).Return(textResponse(classificationJSON(0.4)), nil)

	p, companies, history, writer := testPipeline(t, events, client)

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	// Excluded company never reaches classification.
	assert.Equal(t, 3, result.EventsCollected)
	assert.Equal(t, 2, result.EventsMatched)
	assert.Equal(t, 2, result.EventsClassified)

	// Only the high-confidence signal clears the 0.6 gate.
	assert.Equal(t, 1, result.EventsEmitted)
	assert.Equal(t, 1, result.EventsBySource[model.SourceLinkedIn])
	assert.Equal(t, 1, result.EventsByCategory[model.CategoryTMSLogistics])
	assert.Empty(t, result.CollectorErrors)

	k, ok := companies.GetCompany("Acme Logistics")
	require.True(t, ok)
	assert.Equal(t, 1, k.SignalCount)
	assert.Equal(t, model.StageEvaluation, k.LatestBuyingStage)

	_, ok = companies.GetCompany("Globex")
	assert.False(t, ok)

	assert.Equal(t, 1, history.Count())
	assert.Equal(t, 1, writer.Summary().TotalEvents)

	assert.Equal(t, int64(200), result.TokenUsage.InputTokens)
	assert.Greater(t, result.Cost, 0.0)
}

func TestRunIsolatesCollectorFailure(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(classificationJSON(0.9)), nil)

	p, _, _, _ := testPipeline(t, []model.RawEvent{
		rawEvent("e1", "Acme", "kicking off a tms vendor selection"),
	}, client)
	p.registry.Register("broken", &failingCollector{})

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.EventsCollected)
	assert.Equal(t, 1, result.EventsEmitted)
	require.Contains(t, result.CollectorErrors, "broken")
	assert.Contains(t, result.CollectorErrors["broken"], "source offline")
}

func TestRunDeduplicatesAcrossRuns(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(classificationJSON(0.9)), nil)

	p, companies, history, _ := testPipeline(t, []model.RawEvent{
		rawEvent("e1", "Acme", "kicking off a tms vendor selection"),
	}, client)

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.EventsEmitted)

	second, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.EventsEmitted)
	assert.Equal(t, 1, second.DuplicatesSkipped)

	assert.Equal(t, 1, history.Count())
	k, _ := companies.GetCompany("Acme")
	assert.Equal(t, 1, k.SignalCount)
}

func TestRunCapsCollectedEvents(t *testing.T) {
	var events []model.RawEvent
	for i := 0; i < 10; i++ {
		events = append(events, rawEvent("e"+string(rune('a'+i)), "Acme", "general chatter"))
	}

	p, _, _, _ := testPipeline(t, events, nil)
	p.opts.MaxEventsPerRun = 4

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, result.EventsCollected)
	assert.LessOrEqual(t, result.EventsMatched, 4)
}

func TestRunFallbackClassification(t *testing.T) {
	// No client at all: the deterministic fallback must still emit strong
	// signals above threshold... which fallback confidence never reaches
	// with fewer than three keyword hits at the 0.6 gate.
	p, _, _, _ := testPipeline(t, []model.RawEvent{
		rawEvent("e1", "Acme", "issuing an rfp for a tms covering transportation management, freight and carrier route optimization"),
	}, nil)

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.EventsEmitted)
}

