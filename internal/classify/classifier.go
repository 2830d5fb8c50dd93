// Package classify decides whether raw events are genuine buying signals.
//
// The primary path sends each event to a hosted model with a strict JSON
// contract; any transport or parse failure falls through to a deterministic
// rule-based fallback, so classification never returns an error.
package classify

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/signal-scout/internal/model"
	"github.com/sells-group/signal-scout/internal/resilience"
	"github.com/sells-group/signal-scout/pkg/anthropic"
)

const systemPrompt = `You are a B2B buying-signal analyst specializing in procurement, supply chain, and logistics technology.

Given a piece of online content (post, tweet, job listing, release note, etc.), determine:
1. Whether it represents a genuine buying signal for supply-chain / procurement / logistics solutions
2. The category of signal
3. Signal strength and buying stage
4. Key reasoning and suggested follow-up actions

Respond ONLY with valid JSON matching this schema:
{
  "is_signal": boolean,
  "confidence": number (0-1),
  "category": "planning_visibility" | "inventory_optimization" | "procurement_sourcing" | "tms_logistics" | "wms_warehouse" | "s2p_transformation" | "erp_migration" | "supplier_risk" | "network_design" | "analytics_reporting" | "general_operations",
  "strength": "strong" | "moderate" | "weak",
  "buying_stage": "awareness" | "research" | "evaluation" | "decision" | "implementation",
  "reasoning": "1-2 sentence explanation",
  "keywords": ["list", "of", "relevant", "keywords"],
  "suggested_actions": ["actionable next steps for sales/marketing team"]
}

Category definitions:
- planning_visibility: demand planning, supply planning, control towers, visibility platforms
- inventory_optimization: inventory management, safety stock, demand sensing, replenishment
- procurement_sourcing: sourcing, e-procurement, category management, strategic sourcing
- tms_logistics: transportation management, freight, carrier management, route optimization
- wms_warehouse: warehouse management, fulfillment, pick/pack/ship, DC operations
- s2p_transformation: source-to-pay, procure-to-pay, AP automation, contract management
- erp_migration: ERP changes, system migration, core platform changes
- supplier_risk: supplier risk management, SRM, supplier qualification, compliance
- network_design: supply chain network design, DC location, distribution strategy
- analytics_reporting: supply chain analytics, reporting, dashboards, data platforms
- general_operations: general ops improvement that doesn't fit above categories

Signal strength:
- strong: explicit mention of buying, evaluating, implementing, or RFP/RFQ
- moderate: clear pain point or interest in solutions, but no active buying language
- weak: general discussion relevant to domain but no clear buying intent

Buying stage:
- awareness: recognizing a problem exists
- research: actively looking into solutions or approaches
- evaluation: comparing vendors or running RFP/RFQ
- decision: selecting a vendor or finalizing a deal
- implementation: deploying or rolling out a solution`

// defaultConcurrency bounds in-flight classification calls per chunk.
const defaultConcurrency = 5

// Config holds classifier settings.
type Config struct {
	Model       string
	MaxTokens   int64
	Concurrency int
}

// Classifier classifies raw events via the model with a rule-based fallback.
type Classifier struct {
	client anthropic.Client
	cfg    Config
	retry  resilience.RetryConfig

	mu    sync.Mutex
	usage anthropic.TokenUsage
}

// New creates a Classifier. A nil client forces the fallback path for every
// event, which keeps offline runs working.
func New(client anthropic.Client, cfg Config) *Classifier {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("anthropic", "classify")
	return &Classifier{client: client, cfg: cfg, retry: retry}
}

// Classify classifies one event. It never returns an error: any primary
// path failure yields the deterministic fallback classification.
func (c *Classifier) Classify(ctx context.Context, event model.RawEvent) model.SignalClassification {
	if c.client == nil {
		return fallbackClassify(event)
	}

	req := anthropic.MessageRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		System:    anthropic.BuildCachedSystemBlocks(systemPrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: buildPrompt(event)},
		},
	}

	resp, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return c.client.CreateMessage(ctx, req)
	})
	if err != nil {
		zap.L().Warn("classify: model call failed, using fallback",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return fallbackClassify(event)
	}

	c.mu.Lock()
	c.usage.Add(resp.Usage)
	c.mu.Unlock()

	classification, err := parseClassification(resp.Text())
	if err != nil {
		zap.L().Warn("classify: unparseable model response, using fallback",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return fallbackClassify(event)
	}

	return classification
}

// ClassifyBatch classifies events in fixed-size chunks. All calls within a
// chunk run concurrently; chunks run strictly sequentially, so at most
// `concurrency` classification calls are outstanding. Pass concurrency <= 0
// for the configured default.
func (c *Classifier) ClassifyBatch(ctx context.Context, events []model.RawEvent, concurrency int) map[string]model.SignalClassification {
	if concurrency <= 0 {
		concurrency = c.cfg.Concurrency
	}

	results := make(map[string]model.SignalClassification, len(events))
	var mu sync.Mutex

	for start := 0; start < len(events); start += concurrency {
		end := min(start+concurrency, len(events))

		g, gCtx := errgroup.WithContext(ctx)
		for _, event := range events[start:end] {
			g.Go(func() error {
				classification := c.Classify(gCtx, event)
				mu.Lock()
				results[event.ID] = classification
				mu.Unlock()
				return nil
			})
		}
		// Classify never errors, so Wait only synchronizes the chunk.
		_ = g.Wait()
	}

	return results
}

// Usage returns the accumulated token usage across classification calls.
func (c *Classifier) Usage() anthropic.TokenUsage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

// buildPrompt renders one event into the user message.
func buildPrompt(event model.RawEvent) string {
	var b strings.Builder
	b.WriteString("Source: " + string(event.Source) + " (" + string(event.ContentType) + ")\n")
	if event.Author != "" {
		b.WriteString("Author: " + event.Author + "\n")
	}
	if event.AuthorRole != "" {
		b.WriteString("Author Role: " + event.AuthorRole + "\n")
	}
	if event.CompanyHint != "" {
		b.WriteString("Company: " + event.CompanyHint + "\n")
	}
	if event.Title != "" {
		b.WriteString("Title: " + event.Title + "\n")
	}
	b.WriteString("Content:\n" + event.Body)
	return b.String()
}

// jsonObjectPattern extracts the first JSON object from a response that may
// be wrapped in prose or markdown fences.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

var errNoJSON = eris.New("classify: no JSON object in model response")

type wireClassification struct {
	IsSignal         bool     `json:"is_signal"`
	Confidence       float64  `json:"confidence"`
	Category         string   `json:"category"`
	Strength         string   `json:"strength"`
	BuyingStage      string   `json:"buying_stage"`
	Reasoning        string   `json:"reasoning"`
	Keywords         []string `json:"keywords"`
	SuggestedActions []string `json:"suggested_actions"`
}

// parseClassification validates and coerces a model response. Confidence is
// clamped to [0,1]; out-of-enum values coerce to safe defaults rather than
// failing.
func parseClassification(text string) (model.SignalClassification, error) {
	raw := jsonObjectPattern.FindString(text)
	if raw == "" {
		return model.SignalClassification{}, errNoJSON
	}

	var w wireClassification
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return model.SignalClassification{}, err
	}

	confidence := w.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	category := model.SignalCategory(strings.ToLower(w.Category))
	if !model.ValidSignalCategory(category) {
		category = model.CategoryGeneralOperations
	}

	strength := model.SignalStrength(strings.ToLower(w.Strength))
	if !model.ValidSignalStrength(strength) {
		strength = model.StrengthWeak
	}

	stage := model.BuyingStage(strings.ToLower(w.BuyingStage))
	if !model.ValidBuyingStage(stage) {
		stage = model.StageAwareness
	}

	keywords := w.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	actions := w.SuggestedActions
	if actions == nil {
		actions = []string{}
	}

	return model.SignalClassification{
		IsSignal:         w.IsSignal,
		Confidence:       confidence,
		Category:         category,
		Strength:         strength,
		BuyingStage:      stage,
		Reasoning:        w.Reasoning,
		Keywords:         keywords,
		SuggestedActions: actions,
	}, nil
}
