// Package pipeline orchestrates one end-to-end signal-scout run: drain the
// collectors, score events against the ICP, classify the survivors, and
// persist everything that clears the confidence threshold.
package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/signal-scout/internal/classify"
	"github.com/sells-group/signal-scout/internal/collector"
	"github.com/sells-group/signal-scout/internal/cost"
	"github.com/sells-group/signal-scout/internal/icp"
	"github.com/sells-group/signal-scout/internal/memory"
	"github.com/sells-group/signal-scout/internal/model"
	"github.com/sells-group/signal-scout/internal/output"
	"github.com/sells-group/signal-scout/pkg/anthropic"
)

// Options carries the externally configured run parameters.
type Options struct {
	// ConfidenceThreshold gates event emission. Default: 0.6.
	ConfidenceThreshold float64
	// MaxEventsPerRun truncates the collected batch before matching.
	// Default: 500.
	MaxEventsPerRun int
	// ClassifyConcurrency is the classification chunk size. Default: 5.
	ClassifyConcurrency int
	// Version is stamped into each event's provenance. Default: "1.0.0".
	Version string
	// Model prices the run's token usage.
	Model string
	// StageDir holds the intermediate raw-event file during a run.
	StageDir string
}

// Result summarizes one run.
type Result struct {
	RunID             string                       `json:"run_id"`
	StartedAt         time.Time                    `json:"started_at"`
	Duration          time.Duration                `json:"duration"`
	EventsCollected   int                          `json:"events_collected"`
	EventsMatched     int                          `json:"events_matched"`
	EventsClassified  int                          `json:"events_classified"`
	EventsEmitted     int                          `json:"events_emitted"`
	DuplicatesSkipped int                          `json:"duplicates_skipped"`
	CollectorErrors   map[string]string            `json:"collector_errors,omitempty"`
	EventsBySource    map[model.SourcePlatform]int `json:"events_by_source"`
	EventsByCategory  map[model.SignalCategory]int `json:"events_by_category"`
	TokenUsage        anthropic.TokenUsage         `json:"token_usage"`
	Cost              float64                      `json:"cost"`
}

// Pipeline wires the run stages together.
type Pipeline struct {
	registry   *collector.Registry
	matcher    *icp.Matcher
	classifier *classify.Classifier
	writer     *output.Writer
	companies  *memory.CompanyMemory
	history    *memory.SignalHistory
	costCalc   *cost.Calculator
	opts       Options
}

// New creates a Pipeline with all dependencies.
func New(
	registry *collector.Registry,
	matcher *icp.Matcher,
	classifier *classify.Classifier,
	writer *output.Writer,
	companies *memory.CompanyMemory,
	history *memory.SignalHistory,
	opts Options,
) *Pipeline {
	if opts.ConfidenceThreshold <= 0 {
		opts.ConfidenceThreshold = 0.6
	}
	if opts.MaxEventsPerRun <= 0 {
		opts.MaxEventsPerRun = 500
	}
	if opts.ClassifyConcurrency <= 0 {
		opts.ClassifyConcurrency = 5
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	if opts.StageDir == "" {
		opts.StageDir = os.TempDir()
	}
	return &Pipeline{
		registry:   registry,
		matcher:    matcher,
		classifier: classifier,
		writer:     writer,
		companies:  companies,
		history:    history,
		costCalc:   cost.NewCalculator(cost.DefaultRates()),
		opts:       opts,
	}
}

// Run executes one end-to-end pass. Partial failures (collector errors,
// classification fallbacks, invalid events) never abort the run; the
// returned Result always reflects whatever completed.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := "run_" + uuid.NewString()
	start := time.Now().UTC()
	log := zap.L().With(zap.String("run_id", runID))
	log.Info("pipeline: starting run")

	result := &Result{
		RunID:            runID,
		StartedAt:        start,
		CollectorErrors:  map[string]string{},
		EventsBySource:   map[model.SourcePlatform]int{},
		EventsByCategory: map[model.SignalCategory]int{},
	}

	// Stage 1: collector fan-out with isolated failures.
	raw := p.collect(ctx, result, log)
	result.EventsCollected = len(raw)

	if len(raw) > p.opts.MaxEventsPerRun {
		log.Warn("pipeline: truncating collected batch",
			zap.Int("collected", len(raw)),
			zap.Int("cap", p.opts.MaxEventsPerRun),
		)
		raw = raw[:p.opts.MaxEventsPerRun]
	}

	stagePath := p.stageRawEvents(runID, raw, log)

	// Stage 2: ICP match, keep scored events only.
	type matched struct {
		event model.RawEvent
		match model.CompanyMatch
	}
	var survivors []matched
	for _, event := range raw {
		m := p.matcher.Match(event)
		if m.MatchScore > 0 {
			survivors = append(survivors, matched{event: event, match: m})
		}
	}
	result.EventsMatched = len(survivors)
	log.Info("pipeline: icp matching complete",
		zap.Int("collected", len(raw)),
		zap.Int("matched", len(survivors)),
	)

	// Stage 3: classification in sequential chunks.
	events := make([]model.RawEvent, len(survivors))
	for i, s := range survivors {
		events[i] = s.event
	}
	classifications := p.classifier.ClassifyBatch(ctx, events, p.opts.ClassifyConcurrency)
	result.EventsClassified = len(classifications)

	// Stage 4: threshold gate, assembly, persistence.
	processedAt := time.Now().UTC()
	for _, s := range survivors {
		classification, ok := classifications[s.event.ID]
		if !ok {
			continue
		}
		if !classification.IsSignal || classification.Confidence < p.opts.ConfidenceThreshold {
			continue
		}

		event := p.assemble(s.event, s.match, classification, processedAt)

		if !p.history.Record(event) {
			result.DuplicatesSkipped++
			log.Debug("pipeline: duplicate signal skipped",
				zap.String("event_id", event.EventID),
				zap.String("url", event.Source.URL),
			)
			continue
		}

		written, err := p.writer.WriteEvent(runID, event)
		if err != nil {
			log.Error("pipeline: failed to write event",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
			continue
		}
		if !written {
			continue
		}

		p.companies.RecordSignal(event)
		result.EventsEmitted++
		result.EventsBySource[event.Source.Platform]++
		result.EventsByCategory[event.Signal.Category]++
	}

	result.TokenUsage = p.classifier.Usage()
	result.Cost = p.costCalc.Usage(p.opts.Model, result.TokenUsage)
	result.Duration = time.Since(start)

	// Best-effort cleanup; a leftover stage file is harmless.
	if stagePath != "" {
		if err := os.Remove(stagePath); err != nil && !os.IsNotExist(err) {
			log.Warn("pipeline: failed to remove stage file",
				zap.String("path", stagePath),
				zap.Error(err),
			)
		}
	}

	log.Info("pipeline: run complete",
		zap.Int("collected", result.EventsCollected),
		zap.Int("matched", result.EventsMatched),
		zap.Int("emitted", result.EventsEmitted),
		zap.Int("duplicates", result.DuplicatesSkipped),
		zap.Duration("duration", result.Duration),
		zap.Float64("cost", result.Cost),
	)
	return result, nil
}

// collect drains every registered collector in parallel. Failures are
// recorded per collector and never fail the batch.
func (p *Pipeline) collect(ctx context.Context, result *Result, log *zap.Logger) []model.RawEvent {
	var mu sync.Mutex
	var raw []model.RawEvent

	g, gCtx := errgroup.WithContext(ctx)
	for _, entry := range p.registry.All() {
		g.Go(func() error {
			events, err := entry.Collector.Collect(gCtx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.CollectorErrors[entry.Label] = err.Error()
				log.Warn("pipeline: collector failed",
					zap.String("collector", entry.Label),
					zap.Error(err),
				)
				return nil
			}
			raw = append(raw, events...)
			return nil
		})
	}
	_ = g.Wait()
	return raw
}

// stageRawEvents durably stages the collected batch so a crash mid-run
// leaves the raw input recoverable. Returns the stage path, or "" when
// staging failed (staging is advisory, not load-bearing).
func (p *Pipeline) stageRawEvents(runID string, raw []model.RawEvent, log *zap.Logger) string {
	if err := os.MkdirAll(p.opts.StageDir, 0o755); err != nil {
		log.Warn("pipeline: failed to create stage directory", zap.Error(err))
		return ""
	}
	data, err := json.Marshal(raw)
	if err != nil {
		log.Warn("pipeline: failed to marshal stage file", zap.Error(err))
		return ""
	}
	path := filepath.Join(p.opts.StageDir, runID+"_raw.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn("pipeline: failed to write stage file", zap.Error(err))
		return ""
	}
	return path
}

func (p *Pipeline) assemble(raw model.RawEvent, match model.CompanyMatch, classification model.SignalClassification, processedAt time.Time) model.BuyingSignalEvent {
	return model.BuyingSignalEvent{
		EventID:   "evt_" + uuid.NewString(),
		Timestamp: processedAt,
		Source: model.SignalSource{
			Platform:    raw.Source,
			ContentType: raw.ContentType,
			URL:         raw.URL,
			Author:      raw.Author,
			AuthorRole:  raw.AuthorRole,
		},
		Company: match,
		Signal:  classification,
		Raw: model.RawContent{
			Title:       raw.Title,
			Body:        raw.Body,
			PublishedAt: raw.PublishedAt,
		},
		Pipeline: model.Provenance{
			CollectedAt:     raw.CollectedAt,
			ProcessedAt:     processedAt,
			PipelineVersion: p.opts.Version,
		},
	}
}
