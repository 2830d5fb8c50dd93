package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/signal-scout/internal/classify"
	"github.com/sells-group/signal-scout/internal/collector"
	"github.com/sells-group/signal-scout/internal/icp"
	"github.com/sells-group/signal-scout/internal/memory"
	"github.com/sells-group/signal-scout/internal/model"
	"github.com/sells-group/signal-scout/internal/output"
	"github.com/sells-group/signal-scout/internal/pipeline"
	"github.com/sells-group/signal-scout/pkg/anthropic"
)

// env bundles the wired components behind every command.
type env struct {
	Pipeline    *pipeline.Pipeline
	Companies   *memory.CompanyMemory
	History     *memory.SignalHistory
	Preferences *memory.PreferenceStore
	Feedback    *memory.FeedbackLog
	Writer      *output.Writer
}

// initEnv builds the full pipeline environment from the loaded config.
// An invalid or missing ICP criteria file is fatal here; everything else
// degrades at run time.
func initEnv() (*env, error) {
	criteria, err := icp.LoadCriteria(cfg.ICP.CriteriaPath)
	if err != nil {
		return nil, eris.Wrap(err, "init icp matcher")
	}
	matcher := icp.NewMatcherWithCriteria(criteria)

	var client anthropic.Client
	if cfg.Anthropic.Key != "" {
		client = anthropic.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Warn("no anthropic key configured, classification will use the rule-based fallback")
	}
	classifier := classify.New(client, classify.Config{
		Model:       cfg.Anthropic.Model,
		MaxTokens:   cfg.Anthropic.MaxTokens,
		Concurrency: cfg.Signal.ClassifyConcurrency,
	})

	writer, err := output.NewWriter(cfg.Output.Dir)
	if err != nil {
		return nil, eris.Wrap(err, "init output writer")
	}

	companies := memory.NewCompanyMemory(cfg.Memory.CompaniesPath())
	history := memory.NewSignalHistory(cfg.Memory.SignalsPath())
	preferences := memory.NewPreferenceStore(cfg.Memory.PreferencesPath())
	feedback := memory.NewFeedbackLog(cfg.Memory.FeedbackPath())

	registry := collector.NewRegistry()
	for _, d := range cfg.Collectors.DropDirs {
		platform := model.SourcePlatform(d.Platform)
		if !model.ValidSourcePlatform(platform) {
			zap.L().Warn("skipping drop dir with unknown platform",
				zap.String("label", d.Label),
				zap.String("platform", d.Platform),
			)
			continue
		}
		registry.Register(d.Label, collector.NewFileCollector(platform, d.Dir))
	}
	for _, f := range cfg.Collectors.Feeds {
		platform := model.SourcePlatform(f.Platform)
		if !model.ValidSourcePlatform(platform) {
			zap.L().Warn("skipping feed with unknown platform",
				zap.String("label", f.Label),
				zap.String("platform", f.Platform),
			)
			continue
		}
		registry.Register(f.Label, collector.NewFeedCollector(platform, f.URL, collector.FeedOptions{
			RequestsPerSecond: f.RequestsPerSecond,
		}))
	}

	p := pipeline.New(registry, matcher, classifier, writer, companies, history, pipeline.Options{
		ConfidenceThreshold: preferences.EffectiveMinConfidence(cfg.Signal.ConfidenceThreshold),
		MaxEventsPerRun:     cfg.Pipeline.MaxEventsPerRun,
		ClassifyConcurrency: cfg.Signal.ClassifyConcurrency,
		Version:             cfg.Pipeline.Version,
		Model:               cfg.Anthropic.Model,
		StageDir:            cfg.Output.StageDir,
	})

	return &env{
		Pipeline:    p,
		Companies:   companies,
		History:     history,
		Preferences: preferences,
		Feedback:    feedback,
		Writer:      writer,
	}, nil
}

// initMemory wires only the read-side stores, for commands that never run
// the pipeline.
func initMemory() *env {
	return &env{
		Companies:   memory.NewCompanyMemory(cfg.Memory.CompaniesPath()),
		History:     memory.NewSignalHistory(cfg.Memory.SignalsPath()),
		Preferences: memory.NewPreferenceStore(cfg.Memory.PreferencesPath()),
		Feedback:    memory.NewFeedbackLog(cfg.Memory.FeedbackPath()),
	}
}
