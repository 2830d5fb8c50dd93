// Package collector defines the event sources feeding the pipeline. Each
// collector drains one upstream (a feed endpoint, a drop directory) into
// normalized raw events; the pipeline fans out across all registered
// collectors and tolerates individual failures.
package collector

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/signal-scout/internal/model"
)

// Collector is one source of raw events.
type Collector interface {
	// Name identifies the platform this collector drains.
	Name() model.SourcePlatform
	// Collect fetches the current batch of events. Implementations return
	// what they have; partial batches are not an error.
	Collect(ctx context.Context) ([]model.RawEvent, error)
}

// Registry holds the active collectors keyed by a unique label, so two
// collectors for the same platform can coexist.
type Registry struct {
	mu         sync.RWMutex
	collectors map[string]Collector
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{collectors: make(map[string]Collector)}
}

// Register adds a collector under label, replacing any previous entry.
func (r *Registry) Register(label string, c Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors[label] = c
}

// Get returns the collector registered under label.
func (r *Registry) Get(label string) (Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collectors[label]
	return c, ok
}

// Labels returns the registered labels in sorted order.
func (r *Registry) Labels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	labels := make([]string, 0, len(r.collectors))
	for label := range r.collectors {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// All returns label/collector pairs in sorted label order.
func (r *Registry) All() []LabeledCollector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LabeledCollector, 0, len(r.collectors))
	for label, c := range r.collectors {
		out = append(out, LabeledCollector{Label: label, Collector: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// LabeledCollector pairs a collector with its registry label.
type LabeledCollector struct {
	Label     string
	Collector Collector
}

// normalize fills the fields a source may omit so downstream stages can
// assume them. Events with an unknown platform inherit the collector's.
func normalize(events []model.RawEvent, platform model.SourcePlatform) []model.RawEvent {
	now := time.Now().UTC()
	for i := range events {
		if events[i].ID == "" {
			events[i].ID = "raw_" + uuid.NewString()
		}
		if !model.ValidSourcePlatform(events[i].Source) {
			events[i].Source = platform
		}
		if events[i].CollectedAt.IsZero() {
			events[i].CollectedAt = now
		}
	}
	return events
}
