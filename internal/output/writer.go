// Package output persists emitted buying-signal events. Every event lands
// three ways: a standalone JSON document, a line in the run's JSONL file,
// and an entry in the rolling latest.json summary that downstream consumers
// poll.
package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/signal-scout/internal/model"
)

const latestSummarySize = 50

// Summary is the rolling view of recent pipeline output.
type Summary struct {
	UpdatedAt   time.Time                    `json:"updated_at"`
	TotalEvents int                          `json:"total_events"`
	ByCategory  map[model.SignalCategory]int `json:"by_category"`
	ByStrength  map[model.SignalStrength]int `json:"by_strength"`
	BySource    map[model.SourcePlatform]int `json:"by_source"`
	Recent      []model.BuyingSignalEvent    `json:"recent"`
}

// Writer writes validated events under a base directory:
//
//	<dir>/events/<event_id>.json
//	<dir>/runs/<run_id>.jsonl
//	<dir>/latest.json
type Writer struct {
	dir string

	mu      sync.Mutex
	summary Summary
}

// NewWriter creates a writer rooted at dir, loading any existing summary so
// the rolling window survives restarts.
func NewWriter(dir string) (*Writer, error) {
	for _, sub := range []string{"events", "runs"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, eris.Wrapf(err, "output: create %s directory", sub)
		}
	}

	w := &Writer{dir: dir, summary: emptySummary()}
	data, err := os.ReadFile(w.latestPath())
	if err == nil {
		if err := json.Unmarshal(data, &w.summary); err != nil {
			zap.L().Warn("output: corrupt latest.json, starting fresh", zap.Error(err))
			w.summary = emptySummary()
		}
	}
	return w, nil
}

func emptySummary() Summary {
	return Summary{
		ByCategory: map[model.SignalCategory]int{},
		ByStrength: map[model.SignalStrength]int{},
		BySource:   map[model.SourcePlatform]int{},
	}
}

func (w *Writer) latestPath() string {
	return filepath.Join(w.dir, "latest.json")
}

// WriteEvent validates and persists one event. Invalid events are logged
// and skipped; the returned bool reports whether the event was written.
func (w *Writer) WriteEvent(runID string, event model.BuyingSignalEvent) (bool, error) {
	if err := event.Validate(); err != nil {
		zap.L().Warn("output: skipping invalid event",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
		return false, nil
	}

	doc, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return false, eris.Wrap(err, "output: marshal event")
	}
	eventPath := filepath.Join(w.dir, "events", event.EventID+".json")
	if err := os.WriteFile(eventPath, doc, 0o644); err != nil {
		return false, eris.Wrapf(err, "output: write %s", eventPath)
	}

	if err := w.appendRunLine(runID, event); err != nil {
		return false, err
	}

	w.mu.Lock()
	w.summary.TotalEvents++
	w.summary.ByCategory[event.Signal.Category]++
	w.summary.ByStrength[event.Signal.Strength]++
	w.summary.BySource[event.Source.Platform]++
	w.summary.Recent = append(w.summary.Recent, event)
	if len(w.summary.Recent) > latestSummarySize {
		w.summary.Recent = w.summary.Recent[len(w.summary.Recent)-latestSummarySize:]
	}
	w.summary.UpdatedAt = time.Now().UTC()
	err = w.saveSummaryLocked()
	w.mu.Unlock()
	if err != nil {
		return false, err
	}

	return true, nil
}

func (w *Writer) appendRunLine(runID string, event model.BuyingSignalEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return eris.Wrap(err, "output: marshal run line")
	}

	runPath := filepath.Join(w.dir, "runs", runID+".jsonl")
	f, err := os.OpenFile(runPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "output: open %s", runPath)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return eris.Wrapf(err, "output: append %s", runPath)
	}
	return nil
}

func (w *Writer) saveSummaryLocked() error {
	data, err := json.MarshalIndent(w.summary, "", "  ")
	if err != nil {
		return eris.Wrap(err, "output: marshal summary")
	}
	tmp := w.latestPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrap(err, "output: write summary")
	}
	if err := os.Rename(tmp, w.latestPath()); err != nil {
		return eris.Wrap(err, "output: replace summary")
	}
	return nil
}

// Summary returns a copy of the current rolling summary.
func (w *Writer) Summary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := w.summary
	out.ByCategory = map[model.SignalCategory]int{}
	out.ByStrength = map[model.SignalStrength]int{}
	out.BySource = map[model.SourcePlatform]int{}
	for k, v := range w.summary.ByCategory {
		out.ByCategory[k] = v
	}
	for k, v := range w.summary.ByStrength {
		out.ByStrength[k] = v
	}
	for k, v := range w.summary.BySource {
		out.BySource[k] = v
	}
	out.Recent = make([]model.BuyingSignalEvent, len(w.summary.Recent))
	copy(out.Recent, w.summary.Recent)
	return out
}

// ReadRun loads every event line from a run file.
func (w *Writer) ReadRun(runID string) ([]model.BuyingSignalEvent, error) {
	runPath := filepath.Join(w.dir, "runs", runID+".jsonl")
	data, err := os.ReadFile(runPath)
	if err != nil {
		return nil, eris.Wrapf(err, "output: read %s", runPath)
	}

	var events []model.BuyingSignalEvent
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var e model.BuyingSignalEvent
		if err := dec.Decode(&e); err != nil {
			return nil, eris.Wrapf(err, "output: decode %s", runPath)
		}
		events = append(events, e)
	}
	return events, nil
}
