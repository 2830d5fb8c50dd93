package memory

import (
	"time"

	"github.com/sells-group/signal-scout/internal/model"
)

// FeedbackLog records user relevance verdicts on emitted events. Verdicts
// feed back into preference tuning and manual review.
type FeedbackLog struct {
	store *Store[model.FeedbackEntry]
}

// NewFeedbackLog opens the feedback store at path.
func NewFeedbackLog(path string) *FeedbackLog {
	return &FeedbackLog{store: NewStore[model.FeedbackEntry](path)}
}

// Record appends a verdict. A later verdict on the same event supersedes
// earlier ones at read time; the log itself keeps every entry.
func (f *FeedbackLog) Record(eventID string, verdict model.FeedbackVerdict, comment string) {
	f.store.Append(model.FeedbackEntry{
		EventID:   eventID,
		Feedback:  verdict,
		Comment:   comment,
		Timestamp: time.Now().UTC(),
	})
}

// Latest returns the most recent verdict for an event.
func (f *FeedbackLog) Latest(eventID string) (model.FeedbackEntry, bool) {
	entries := f.store.Filter(func(e model.FeedbackEntry) bool {
		return e.EventID == eventID
	})
	if len(entries) == 0 {
		return model.FeedbackEntry{}, false
	}
	latest := entries[0]
	for _, e := range entries[1:] {
		if e.Timestamp.After(latest.Timestamp) {
			latest = e
		}
	}
	return latest, true
}

// Counts tallies entries per verdict.
func (f *FeedbackLog) Counts() map[model.FeedbackVerdict]int {
	counts := map[model.FeedbackVerdict]int{}
	for _, e := range f.store.GetAll() {
		counts[e.Feedback]++
	}
	return counts
}

// All returns every feedback entry.
func (f *FeedbackLog) All() []model.FeedbackEntry {
	return f.store.GetAll()
}
