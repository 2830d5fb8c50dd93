package memory

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/signal-scout/internal/model"
)

// SignalHistory is the append-only record of emitted signals, used for
// cross-run deduplication and trend detection.
type SignalHistory struct {
	store *Store[model.StoredSignal]
}

// NewSignalHistory opens the signal history store at path.
func NewSignalHistory(path string) *SignalHistory {
	return &SignalHistory{store: NewStore[model.StoredSignal](path)}
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// hashBody produces a stable content fingerprint. Normalization keeps
// reposts with trivial formatting differences on the same hash; only the
// first 200 characters participate so trailing boilerplate is ignored.
func hashBody(body string) string {
	normalized := strings.TrimSpace(whitespacePattern.ReplaceAllString(strings.ToLower(body), " "))
	if len(normalized) > 200 {
		normalized = normalized[:200]
	}

	var hash int32
	for _, r := range normalized {
		hash = (hash << 5) - hash + int32(r)
	}
	v := int64(hash)
	if v < 0 {
		v = -v
	}
	return "h" + strconv.FormatInt(v, 36)
}

// Record stores one emitted event unless its content hash or URL was seen
// before. Reports whether the signal was recorded.
func (h *SignalHistory) Record(event model.BuyingSignalEvent) bool {
	bodyHash := hashBody(event.Raw.Body)

	_, dup := h.store.Find(func(s model.StoredSignal) bool {
		return s.BodyHash == bodyHash || (event.Source.URL != "" && s.URL == event.Source.URL)
	})
	if dup {
		return false
	}

	h.store.Append(model.StoredSignal{
		EventID:     event.EventID,
		CompanyName: event.Company.CompanyName,
		Category:    event.Signal.Category,
		Strength:    event.Signal.Strength,
		Confidence:  event.Signal.Confidence,
		BuyingStage: event.Signal.BuyingStage,
		Source:      event.Source.Platform,
		URL:         event.Source.URL,
		Title:       event.Raw.Title,
		BodyHash:    bodyHash,
		Timestamp:   event.Timestamp,
	})
	return true
}

// IsDuplicate reports whether a raw body or URL was already recorded.
func (h *SignalHistory) IsDuplicate(body, url string) bool {
	bodyHash := hashBody(body)
	_, dup := h.store.Find(func(s model.StoredSignal) bool {
		return s.BodyHash == bodyHash || (url != "" && s.URL == url)
	})
	return dup
}

// GetByCompany returns recorded signals for a company, case-insensitive.
func (h *SignalHistory) GetByCompany(name string) []model.StoredSignal {
	return h.store.Filter(func(s model.StoredSignal) bool {
		return strings.EqualFold(s.CompanyName, name)
	})
}

// GetByCategory returns recorded signals in a category.
func (h *SignalHistory) GetByCategory(category model.SignalCategory) []model.StoredSignal {
	return h.store.Filter(func(s model.StoredSignal) bool {
		return s.Category == category
	})
}

// GetSince returns signals recorded at or after the cutoff.
func (h *SignalHistory) GetSince(cutoff time.Time) []model.StoredSignal {
	return h.store.Filter(func(s model.StoredSignal) bool {
		return !s.Timestamp.Before(cutoff)
	})
}

// GetRecent returns up to n signals, newest first.
func (h *SignalHistory) GetRecent(n int) []model.StoredSignal {
	return h.store.Select(Query[model.StoredSignal]{
		Sort:  func(a, b model.StoredSignal) bool { return a.Timestamp.After(b.Timestamp) },
		Limit: n,
	})
}

// Count returns the number of recorded signals.
func (h *SignalHistory) Count() int {
	return h.store.Size()
}

// DetectTrends compares per-category signal volume in the last windowDays
// against the preceding window of equal length. Categories absent from both
// windows are omitted. Results are ordered by recent count, highest first.
func (h *SignalHistory) DetectTrends(windowDays int) []model.CategoryTrend {
	if windowDays <= 0 {
		windowDays = 7
	}
	now := time.Now().UTC()
	window := time.Duration(windowDays) * 24 * time.Hour
	recentCutoff := now.Add(-window)
	previousCutoff := now.Add(-2 * window)

	recent := map[model.SignalCategory]int{}
	previous := map[model.SignalCategory]int{}
	for _, s := range h.store.GetAll() {
		switch {
		case !s.Timestamp.Before(recentCutoff):
			recent[s.Category]++
		case !s.Timestamp.Before(previousCutoff):
			previous[s.Category]++
		}
	}

	var trends []model.CategoryTrend
	for _, category := range model.AllSignalCategories() {
		r, p := recent[category], previous[category]
		if r == 0 && p == 0 {
			continue
		}
		direction := model.TrendStable
		if r > p {
			direction = model.TrendUp
		} else if r < p {
			direction = model.TrendDown
		}
		trends = append(trends, model.CategoryTrend{
			Category:    category,
			RecentCount: r,
			Trend:       direction,
		})
	}

	sort.SliceStable(trends, func(i, j int) bool {
		return trends[i].RecentCount > trends[j].RecentCount
	})
	return trends
}
