package memory

import (
	"sort"
	"strings"
	"time"

	"github.com/sells-group/signal-scout/internal/model"
)

// CompanyMemory maintains accumulated per-company knowledge keyed by
// case-insensitive company name or alias.
type CompanyMemory struct {
	store *Store[model.CompanyKnowledge]
}

// NewCompanyMemory opens the company knowledge store at path.
func NewCompanyMemory(path string) *CompanyMemory {
	return &CompanyMemory{store: NewStore[model.CompanyKnowledge](path)}
}

func matchesCompany(k model.CompanyKnowledge, name string) bool {
	if strings.EqualFold(k.CompanyName, name) {
		return true
	}
	for _, alias := range k.Aliases {
		if strings.EqualFold(alias, name) {
			return true
		}
	}
	return false
}

// RecordSignal folds one emitted event into the company's knowledge and
// returns the stored record. The buying stage only advances down the funnel;
// duplicate event IDs are deduplicated in the ID list but still count as
// observed signals.
func (m *CompanyMemory) RecordSignal(event model.BuyingSignalEvent) model.CompanyKnowledge {
	name := event.Company.CompanyName
	category := event.Signal.Category
	stage := event.Signal.BuyingStage
	ts := event.Timestamp

	fallback := model.CompanyKnowledge{
		CompanyName:       name,
		Aliases:           []string{},
		SignalCount:       1,
		Categories:        map[model.SignalCategory]int{category: 1},
		LatestBuyingStage: stage,
		FirstSeenAt:       ts,
		LastSeenAt:        ts,
		Notes:             []string{},
		SignalIDs:         []string{event.EventID},
	}

	stored, _ := m.store.Upsert(
		func(k model.CompanyKnowledge) bool { return matchesCompany(k, name) },
		func(k model.CompanyKnowledge) model.CompanyKnowledge {
			k.SignalCount++
			if k.Categories == nil {
				k.Categories = map[model.SignalCategory]int{}
			}
			k.Categories[category]++
			if model.StageRank(stage) > model.StageRank(k.LatestBuyingStage) {
				k.LatestBuyingStage = stage
			}
			if ts.Before(k.FirstSeenAt) || k.FirstSeenAt.IsZero() {
				k.FirstSeenAt = ts
			}
			if ts.After(k.LastSeenAt) {
				k.LastSeenAt = ts
			}
			if !containsID(k.SignalIDs, event.EventID) {
				k.SignalIDs = append(k.SignalIDs, event.EventID)
			}
			return k
		},
		fallback,
	)
	return stored
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

// GetCompany looks a company up by canonical name or alias.
func (m *CompanyMemory) GetCompany(name string) (model.CompanyKnowledge, bool) {
	return m.store.Find(func(k model.CompanyKnowledge) bool {
		return matchesCompany(k, name)
	})
}

// GetTopCompanies returns up to n companies ordered by signal count, most
// recently seen first on ties.
func (m *CompanyMemory) GetTopCompanies(n int) []model.CompanyKnowledge {
	all := m.store.GetAll()
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].SignalCount != all[j].SignalCount {
			return all[i].SignalCount > all[j].SignalCount
		}
		return all[i].LastSeenAt.After(all[j].LastSeenAt)
	})
	if n > 0 && n < len(all) {
		all = all[:n]
	}
	return all
}

// GetCompaniesByStage returns companies whose latest stage matches.
func (m *CompanyMemory) GetCompaniesByStage(stage model.BuyingStage) []model.CompanyKnowledge {
	return m.store.Filter(func(k model.CompanyKnowledge) bool {
		return k.LatestBuyingStage == stage
	})
}

// AddNote appends a timestamped note to a known company. Unknown companies
// are a no-op; notes never create knowledge records.
func (m *CompanyMemory) AddNote(name, note string) bool {
	_, exists := m.GetCompany(name)
	if !exists {
		return false
	}
	stamped := "[" + time.Now().UTC().Format(time.RFC3339) + "] " + note
	_, updated := m.store.Upsert(
		func(k model.CompanyKnowledge) bool { return matchesCompany(k, name) },
		func(k model.CompanyKnowledge) model.CompanyKnowledge {
			k.Notes = append(k.Notes, stamped)
			return k
		},
		model.CompanyKnowledge{},
	)
	return updated
}

// AddAlias attaches an alias to a company, creating a stub record when the
// company is not yet known. Duplicate aliases are ignored.
func (m *CompanyMemory) AddAlias(name, alias string) {
	now := time.Now().UTC()
	stub := model.CompanyKnowledge{
		CompanyName: name,
		Aliases:     []string{alias},
		Categories:  map[model.SignalCategory]int{},
		FirstSeenAt: now,
		LastSeenAt:  now,
		Notes:       []string{},
		SignalIDs:   []string{},
	}
	m.store.Upsert(
		func(k model.CompanyKnowledge) bool { return matchesCompany(k, name) },
		func(k model.CompanyKnowledge) model.CompanyKnowledge {
			for _, a := range k.Aliases {
				if strings.EqualFold(a, alias) {
					return k
				}
			}
			k.Aliases = append(k.Aliases, alias)
			return k
		},
		stub,
	)
}

// Count returns the number of known companies.
func (m *CompanyMemory) Count() int {
	return m.store.Size()
}

// All returns every company record.
func (m *CompanyMemory) All() []model.CompanyKnowledge {
	return m.store.GetAll()
}
