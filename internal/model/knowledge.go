package model

import "time"

// CompanyKnowledge is the accumulated per-company state maintained by the
// company memory. Identity is case-insensitive across the canonical name
// and every alias.
type CompanyKnowledge struct {
	CompanyName string   `json:"company_name"`
	Aliases     []string `json:"aliases"`
	SignalCount int      `json:"signal_count"`
	// Categories is a category→count histogram across recorded signals.
	Categories map[SignalCategory]int `json:"categories"`
	// LatestBuyingStage only advances; a signal at an earlier funnel stage
	// never regresses it.
	LatestBuyingStage BuyingStage `json:"latest_buying_stage,omitempty"`
	FirstSeenAt       time.Time   `json:"first_seen_at"`
	LastSeenAt        time.Time   `json:"last_seen_at"`
	Notes             []string    `json:"notes"`
	SignalIDs         []string    `json:"signal_ids"`
}

// StoredSignal is the denormalized signal-history record used for
// deduplication and trend detection.
type StoredSignal struct {
	EventID     string         `json:"event_id"`
	CompanyName string         `json:"company_name"`
	Category    SignalCategory `json:"category"`
	Strength    SignalStrength `json:"strength"`
	Confidence  float64        `json:"confidence"`
	BuyingStage BuyingStage    `json:"buying_stage"`
	Source      SourcePlatform `json:"source"`
	URL         string         `json:"url"`
	Title       string         `json:"title,omitempty"`
	BodyHash    string         `json:"body_hash"`
	Timestamp   time.Time      `json:"timestamp"`
}

// TrendDirection describes how a category's signal volume is moving.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// CategoryTrend compares a category's recent signal count against the
// preceding window of the same length.
type CategoryTrend struct {
	Category    SignalCategory `json:"category"`
	RecentCount int            `json:"recent_count"`
	Trend       TrendDirection `json:"trend"`
}

// FeedbackVerdict is a user's relevance judgment on an emitted event.
type FeedbackVerdict string

const (
	FeedbackRelevant          FeedbackVerdict = "relevant"
	FeedbackIrrelevant        FeedbackVerdict = "irrelevant"
	FeedbackPartiallyRelevant FeedbackVerdict = "partially_relevant"
)

// FeedbackEntry records one relevance verdict.
type FeedbackEntry struct {
	EventID   string          `json:"event_id"`
	Feedback  FeedbackVerdict `json:"feedback"`
	Comment   string          `json:"comment,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// UserPreferences holds persisted per-user tuning learned from interactions.
type UserPreferences struct {
	FocusIndustries  []string         `json:"focus_industries,omitempty"`
	FocusCompanies   []string         `json:"focus_companies,omitempty"`
	MinConfidence    *float64         `json:"min_confidence,omitempty"`
	PreferredSources []SourcePlatform `json:"preferred_sources,omitempty"`
	SignalCategories []SignalCategory `json:"signal_categories,omitempty"`
	OutputFormat     string           `json:"output_format,omitempty"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
