package model

import (
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// CompanyMatch is the ICP matcher's output for one event.
type CompanyMatch struct {
	CompanyName       string   `json:"company_name"`
	MatchScore        float64  `json:"match_score"`
	MatchedCriteria   []string `json:"matched_criteria"`
	UnmatchedCriteria []string `json:"unmatched_criteria"`
}

// SignalSource describes where a buying-signal event came from.
type SignalSource struct {
	Platform    SourcePlatform `json:"platform"`
	ContentType ContentType    `json:"content_type"`
	URL         string         `json:"url"`
	Author      string         `json:"author,omitempty"`
	AuthorRole  string         `json:"author_role,omitempty"`
}

// RawContent is the content snapshot carried by a buying-signal event.
type RawContent struct {
	Title       string     `json:"title,omitempty"`
	Body        string     `json:"body"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Provenance records when an event moved through the pipeline.
type Provenance struct {
	CollectedAt     time.Time `json:"collected_at"`
	ProcessedAt     time.Time `json:"processed_at"`
	PipelineVersion string    `json:"pipeline_version"`
}

// BuyingSignalEvent is the persisted unit of pipeline output. It is only
// assembled for classifications with IsSignal=true and confidence at or
// above the configured threshold, and is written once, never mutated.
type BuyingSignalEvent struct {
	EventID   string               `json:"event_id"`
	Timestamp time.Time            `json:"timestamp"`
	Source    SignalSource         `json:"source"`
	Company   CompanyMatch         `json:"company"`
	Signal    SignalClassification `json:"signal"`
	Raw       RawContent           `json:"raw_content"`
	Pipeline  Provenance           `json:"pipeline"`
}

// Validate checks the event against its schema. Invalid events are skipped
// by the output writer rather than aborting the run.
func (e *BuyingSignalEvent) Validate() error {
	if e.EventID == "" {
		return eris.New("event: missing event_id")
	}
	if e.Timestamp.IsZero() {
		return eris.New("event: missing timestamp")
	}
	if !ValidSourcePlatform(e.Source.Platform) {
		return eris.Errorf("event: invalid source platform %q", e.Source.Platform)
	}
	if u, err := url.Parse(e.Source.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return eris.Errorf("event: invalid source url %q", e.Source.URL)
	}
	if e.Company.CompanyName == "" {
		return eris.New("event: missing company name")
	}
	if e.Company.MatchScore < 0 || e.Company.MatchScore > 1 {
		return eris.Errorf("event: match score %v outside [0,1]", e.Company.MatchScore)
	}
	if e.Signal.Confidence < 0 || e.Signal.Confidence > 1 {
		return eris.Errorf("event: signal confidence %v outside [0,1]", e.Signal.Confidence)
	}
	if !ValidSignalCategory(e.Signal.Category) {
		return eris.Errorf("event: invalid signal category %q", e.Signal.Category)
	}
	if !ValidSignalStrength(e.Signal.Strength) {
		return eris.Errorf("event: invalid signal strength %q", e.Signal.Strength)
	}
	if !ValidBuyingStage(e.Signal.BuyingStage) {
		return eris.Errorf("event: invalid buying stage %q", e.Signal.BuyingStage)
	}
	if e.Raw.Body == "" {
		return eris.New("event: missing raw body")
	}
	if e.Pipeline.PipelineVersion == "" {
		return eris.New("event: missing pipeline version")
	}
	return nil
}
