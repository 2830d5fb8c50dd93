package model

import (
	"strings"
	"time"
)

// SourcePlatform identifies where a raw event was collected from.
type SourcePlatform string

const (
	SourceLinkedIn   SourcePlatform = "linkedin"
	SourceTwitter    SourcePlatform = "twitter"
	SourceReddit     SourcePlatform = "reddit"
	SourceGitHub     SourcePlatform = "github"
	SourceRSS        SourcePlatform = "rss"
	SourceHackerNews SourcePlatform = "hackernews"
)

// AllSourcePlatforms returns every valid source platform.
func AllSourcePlatforms() []SourcePlatform {
	return []SourcePlatform{
		SourceLinkedIn,
		SourceTwitter,
		SourceReddit,
		SourceGitHub,
		SourceRSS,
		SourceHackerNews,
	}
}

// ValidSourcePlatform reports whether p is a known platform.
func ValidSourcePlatform(p SourcePlatform) bool {
	for _, v := range AllSourcePlatforms() {
		if v == p {
			return true
		}
	}
	return false
}

// ContentType describes the kind of content an event carries. The set is
// open-ended per platform (company_post, tweet, job_listing, release, ...);
// the pipeline treats it as an opaque descriptor.
type ContentType string

// RawEvent is a unit of collected content produced by a collector.
// Immutable once collected.
type RawEvent struct {
	ID          string         `json:"id"`
	Source      SourcePlatform `json:"source"`
	ContentType ContentType    `json:"content_type"`
	URL         string         `json:"url"`
	Title       string         `json:"title,omitempty"`
	Body        string         `json:"body"`
	Author      string         `json:"author,omitempty"`
	AuthorRole  string         `json:"author_role,omitempty"`
	// CompanyHint is a best-effort company name extracted by the collector.
	CompanyHint string         `json:"company_hint,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	CollectedAt time.Time      `json:"collected_at"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Text returns the lower-cased title+body used by keyword heuristics.
func (e RawEvent) Text() string {
	if e.Title == "" {
		return strings.ToLower(e.Body)
	}
	return strings.ToLower(e.Title + " " + e.Body)
}
