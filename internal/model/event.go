// Package model defines the domain types shared across the extraction engine.
package model

import "time"

// Placeholder sentinels mark fields whose extraction failed. They are
// reserved strings, never produced by a layer from genuine page content,
// so downstream consumers can always tell them apart from real data.
const (
	PlaceholderTitle   = "Untitled Event"
	PlaceholderVenue   = "Venue TBD"
	PlaceholderAddress = "Address TBD"
)

// IsPlaceholder reports whether v is one of the reserved sentinel values.
func IsPlaceholder(v string) bool {
	switch v {
	case PlaceholderTitle, PlaceholderVenue, PlaceholderAddress:
		return true
	}
	return false
}

// ExtractionResult is the engine's final output for a single event.
// Unpopulated string fields are empty, meaning "not extracted" — with the
// sole exception of the placeholder sentinels above, which stand in for
// required fields when strict output is requested.
type ExtractionResult struct {
	Title       string     `json:"title,omitempty"`
	Venue       string     `json:"venue,omitempty"`
	Address     string     `json:"address,omitempty"`
	Date        string     `json:"date,omitempty"`      // ISO 8601, 2006-01-02
	StartTime   string     `json:"startTime,omitempty"` // 15:04:05
	EndTime     string     `json:"endTime,omitempty"`
	Description string     `json:"description,omitempty"`
	Categories  []Category `json:"categories,omitempty"`
	Free        *bool      `json:"free,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	ImageURLs   []string   `json:"imageUrls,omitempty"`
	TicketsLink string     `json:"ticketsLink,omitempty"`
}

// Metadata is the extraction side-channel returned alongside every result.
// It retains all layer proposals so tests and batch tooling can check
// provenance without re-running the cascade.
type Metadata struct {
	RunID            string                  `json:"run_id"`
	Method           string                  `json:"method"`
	ProcessingTimeMs int64                   `json:"processing_time_ms"`
	LayersUsed       []int                   `json:"layers_used"`
	ConfidenceScores map[FieldKey]int        `json:"confidence_scores"`
	ValidationScore  int                     `json:"validation_score"`
	HashCompliant    bool                    `json:"hash_compliant"`
	GenericTitle     bool                    `json:"generic_title,omitempty"`
	OCRTriggered     bool                    `json:"ocr_triggered,omitempty"`
	Proposals        map[FieldKey][]Proposal `json:"proposals,omitempty"`
	ExtractedAt      time.Time               `json:"extracted_at"`
}

// ImageCandidate is one scored image found on a page. Candidates are built
// fresh per snapshot and never persisted.
type ImageCandidate struct {
	URL               string  `json:"url"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	AspectRatio       float64 `json:"aspect_ratio"`
	DOMProximityScore float64 `json:"dom_proximity_score"`
	AltTextScore      float64 `json:"alt_text_score"`
	PriorityScore     float64 `json:"priority_score"`
}
