package domain

import (
	"strings"
	"time"
)

// Summary is the natural-language enrichment produced from an event history.
type Summary struct {
	Summary           string  `json:"summary"`
	EstimatedDelivery *string `json:"estimated_delivery"`
	Confidence        float64 `json:"confidence"`
	HasIssue          bool    `json:"has_issue"`
	IssueDescription  *string `json:"issue_description"`
}

var etaLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2.1.2006 15:04",
	"2.1.2006",
}

// ParsedETA interprets the free-text estimated delivery as an instant.
// It returns nil when the text is absent or in no recognised layout.
func (s *Summary) ParsedETA() *time.Time {
	if s == nil || s.EstimatedDelivery == nil {
		return nil
	}
	raw := strings.TrimSpace(*s.EstimatedDelivery)
	for _, layout := range etaLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
