package models

import (
	"time"

	"github.com/aleister1102/motosearch/internal/common"
)

// TargetOutcome records what happened to one source target during a search
type TargetOutcome struct {
	Target   SourceTarget
	Records  []ListingRecord
	Err      error
	Duration time.Duration
}

// Succeeded reports whether the target was fetched and extracted
func (o TargetOutcome) Succeeded() bool {
	return o.Err == nil
}

// SearchReport is the full result of one orchestrated search
type SearchReport struct {
	SessionID string
	Filters   SearchFilters
	Outcomes  []TargetOutcome
	// Listings is the capped aggregate across all outcomes, in target order
	Listings  []ListingRecord
	StartedAt time.Time
	Duration  time.Duration
}

// FailedTargets returns the outcomes that ended in an error
func (r *SearchReport) FailedTargets() []TargetOutcome {
	var failed []TargetOutcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err combines the errors of all failed targets, prefixed with their source; nil when none failed
func (r *SearchReport) Err() error {
	var collector common.ErrorCollector
	for _, o := range r.Outcomes {
		collector.AddWithContext(o.Err, o.Target.Source.String())
	}
	return collector.Error()
}

// SearchResponse is the shape returned to the presentation layer
type SearchResponse struct {
	Success bool            `json:"success"`
	Data    []ListingRecord `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}
