// Package extractor turns fetched search-page content into listing records
// using per-source heuristics with a generic fallback.
package extractor

import (
	"fmt"

	"github.com/aleister1102/motosearch/internal/models"

	"github.com/rs/zerolog"
)

// ListingExtractor dispatches content to the strategy registered for its source
type ListingExtractor struct {
	logger     zerolog.Logger
	strategies map[models.Source]Strategy
	fallback   Strategy
}

// NewListingExtractor creates an extractor with the AutoScout24 and Subito strategies registered.
// eBay Motors has no strategy and always goes through the fallback.
func NewListingExtractor(logger zerolog.Logger) *ListingExtractor {
	return &ListingExtractor{
		logger: logger.With().Str("component", "ListingExtractor").Logger(),
		strategies: map[models.Source]Strategy{
			models.SourceAutoScout24: AutoScout24Strategy,
			models.SourceSubito:      SubitoStrategy,
		},
		fallback: FallbackStrategy,
	}
}

// RegisterStrategy replaces the strategy used for source
func (le *ListingExtractor) RegisterStrategy(source models.Source, strategy Strategy) {
	if strategy == nil {
		delete(le.strategies, source)
		return
	}
	le.strategies[source] = strategy
}

// SetFallback replaces the strategy used when the source strategy finds nothing
func (le *ListingExtractor) SetFallback(strategy Strategy) {
	le.fallback = strategy
}

// Extract never fails: internal errors degrade to fewer records.
// Every returned record has a non-empty title and price.
func (le *ListingExtractor) Extract(content, sourceURL string) []models.ListingRecord {
	page := Page{
		Content: content,
		Link:    sourceURL,
		Source:  ClassifySource(sourceURL),
	}

	var candidates []models.ListingRecord
	if strategy, ok := le.strategies[page.Source]; ok {
		candidates = le.run(strategy, page, "source")
	}
	if len(candidates) == 0 && le.fallback != nil {
		candidates = le.run(le.fallback, page, "fallback")
	}

	records := make([]models.ListingRecord, 0, len(candidates))
	for _, r := range candidates {
		if r.IsComplete() {
			records = append(records, r)
		}
	}

	le.logger.Debug().
		Str("source", page.Source.String()).
		Str("url", sourceURL).
		Int("content_length", len(content)).
		Int("candidates", len(candidates)).
		Int("records", len(records)).
		Msg("Extracted listings")

	return records
}

func (le *ListingExtractor) run(strategy Strategy, page Page, stage string) (records []models.ListingRecord) {
	defer func() {
		if r := recover(); r != nil {
			le.logger.Error().
				Str("source", page.Source.String()).
				Str("stage", stage).
				Str("panic", fmt.Sprint(r)).
				Msg("Extraction strategy panicked, discarding its output")
			records = nil
		}
	}()
	return strategy(page)
}
