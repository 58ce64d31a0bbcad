// Package orchestrator runs a search across every source target and exposes
// the credential-aware SearchService used by the CLI.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/aleister1102/motosearch/internal/common"
	"github.com/aleister1102/motosearch/internal/config"
	"github.com/aleister1102/motosearch/internal/datastore"
	"github.com/aleister1102/motosearch/internal/fetcher"
	"github.com/aleister1102/motosearch/internal/models"
	"github.com/aleister1102/motosearch/internal/querybuilder"

	"github.com/rs/zerolog"
)

// ErrUnsuccessfulScrape marks a response that reported failure or carried no metadata
var ErrUnsuccessfulScrape = errors.New("fetch service returned an unsuccessful scrape")

const sessionIDLayout = "20060102-150405.000"

// ListingExtractor turns page content into listing records
type ListingExtractor interface {
	Extract(content, sourceURL string) []models.ListingRecord
}

// DefaultScrapeOptions are the options sent for every search page
func DefaultScrapeOptions() models.ScrapeOptions {
	return models.ScrapeOptions{
		Formats:     []string{models.FormatMarkdown, models.FormatHTML},
		IncludeTags: []string{"img", "a", "h1", "h2", "h3", "span", "div"},
		ExcludeTags: []string{"nav", "footer", "header"},
	}
}

// Orchestrator sequences query building, fetching and extraction
type Orchestrator struct {
	extractor     ListingExtractor
	buildTargets  func(models.SearchFilters) []models.SourceTarget
	scrapeOptions models.ScrapeOptions
	maxResults    int
	now           func() time.Time
	logger        zerolog.Logger
	sessionLogger func(sessionID string) (zerolog.Logger, error)
}

// NewOrchestrator creates an orchestrator capping results at maxResults (the default when <= 0)
func NewOrchestrator(extractor ListingExtractor, maxResults int, logger zerolog.Logger) *Orchestrator {
	if maxResults <= 0 {
		maxResults = config.DefaultSearchMaxResults
	}
	return &Orchestrator{
		extractor:     extractor,
		buildTargets:  querybuilder.BuildSearchURLs,
		scrapeOptions: DefaultScrapeOptions(),
		maxResults:    maxResults,
		now:           time.Now,
		logger:        logger.With().Str("component", "Orchestrator").Logger(),
	}
}

// WithSessionLogger logs each run through the logger newLogger builds for its session ID
func (o *Orchestrator) WithSessionLogger(newLogger func(sessionID string) (zerolog.Logger, error)) *Orchestrator {
	o.sessionLogger = newLogger
	return o
}

func (o *Orchestrator) loggerFor(sessionID string) zerolog.Logger {
	if o.sessionLogger == nil {
		return o.logger
	}
	sessionLogger, err := o.sessionLogger(sessionID)
	if err != nil {
		o.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Could not create session logger, using the default")
		return o.logger
	}
	return sessionLogger.With().Str("component", "Orchestrator").Logger()
}

// Run fetches and extracts every target in order. Per-target failures are
// recorded in the report and never abort the run.
func (o *Orchestrator) Run(ctx context.Context, f fetcher.Fetcher, filters models.SearchFilters) models.SearchReport {
	startedAt := o.now()
	report := models.SearchReport{
		SessionID: startedAt.Format(sessionIDLayout),
		Filters:   filters,
		StartedAt: startedAt,
	}

	logger := o.loggerFor(report.SessionID)

	targets := o.buildTargets(filters)
	logger.Info().
		Str("session_id", report.SessionID).
		Int("targets", len(targets)).
		Msg("Starting search")

	var all []models.ListingRecord
	for _, target := range targets {
		// Remaining targets are marked failed rather than fetched once the context is done
		if cancelled := datastore.CheckCancellationWithLog(ctx, logger, "Orchestrator"); cancelled.Cancelled {
			report.Outcomes = append(report.Outcomes, models.TargetOutcome{Target: target, Err: cancelled.Error})
			continue
		}
		outcome := o.runTarget(ctx, logger, f, target)
		report.Outcomes = append(report.Outcomes, outcome)
		all = append(all, outcome.Records...)
	}

	if len(all) > o.maxResults {
		all = all[:o.maxResults]
	}
	report.Listings = all
	report.Duration = o.now().Sub(startedAt)

	event := logger.Info()
	if err := report.Err(); err != nil {
		event = logger.Warn().Err(err)
	}
	event.
		Str("session_id", report.SessionID).
		Int("listings", len(report.Listings)).
		Int("failed_targets", len(report.FailedTargets())).
		Dur("duration", report.Duration).
		Msg("Search finished")

	return report
}

func (o *Orchestrator) runTarget(ctx context.Context, runLogger zerolog.Logger, f fetcher.Fetcher, target models.SourceTarget) models.TargetOutcome {
	started := o.now()
	outcome := models.TargetOutcome{Target: target}
	logger := runLogger.With().Str("source", target.Source.String()).Str("url", target.URL).Logger()

	resp, err := f.Scrape(ctx, target.URL, o.scrapeOptions)
	switch {
	case err != nil:
		outcome.Err = err
		logger.Error().Err(err).Str("reason", failureReason(err)).Msg("Failed to fetch source, skipping")
	case resp == nil || !resp.Success || resp.Metadata == nil:
		outcome.Err = ErrUnsuccessfulScrape
		logger.Warn().Str("reason", failureReason(outcome.Err)).Msg("Source returned an unsuccessful scrape, skipping")
	default:
		outcome.Records = o.extractor.Extract(resp.Content(), target.URL)
		logger.Debug().Int("records", len(outcome.Records)).Msg("Extracted listings from source")
	}

	outcome.Duration = o.now().Sub(started)
	return outcome
}

// failureReason buckets a target error for the per-target log line
func failureReason(err error) string {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, common.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, common.ErrNetworkFailure):
		return "network"
	case errors.Is(err, common.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, fetcher.ErrResponseTooLarge):
		return "response_too_large"
	case errors.Is(err, ErrUnsuccessfulScrape):
		return "unsuccessful"
	default:
		return "error"
	}
}
