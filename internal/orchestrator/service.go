package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aleister1102/motosearch/internal/common"
	"github.com/aleister1102/motosearch/internal/datastore"
	"github.com/aleister1102/motosearch/internal/fetcher"
	"github.com/aleister1102/motosearch/internal/models"

	"github.com/rs/zerolog"
)

// MissingAPIKeyMessage is the error returned by Search when no credential is stored
const MissingAPIKeyMessage = "API key not found. Please set your Firecrawl API key first."

const validationURL = "https://example.com"

// FetcherFactory builds a fetcher authenticated with token
type FetcherFactory func(token string) (fetcher.Fetcher, error)

// Archiver stores the listings of a finished search
type Archiver interface {
	ArchiveSearch(ctx context.Context, report models.SearchReport) (string, error)
}

// SearchService is the entry point for searches and credential management.
// It is safe for concurrent use. The fetch client is built once per credential
// and a replaced client is closed only after the searches using it return.
type SearchService struct {
	credentials  datastore.CredentialStore
	newFetcher   FetcherFactory
	orchestrator *Orchestrator
	archiver     Archiver
	logger       zerolog.Logger

	mutex         sync.Mutex
	cachedToken   string
	cachedFetcher *sharedFetcher
}

// sharedFetcher counts the searches holding a client. Guarded by SearchService.mutex.
type sharedFetcher struct {
	fetcher.Fetcher
	users int
	stale bool
}

// NewSearchService wires a service from its collaborators
func NewSearchService(credentials datastore.CredentialStore, newFetcher FetcherFactory, orchestrator *Orchestrator, logger zerolog.Logger) *SearchService {
	return &SearchService{
		credentials:  credentials,
		newFetcher:   newFetcher,
		orchestrator: orchestrator,
		logger:       logger.With().Str("component", "SearchService").Logger(),
	}
}

// WithArchiver enables archiving of successful searches
func (s *SearchService) WithArchiver(archiver Archiver) *SearchService {
	s.archiver = archiver
	return s
}

// Search runs a full search. The response is either a success with 0..max
// records or a failure with a message, never both.
func (s *SearchService) Search(ctx context.Context, filters models.SearchFilters) (response models.SearchResponse) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("panic", fmt.Sprint(r)).Msg("Search panicked")
			response = failure(fmt.Errorf("unexpected error: %v", r))
		}
	}()

	token, err := s.credentials.GetAPIKey(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn().Msg("Search attempted without a stored API key")
			return models.SearchResponse{Success: false, Error: MissingAPIKeyMessage}
		}
		s.logger.Error().Err(err).Msg("Failed to read API key")
		return failure(err)
	}

	if err := filters.Validate(); err != nil {
		s.logger.Warn().Err(err).Msg("Rejected invalid search filters")
		return failure(err)
	}

	client, err := s.acquireFetcher(token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidConfiguration) {
			s.logger.Error().Err(err).Msg("Fetcher configuration is invalid, check fetcher_config")
		} else {
			s.logger.Error().Err(err).Msg("Failed to create fetch client")
		}
		return failure(err)
	}

	defer s.releaseFetcher(client)

	report := s.orchestrator.Run(ctx, client, filters)
	if err := ctx.Err(); err != nil {
		return failure(common.WrapError(err, "search interrupted"))
	}

	if s.archiver != nil {
		if path, err := s.archiver.ArchiveSearch(ctx, report); err != nil {
			s.logger.Error().Err(err).Str("session_id", report.SessionID).Msg("Failed to archive search listings")
		} else if path != "" {
			s.logger.Debug().Str("path", path).Msg("Search listings archived")
		}
	}

	return models.SearchResponse{Success: true, Data: report.Listings}
}

// SaveAPIKey stores key and drops any client built for the previous key
func (s *SearchService) SaveAPIKey(ctx context.Context, key string) error {
	if err := s.credentials.SaveAPIKey(ctx, key); err != nil {
		return common.WrapError(err, "failed to save API key")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.dropCachedLocked()
	return nil
}

// ValidateAPIKey scrapes a known page with key. Any error counts as invalid.
func (s *SearchService) ValidateAPIKey(ctx context.Context, key string) bool {
	client, err := s.newFetcher(key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("API key validation failed: cannot build client")
		return false
	}
	defer client.Close()

	resp, err := client.Scrape(ctx, validationURL, models.ScrapeOptions{Formats: []string{models.FormatMarkdown}})
	if err != nil {
		s.logger.Warn().Err(err).Msg("API key validation failed")
		return false
	}
	return resp != nil && resp.Success
}

// Close releases the cached fetch client
func (s *SearchService) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.dropCachedLocked()
}

// acquireFetcher returns the client for token, building it on first use
func (s *SearchService) acquireFetcher(token string) (*sharedFetcher, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cachedFetcher != nil && s.cachedToken == token {
		s.cachedFetcher.users++
		return s.cachedFetcher, nil
	}
	s.dropCachedLocked()

	client, err := s.newFetcher(token)
	if err != nil {
		return nil, err
	}
	s.cachedFetcher = &sharedFetcher{Fetcher: client, users: 1}
	s.cachedToken = token
	return s.cachedFetcher, nil
}

func (s *SearchService) releaseFetcher(shared *sharedFetcher) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	shared.users--
	if shared.stale && shared.users == 0 {
		if err := shared.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to close replaced fetch client")
		}
	}
}

// dropCachedLocked detaches the cached client and closes it if no search holds it
func (s *SearchService) dropCachedLocked() error {
	shared := s.cachedFetcher
	if shared == nil {
		return nil
	}
	s.cachedFetcher = nil
	s.cachedToken = ""

	shared.stale = true
	if shared.users > 0 {
		return nil
	}
	return shared.Close()
}

func failure(err error) models.SearchResponse {
	return models.SearchResponse{Success: false, Error: err.Error()}
}
