// Package fetcher retrieves rendered search-page content, either through the
// Firecrawl scrape API or with a local colly or go-rod engine.
package fetcher

import (
	"context"
	"errors"
	"strings"

	"github.com/aleister1102/motosearch/internal/config"
	"github.com/aleister1102/motosearch/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrMissingToken is returned when a token-authenticated engine is built without a token
var ErrMissingToken = errors.New("fetch service API key is empty")

// ErrResponseTooLarge is returned when a response body hit max_content_size
var ErrResponseTooLarge = errors.New("response exceeds max_content_size")

// Fetcher fetches one page with the given options
type Fetcher interface {
	Scrape(ctx context.Context, pageURL string, opts models.ScrapeOptions) (*models.ScrapeResponse, error)
	Close() error
}

// NewFetcher builds the engine named in cfg. The token is only used by the Firecrawl engine.
func NewFetcher(cfg config.FetcherConfig, token string, logger zerolog.Logger) (Fetcher, error) {
	switch strings.ToLower(cfg.Engine) {
	case "", config.EngineFirecrawl:
		return NewFirecrawlClient(cfg, token, logger)
	case config.EngineStatic:
		return NewStaticFetcher(cfg, logger), nil
	case config.EngineHeadless:
		return NewHeadlessFetcher(cfg, logger), nil
	default:
		return nil, errors.New("unknown fetch engine: " + cfg.Engine)
	}
}

// newLimiter returns nil when no rate limit is configured
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

func waitLimiter(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

// localResponse wraps content rendered by a local engine into a scrape response
func localResponse(rawHTML []byte, pageURL string, statusCode int, opts models.ScrapeOptions) *models.ScrapeResponse {
	resp := &models.ScrapeResponse{
		Success: statusCode >= 200 && statusCode < 300,
		Metadata: map[string]any{
			"sourceURL":  pageURL,
			"statusCode": statusCode,
		},
	}

	if title := DocumentTitle(rawHTML); title != "" {
		resp.Metadata["title"] = title
	}
	if opts.WantsFormat(models.FormatMarkdown) {
		resp.Markdown = RenderMarkdown(rawHTML, pageURL, opts)
	}
	if opts.WantsFormat(models.FormatHTML) {
		resp.HTML = string(rawHTML)
	}
	return resp
}
