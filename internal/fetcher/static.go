package fetcher

import (
	"context"
	"time"

	"github.com/aleister1102/motosearch/internal/common"
	"github.com/aleister1102/motosearch/internal/config"
	"github.com/aleister1102/motosearch/internal/models"
	"github.com/aleister1102/motosearch/internal/urlhandler"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// StaticFetcher downloads pages with colly and renders them locally. No
// JavaScript runs, so client-rendered listings will be missing.
type StaticFetcher struct {
	userAgent      string
	requestTimeout time.Duration
	maxBodySize    int
	limiter        *rate.Limiter
	logger         zerolog.Logger
}

// NewStaticFetcher creates a colly-backed fetcher
func NewStaticFetcher(cfg config.FetcherConfig, logger zerolog.Logger) *StaticFetcher {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultFetcherUserAgent
	}
	return &StaticFetcher{
		userAgent:      userAgent,
		requestTimeout: cfg.Timeout(),
		maxBodySize:    cfg.MaxContentSize,
		limiter:        newLimiter(cfg.RateLimitPerSecond),
		logger:         logger.With().Str("component", "StaticFetcher").Logger(),
	}
}

// createCollector builds a fresh synchronous collector bound to ctx
func (sf *StaticFetcher) createCollector(ctx context.Context) *colly.Collector {
	options := []colly.CollectorOption{
		colly.UserAgent(sf.userAgent),
		colly.IgnoreRobotsTxt(),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	}
	if sf.maxBodySize > 0 {
		options = append(options, colly.MaxBodySize(sf.maxBodySize))
	}

	collector := colly.NewCollector(options...)
	collector.SetRequestTimeout(sf.requestTimeout)
	return collector
}

// Scrape implements Fetcher
func (sf *StaticFetcher) Scrape(ctx context.Context, pageURL string, opts models.ScrapeOptions) (*models.ScrapeResponse, error) {
	if err := urlhandler.ValidateURLFormat(pageURL); err != nil {
		return nil, common.NewValidationError("url", pageURL, err.Error())
	}
	if err := waitLimiter(ctx, sf.limiter); err != nil {
		return nil, common.WrapError(err, "rate limiter wait aborted")
	}

	collector := sf.createCollector(ctx)

	var (
		body       []byte
		statusCode int
		finalURL   = pageURL
		fetchErr   error
	)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "it-IT,it;q=0.9,en;q=0.8")
	})
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
		statusCode = r.StatusCode
		finalURL = r.Request.URL.String()
	})
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			statusCode = r.StatusCode
			body = r.Body
		}
	})

	visitErr := collector.Visit(pageURL)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if fetchErr == nil {
		fetchErr = visitErr
	}

	if fetchErr != nil && statusCode == 0 {
		sf.logger.Warn().Err(fetchErr).Str("url", pageURL).Msg("Static fetch failed")
		return nil, common.NewNetworkError(pageURL, "static fetch failed", fetchErr)
	}

	sf.logger.Debug().
		Str("url", pageURL).
		Str("final_url", finalURL).
		Int("status_code", statusCode).
		Int("body_size", len(body)).
		Msg("Static fetch completed")

	return localResponse(body, finalURL, statusCode, opts), nil
}

// Close implements Fetcher
func (sf *StaticFetcher) Close() error {
	return nil
}
