package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/aleister1102/motosearch/internal/common"
	"github.com/aleister1102/motosearch/internal/config"
	"github.com/aleister1102/motosearch/internal/httpclient"
	"github.com/aleister1102/motosearch/internal/models"
	"github.com/aleister1102/motosearch/internal/urlhandler"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const scrapeEndpoint = "/v1/scrape"

type firecrawlScrapeRequest struct {
	URL string `json:"url"`
	models.ScrapeOptions
}

type firecrawlScrapeResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		Markdown string         `json:"markdown"`
		HTML     string         `json:"html"`
		Metadata map[string]any `json:"metadata"`
	} `json:"data"`
	Error string `json:"error"`
}

// FirecrawlClient calls the Firecrawl scrape endpoint with a bearer token
type FirecrawlClient struct {
	httpClient *httpclient.HTTPClient
	endpoint   string
	token      string
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewFirecrawlClient creates a client for the configured API base URL
func NewFirecrawlClient(cfg config.FetcherConfig, token string, logger zerolog.Logger) (*FirecrawlClient, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = config.DefaultFetcherAPIBaseURL
	}
	if err := urlhandler.ValidateURLFormat(baseURL); err != nil {
		return nil, common.NewConfigurationError("fetcher_config", "api_base_url", err.Error())
	}

	componentLogger := logger.With().Str("component", "FirecrawlClient").Logger()

	retryCfg := httpclient.DefaultRetryHandlerConfig()
	retryCfg.MaxRetries = cfg.MaxRetries
	retryCfg.BaseDelay = cfg.RetryBaseDelay()

	builder := httpclient.NewHTTPClientBuilder(componentLogger).
		WithTimeout(cfg.Timeout()).
		WithRetry(retryCfg).
		WithMaxContentSize(cfg.MaxContentSize).
		WithInsecureSkipVerify(cfg.InsecureSkipVerify).
		WithFollowRedirects(cfg.FollowRedirects).
		WithMaxRedirects(cfg.MaxRedirects).
		WithHTTP2(!cfg.DisableHTTP2).
		WithProxy(cfg.Proxy)
	if cfg.UserAgent != "" {
		builder = builder.WithUserAgent(cfg.UserAgent)
	}
	for name, value := range cfg.Headers {
		builder = builder.WithHeader(name, value)
	}
	client, err := builder.Build()
	if err != nil {
		return nil, common.WrapError(err, "failed to create firecrawl HTTP client")
	}

	return &FirecrawlClient{
		httpClient: client,
		endpoint:   strings.TrimRight(baseURL, "/") + scrapeEndpoint,
		token:      token,
		limiter:    newLimiter(cfg.RateLimitPerSecond),
		logger:     componentLogger,
	}, nil
}

// Scrape fetches pageURL through Firecrawl. A response with success=false is
// returned without error; transport and HTTP failures are errors.
func (fc *FirecrawlClient) Scrape(ctx context.Context, pageURL string, opts models.ScrapeOptions) (*models.ScrapeResponse, error) {
	if err := urlhandler.ValidateURLFormat(pageURL); err != nil {
		return nil, common.NewValidationError("url", pageURL, err.Error())
	}
	if err := waitLimiter(ctx, fc.limiter); err != nil {
		return nil, common.WrapError(err, "rate limiter wait aborted")
	}

	payload := firecrawlScrapeRequest{URL: pageURL, ScrapeOptions: opts}
	headers := map[string]string{"Authorization": "Bearer " + fc.token}

	resp, err := fc.httpClient.PostJSON(ctx, fc.endpoint, headers, payload)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return nil, common.WrapError(err, "firecrawl rejected the API key")
		}
		fc.logger.Warn().Err(err).Str("url", pageURL).Msg("Firecrawl scrape request failed")
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: firecrawl scrape of %s: %w", common.ErrTimeout, pageURL, err)
		}
		return nil, common.WrapErrorf(err, "firecrawl scrape of %s failed", pageURL)
	}
	if resp.Truncated {
		return nil, common.WrapErrorf(ErrResponseTooLarge, "firecrawl response for %s", pageURL)
	}

	var decoded firecrawlScrapeResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return nil, common.WrapError(err, "failed to decode firecrawl response")
	}

	result := &models.ScrapeResponse{Success: decoded.Success}
	if decoded.Data != nil {
		result.Markdown = decoded.Data.Markdown
		result.HTML = decoded.Data.HTML
		result.Metadata = decoded.Data.Metadata
	}

	if !decoded.Success {
		fc.logger.Warn().Str("url", pageURL).Str("error", decoded.Error).Msg("Firecrawl reported an unsuccessful scrape")
	} else {
		fc.logger.Debug().
			Str("url", pageURL).
			Int("markdown_length", len(result.Markdown)).
			Int("html_length", len(result.HTML)).
			Msg("Firecrawl scrape completed")
	}

	return result, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Close implements Fetcher
func (fc *FirecrawlClient) Close() error {
	return nil
}
