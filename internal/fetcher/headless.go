package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aleister1102/motosearch/internal/common"
	"github.com/aleister1102/motosearch/internal/config"
	"github.com/aleister1102/motosearch/internal/models"
	"github.com/aleister1102/motosearch/internal/urlhandler"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// HeadlessFetcher renders pages in a local Chrome driven by go-rod.
// The browser is launched on the first Scrape and reused until Close.
type HeadlessFetcher struct {
	config    config.HeadlessConfig
	userAgent string
	limiter   *rate.Limiter
	logger    zerolog.Logger

	mutex    sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewHeadlessFetcher creates a go-rod backed fetcher
func NewHeadlessFetcher(cfg config.FetcherConfig, logger zerolog.Logger) *HeadlessFetcher {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultFetcherUserAgent
	}
	return &HeadlessFetcher{
		config:    cfg.Headless,
		userAgent: userAgent,
		limiter:   newLimiter(cfg.RateLimitPerSecond),
		logger:    logger.With().Str("component", "HeadlessFetcher").Logger(),
	}
}

func (hf *HeadlessFetcher) ensureBrowser() (*rod.Browser, error) {
	hf.mutex.Lock()
	defer hf.mutex.Unlock()

	if hf.browser != nil {
		return hf.browser, nil
	}

	l := launcher.New()
	if hf.config.ChromePath != "" {
		l = l.Bin(hf.config.ChromePath)
	}
	if hf.config.UserDataDir != "" {
		l = l.UserDataDir(hf.config.UserDataDir)
	}
	l = l.
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("disable-default-apps").
		Set("disable-sync")
	if hf.config.DisableImages {
		l = l.Set("blink-settings", "imagesEnabled=false")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect browser: %w", err)
	}

	hf.launcher = l
	hf.browser = browser
	hf.logger.Info().Str("control_url", controlURL).Msg("Headless browser started")
	return browser, nil
}

func (hf *HeadlessFetcher) pageLoadTimeout() time.Duration {
	if hf.config.PageLoadTimeoutSecs <= 0 {
		return config.DefaultHeadlessPageLoadTimeoutSecs * time.Second
	}
	return time.Duration(hf.config.PageLoadTimeoutSecs) * time.Second
}

// Scrape implements Fetcher
func (hf *HeadlessFetcher) Scrape(ctx context.Context, pageURL string, opts models.ScrapeOptions) (*models.ScrapeResponse, error) {
	if err := urlhandler.ValidateURLFormat(pageURL); err != nil {
		return nil, common.NewValidationError("url", pageURL, err.Error())
	}
	if err := waitLimiter(ctx, hf.limiter); err != nil {
		return nil, common.WrapError(err, "rate limiter wait aborted")
	}

	browser, err := hf.ensureBrowser()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, hf.pageLoadTimeout())
	defer cancel()

	page, err := browser.Context(timeoutCtx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: hf.userAgent}); err != nil {
		hf.logger.Warn().Err(err).Msg("Failed to set user agent")
	}

	if err := page.Navigate(pageURL); err != nil {
		return nil, common.NewNetworkError(pageURL, "navigation failed", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, common.NewNetworkError(pageURL, "page load failed", err)
	}

	rendered, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to get HTML for %s: %w", pageURL, err)
	}

	finalURL := pageURL
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	hf.logger.Debug().
		Str("url", pageURL).
		Str("final_url", finalURL).
		Int("html_length", len(rendered)).
		Msg("Headless fetch completed")

	// The browser does not expose the document status code; a rendered page counts as 200
	return localResponse([]byte(rendered), finalURL, 200, opts), nil
}

// Close shuts down the browser if it was started
func (hf *HeadlessFetcher) Close() error {
	hf.mutex.Lock()
	defer hf.mutex.Unlock()

	var err error
	if hf.browser != nil {
		err = hf.browser.Close()
		hf.browser = nil
	}
	if hf.launcher != nil {
		hf.launcher.Cleanup()
		hf.launcher = nil
	}
	if err == nil {
		hf.logger.Debug().Msg("Headless browser stopped")
	}
	return err
}
