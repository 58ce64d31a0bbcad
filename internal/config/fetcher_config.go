package config

import "time"

// FetcherConfig selects and tunes the page-fetch engine
type FetcherConfig struct {
	Engine             string            `json:"engine,omitempty" yaml:"engine,omitempty" validate:"omitempty,engine"`
	APIBaseURL         string            `json:"api_base_url,omitempty" yaml:"api_base_url,omitempty" validate:"omitempty,url"`
	TimeoutSecs        int               `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"omitempty,min=1"`
	MaxRetries         int               `json:"max_retries" yaml:"max_retries" validate:"min=0,max=10"`
	RateLimitPerSecond float64           `json:"rate_limit_per_second,omitempty" yaml:"rate_limit_per_second,omitempty" validate:"omitempty,min=0"`
	UserAgent          string            `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	MaxContentSize     int               `json:"max_content_size,omitempty" yaml:"max_content_size,omitempty" validate:"omitempty,min=0"`
	RetryBaseDelayMs   int               `json:"retry_base_delay_ms,omitempty" yaml:"retry_base_delay_ms,omitempty" validate:"omitempty,min=1"`
	// Transport settings for the Firecrawl API client
	InsecureSkipVerify bool              `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	FollowRedirects    bool              `json:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects       int               `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"omitempty,min=1"`
	DisableHTTP2       bool              `json:"disable_http2" yaml:"disable_http2"`
	Proxy              string            `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,url"`
	Headers            map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Headless           HeadlessConfig    `json:"headless,omitempty" yaml:"headless,omitempty"`
}

// HeadlessConfig configures the go-rod browser engine
type HeadlessConfig struct {
	ChromePath          string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	UserDataDir         string `json:"user_data_dir,omitempty" yaml:"user_data_dir,omitempty"`
	DisableImages       bool   `json:"disable_images" yaml:"disable_images"`
	PageLoadTimeoutSecs int    `json:"page_load_timeout_secs,omitempty" yaml:"page_load_timeout_secs,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultFetcherConfig creates default fetcher configuration
func NewDefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Engine:             DefaultFetcherEngine,
		APIBaseURL:         DefaultFetcherAPIBaseURL,
		TimeoutSecs:        DefaultFetcherTimeoutSecs,
		MaxRetries:         DefaultFetcherMaxRetries,
		RateLimitPerSecond: DefaultFetcherRateLimitPerSecond,
		UserAgent:          DefaultFetcherUserAgent,
		MaxContentSize:     DefaultFetcherMaxContentSize,
		RetryBaseDelayMs:   DefaultFetcherRetryBaseDelayMs,
		FollowRedirects:    true,
		MaxRedirects:       DefaultFetcherMaxRedirects,
		Headless: HeadlessConfig{
			DisableImages:       true,
			PageLoadTimeoutSecs: DefaultHeadlessPageLoadTimeoutSecs,
		},
	}
}

// RetryBaseDelay returns the first retry backoff as a duration
func (fc FetcherConfig) RetryBaseDelay() time.Duration {
	if fc.RetryBaseDelayMs <= 0 {
		return DefaultFetcherRetryBaseDelayMs * time.Millisecond
	}
	return time.Duration(fc.RetryBaseDelayMs) * time.Millisecond
}

// Timeout returns the request timeout as a duration
func (fc FetcherConfig) Timeout() time.Duration {
	if fc.TimeoutSecs <= 0 {
		return DefaultFetcherTimeoutSecs * time.Second
	}
	return time.Duration(fc.TimeoutSecs) * time.Second
}
