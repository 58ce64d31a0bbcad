package httpclient

import (
	"time"

	"github.com/rs/zerolog"
)

// HTTPClientBuilder builds HTTP clients with fluent interface
type HTTPClientBuilder struct {
	config HTTPClientConfig
	logger zerolog.Logger
}

// NewHTTPClientBuilder creates a new HTTPClientBuilder with default configuration
func NewHTTPClientBuilder(logger zerolog.Logger) *HTTPClientBuilder {
	return &HTTPClientBuilder{
		config: DefaultHTTPClientConfig(),
		logger: logger,
	}
}

// WithTimeout sets the request timeout
func (b *HTTPClientBuilder) WithTimeout(timeout time.Duration) *HTTPClientBuilder {
	b.config.Timeout = timeout
	return b
}

// WithInsecureSkipVerify sets whether to skip TLS verification
func (b *HTTPClientBuilder) WithInsecureSkipVerify(skip bool) *HTTPClientBuilder {
	b.config.InsecureSkipVerify = skip
	return b
}

// WithFollowRedirects sets whether to follow redirects
func (b *HTTPClientBuilder) WithFollowRedirects(follow bool) *HTTPClientBuilder {
	b.config.FollowRedirects = follow
	return b
}

// WithMaxRedirects sets the maximum number of redirects to follow
func (b *HTTPClientBuilder) WithMaxRedirects(max int) *HTTPClientBuilder {
	b.config.MaxRedirects = max
	return b
}

// WithUserAgent sets the User-Agent header
func (b *HTTPClientBuilder) WithUserAgent(userAgent string) *HTTPClientBuilder {
	b.config.UserAgent = userAgent
	return b
}

// WithHeader adds a header sent with every request
func (b *HTTPClientBuilder) WithHeader(key, value string) *HTTPClientBuilder {
	if b.config.CustomHeaders == nil {
		b.config.CustomHeaders = make(map[string]string)
	}
	b.config.CustomHeaders[key] = value
	return b
}

// WithMaxContentSize sets the maximum content size to fetch in bytes (0 for no limit)
func (b *HTTPClientBuilder) WithMaxContentSize(size int) *HTTPClientBuilder {
	b.config.MaxContentSize = size
	return b
}

// WithRetry replaces the retry policy; MaxRetries 0 disables retries
func (b *HTTPClientBuilder) WithRetry(retry RetryHandlerConfig) *HTTPClientBuilder {
	b.config.Retry = retry
	return b
}

// WithProxy routes requests through proxyURL; Build fails if it does not parse
func (b *HTTPClientBuilder) WithProxy(proxyURL string) *HTTPClientBuilder {
	b.config.Proxy = proxyURL
	return b
}

// WithHTTP2 enables or disables HTTP/2 support
func (b *HTTPClientBuilder) WithHTTP2(enabled bool) *HTTPClientBuilder {
	b.config.EnableHTTP2 = enabled
	return b
}

// Build creates and returns a new HTTPClient
func (b *HTTPClientBuilder) Build() (*HTTPClient, error) {
	return NewHTTPClient(b.config, b.logger)
}
