package httpclient

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/aleister1102/motosearch/internal/common"

	"github.com/rs/zerolog"
)

// RetryHandler handles HTTP request retries with exponential backoff
type RetryHandler struct {
	maxRetries       int
	baseDelay        time.Duration
	maxDelay         time.Duration
	enableJitter     bool
	retryStatusCodes map[int]bool
	logger           zerolog.Logger
}

// RetryHandlerConfig configuration for retry handler
type RetryHandlerConfig struct {
	MaxRetries       int           `json:"max_retries"`
	BaseDelay        time.Duration `json:"base_delay"`
	MaxDelay         time.Duration `json:"max_delay"`
	EnableJitter     bool          `json:"enable_jitter"`
	RetryStatusCodes []int         `json:"retry_status_codes"`
}

// DefaultRetryHandlerConfig retries rate limiting and transient server errors
func DefaultRetryHandlerConfig() RetryHandlerConfig {
	return RetryHandlerConfig{
		MaxRetries:   2,
		BaseDelay:    500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		EnableJitter: true,
		RetryStatusCodes: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(config RetryHandlerConfig, logger zerolog.Logger) *RetryHandler {
	statusCodeMap := make(map[int]bool)
	for _, code := range config.RetryStatusCodes {
		statusCodeMap[code] = true
	}

	return &RetryHandler{
		maxRetries:       config.MaxRetries,
		baseDelay:        config.BaseDelay,
		maxDelay:         config.MaxDelay,
		enableJitter:     config.EnableJitter,
		retryStatusCodes: statusCodeMap,
		logger:           logger.With().Str("component", "RetryHandler").Logger(),
	}
}

// ShouldRetry determines if a request should be retried based on status code
func (rh *RetryHandler) ShouldRetry(statusCode int, attempt int) bool {
	if attempt >= rh.maxRetries {
		return false
	}
	return rh.retryStatusCodes[statusCode]
}

// CalculateDelay calculates the delay for the next retry attempt using exponential backoff
func (rh *RetryHandler) CalculateDelay(attempt int) time.Duration {
	delay := rh.baseDelay
	if attempt > 0 {
		delay = rh.baseDelay * time.Duration(math.Pow(2, float64(attempt)))
	}

	if rh.maxDelay > 0 && delay > rh.maxDelay {
		delay = rh.maxDelay
	}

	if rh.enableJitter {
		if window := delay.Milliseconds() / 10; window > 0 {
			delay += time.Duration(rand.Int63n(window)) * time.Millisecond
		}
	}

	return delay
}

// WaitForRetry waits for the calculated delay before retrying
func (rh *RetryHandler) WaitForRetry(ctx context.Context, attempt int, statusCode int, url string) error {
	delay := rh.CalculateDelay(attempt)

	rh.logger.Warn().
		Str("url", url).
		Int("status_code", statusCode).
		Int("attempt", attempt+1).
		Int("max_retries", rh.maxRetries).
		Dur("delay", delay).
		Msg("Retryable response, waiting before retry")

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DoWithRetry executes an HTTP request with retry logic.
// Network errors are retried immediately, retryable status codes after a backoff.
func (rh *RetryHandler) DoWithRetry(ctx context.Context, doFunc func(*HTTPRequest) (*HTTPResponse, error), req *HTTPRequest) (*HTTPResponse, error) {
	var lastResp *HTTPResponse
	var lastErr error

	for attempt := 0; attempt <= rh.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := doFunc(req)
		if err != nil {
			lastErr = err
			lastResp = nil

			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			if attempt < rh.maxRetries {
				rh.logger.Debug().
					Str("url", req.URL).
					Int("attempt", attempt+1).
					Err(err).
					Msg("Network error, retrying immediately")
				continue
			}
			break
		}

		lastResp = resp
		lastErr = nil

		if rh.ShouldRetry(resp.StatusCode, attempt) {
			if err := rh.WaitForRetry(ctx, attempt, resp.StatusCode, req.URL); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	if lastErr != nil {
		return nil, common.WrapError(lastErr, "all retry attempts failed")
	}

	if lastResp != nil && rh.retryStatusCodes[lastResp.StatusCode] {
		err := common.NewHTTPErrorWithURL(lastResp.StatusCode, snippet(lastResp.Body), req.URL)
		return lastResp, common.WrapError(err, "all retry attempts failed")
	}

	return lastResp, nil
}

// snippet limits error bodies carried into error messages
func snippet(body []byte) string {
	const maxSnippet = 1024
	if len(body) > maxSnippet {
		return string(body[:maxSnippet])
	}
	return string(body)
}
