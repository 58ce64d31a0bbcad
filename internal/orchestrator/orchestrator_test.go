package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/aleister1102/motosearch/internal/common"
	"github.com/aleister1102/motosearch/internal/extractor"
	"github.com/aleister1102/motosearch/internal/fetcher"
	"github.com/aleister1102/motosearch/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scrapeCall struct {
	URL     string
	Options models.ScrapeOptions
}

// fakeFetcher answers by URL substring; unmatched URLs get an empty successful page
type fakeFetcher struct {
	mutex     sync.Mutex
	responses map[string]*models.ScrapeResponse
	errs      map[string]error
	calls     []scrapeCall
	closed    int

	// beforeScrape runs outside the mutex so tests can hold a scrape open
	beforeScrape func()
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: map[string]*models.ScrapeResponse{},
		errs:      map[string]error{},
	}
}

func (f *fakeFetcher) Scrape(ctx context.Context, url string, opts models.ScrapeOptions) (*models.ScrapeResponse, error) {
	if f.beforeScrape != nil {
		f.beforeScrape()
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.calls = append(f.calls, scrapeCall{URL: url, Options: opts})

	for key, err := range f.errs {
		if strings.Contains(url, key) {
			return nil, err
		}
	}
	for key, resp := range f.responses {
		if strings.Contains(url, key) {
			return resp, nil
		}
	}
	return okPage(""), nil
}

func (f *fakeFetcher) Close() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.closed++
	return nil
}

func (f *fakeFetcher) closeCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.closed
}

func (f *fakeFetcher) callCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.calls)
}

func okPage(markdown string) *models.ScrapeResponse {
	return &models.ScrapeResponse{
		Success:  true,
		Markdown: markdown,
		Metadata: map[string]any{"statusCode": 200},
	}
}

// countingExtractor emits n records per page, titled by page content
type countingExtractor struct {
	n int
}

func (c countingExtractor) Extract(content, sourceURL string) []models.ListingRecord {
	records := make([]models.ListingRecord, 0, c.n)
	for i := 0; i < c.n; i++ {
		records = append(records, models.ListingRecord{
			Title: fmt.Sprintf("%s-%d", content, i),
			Price: "€ 1.000",
			Link:  sourceURL,
		})
	}
	return records
}

func TestDefaultScrapeOptions(t *testing.T) {
	opts := DefaultScrapeOptions()
	assert.Equal(t, []string{"markdown", "html"}, opts.Formats)
	assert.Equal(t, []string{"img", "a", "h1", "h2", "h3", "span", "div"}, opts.IncludeTags)
	assert.Equal(t, []string{"nav", "footer", "header"}, opts.ExcludeTags)
}

func TestRun_ConcatenatesInTargetOrder(t *testing.T) {
	f := newFakeFetcher()
	f.responses["autoscout24"] = okPage("as24")
	f.responses["subito"] = okPage("subito")

	o := NewOrchestrator(countingExtractor{n: 2}, 0, zerolog.Nop())
	report := o.Run(context.Background(), f, models.SearchFilters{Brand: "Honda"})

	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, models.SourceAutoScout24, report.Outcomes[0].Target.Source)
	assert.Equal(t, models.SourceSubito, report.Outcomes[1].Target.Source)

	titles := make([]string, 0, len(report.Listings))
	for _, l := range report.Listings {
		titles = append(titles, l.Title)
	}
	assert.Equal(t, []string{"as24-0", "as24-1", "subito-0", "subito-1"}, titles)
	assert.NotEmpty(t, report.SessionID)
	assert.Empty(t, report.FailedTargets())
}

func TestRun_SendsSearchOptionsToEveryTarget(t *testing.T) {
	f := newFakeFetcher()
	o := NewOrchestrator(countingExtractor{}, 0, zerolog.Nop())
	o.Run(context.Background(), f, models.SearchFilters{})

	require.Len(t, f.calls, 2)
	for _, call := range f.calls {
		assert.Equal(t, DefaultScrapeOptions(), call.Options)
	}
}

func TestRun_FailingTargetDoesNotAbortSearch(t *testing.T) {
	f := newFakeFetcher()
	fetchErr := errors.New("connection reset")
	f.errs["autoscout24"] = fetchErr
	f.responses["subito"] = okPage("subito")

	o := NewOrchestrator(countingExtractor{n: 3}, 0, zerolog.Nop())
	report := o.Run(context.Background(), f, models.SearchFilters{})

	assert.Len(t, report.Listings, 3)
	failed := report.FailedTargets()
	require.Len(t, failed, 1)
	assert.Equal(t, models.SourceAutoScout24, failed[0].Target.Source)
	assert.ErrorIs(t, failed[0].Err, fetchErr)
}

func TestRun_SessionLogger(t *testing.T) {
	t.Run("logs the run through the session logger", func(t *testing.T) {
		var buf bytes.Buffer
		var gotSession string
		o := NewOrchestrator(countingExtractor{n: 1}, 0, zerolog.Nop()).
			WithSessionLogger(func(sessionID string) (zerolog.Logger, error) {
				gotSession = sessionID
				return zerolog.New(&buf), nil
			})

		report := o.Run(context.Background(), newFakeFetcher(), models.SearchFilters{})

		assert.Equal(t, report.SessionID, gotSession)
		assert.Contains(t, buf.String(), "Starting search")
		assert.Contains(t, buf.String(), "Search finished")
		assert.Contains(t, buf.String(), `"component":"Orchestrator"`)
	})

	t.Run("falls back when the session logger fails", func(t *testing.T) {
		var buf bytes.Buffer
		o := NewOrchestrator(countingExtractor{n: 1}, 0, zerolog.New(&buf)).
			WithSessionLogger(func(string) (zerolog.Logger, error) {
				return zerolog.Nop(), errors.New("read-only log dir")
			})

		report := o.Run(context.Background(), newFakeFetcher(), models.SearchFilters{})

		assert.Len(t, report.Listings, 2)
		assert.Contains(t, buf.String(), "read-only log dir")
		assert.Contains(t, buf.String(), "Search finished")
	})
}

func TestRun_UnsuccessfulScrapes(t *testing.T) {
	f := newFakeFetcher()
	f.responses["autoscout24"] = &models.ScrapeResponse{Success: false, Metadata: map[string]any{}}
	f.responses["subito"] = &models.ScrapeResponse{Success: true, Markdown: "subito"}

	o := NewOrchestrator(countingExtractor{n: 1}, 0, zerolog.Nop())
	report := o.Run(context.Background(), f, models.SearchFilters{})

	assert.Empty(t, report.Listings)
	require.Len(t, report.Outcomes, 2)
	for _, outcome := range report.Outcomes {
		assert.ErrorIs(t, outcome.Err, ErrUnsuccessfulScrape)
	}
}

func TestRun_CapsAggregate(t *testing.T) {
	f := newFakeFetcher()
	f.responses["autoscout24"] = okPage("as24")
	f.responses["subito"] = okPage("subito")

	o := NewOrchestrator(countingExtractor{n: 30}, 0, zerolog.Nop())
	report := o.Run(context.Background(), f, models.SearchFilters{})

	require.Len(t, report.Listings, 50)
	assert.Equal(t, "as24-0", report.Listings[0].Title)
	assert.Equal(t, "subito-19", report.Listings[49].Title)
	assert.Len(t, report.Outcomes[1].Records, 30)
}

func TestRun_CustomMaxResults(t *testing.T) {
	o := NewOrchestrator(countingExtractor{n: 5}, 3, zerolog.Nop())
	report := o.Run(context.Background(), newFakeFetcher(), models.SearchFilters{})
	assert.Len(t, report.Listings, 3)
}

func TestRun_CancelledContextSkipsFetches(t *testing.T) {
	f := newFakeFetcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(countingExtractor{n: 1}, 0, zerolog.Nop())
	report := o.Run(ctx, f, models.SearchFilters{})

	assert.Zero(t, f.callCount())
	assert.Empty(t, report.Listings)
	require.Len(t, report.Outcomes, 2)
	for _, outcome := range report.Outcomes {
		assert.ErrorIs(t, outcome.Err, context.Canceled)
	}
}

func TestRun_WithListingExtractor(t *testing.T) {
	f := newFakeFetcher()
	f.responses["subito"] = okPage("Risultati\nDucati Monster 2018 km 12.000 € 6.500 moto usata\n")

	o := NewOrchestrator(extractor.NewListingExtractor(zerolog.Nop()), 0, zerolog.Nop())
	report := o.Run(context.Background(), f, models.SearchFilters{Brand: "Ducati"})

	require.Len(t, report.Listings, 1)
	listing := report.Listings[0]
	assert.Equal(t, "Ducati Monster 2018 km 12.000 € 6.500 moto usata", listing.Title)
	assert.Equal(t, "€ 6.500", listing.Price)
	assert.Equal(t, "2018", listing.Year)
	assert.Equal(t, "km 12.000", listing.Mileage)
	assert.Equal(t, models.SourceSubito, listing.Source)
	assert.Contains(t, listing.Link, "subito.it")
}

func TestFailureReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", common.NewHTTPErrorWithURL(401, "bad token", "https://api.firecrawl.dev/v1/scrape"), "unauthorized"},
		{"timeout sentinel", fmt.Errorf("%w: scrape: %w", common.ErrTimeout, context.DeadlineExceeded), "timeout"},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"cancelled", common.WrapError(context.Canceled, "stopped"), "cancelled"},
		{"network", common.NewNetworkError("https://www.subito.it", "HTTP request failed", errors.New("reset")), "network"},
		{"invalid input", common.NewValidationError("url", "mailto:x", "bad scheme"), "invalid_input"},
		{"too large", common.WrapError(fetcher.ErrResponseTooLarge, "firecrawl"), "response_too_large"},
		{"unsuccessful", ErrUnsuccessfulScrape, "unsuccessful"},
		{"other", errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failureReason(tt.err))
		})
	}
}
