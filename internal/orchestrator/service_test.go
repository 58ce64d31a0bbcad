package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aleister1102/motosearch/internal/common"
	"github.com/aleister1102/motosearch/internal/datastore"
	"github.com/aleister1102/motosearch/internal/fetcher"
	"github.com/aleister1102/motosearch/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFactory hands out one fakeFetcher per call and remembers the tokens it saw
type fakeFactory struct {
	mutex    sync.Mutex
	tokens   []string
	fetchers []*fakeFetcher
	prepare  func(*fakeFetcher)
	err      error
}

func (ff *fakeFactory) build(token string) (fetcher.Fetcher, error) {
	ff.mutex.Lock()
	defer ff.mutex.Unlock()
	ff.tokens = append(ff.tokens, token)
	if ff.err != nil {
		return nil, ff.err
	}
	f := newFakeFetcher()
	if ff.prepare != nil {
		ff.prepare(f)
	}
	ff.fetchers = append(ff.fetchers, f)
	return f, nil
}

type recordingArchiver struct {
	reports []models.SearchReport
	err     error
}

func (ra *recordingArchiver) ArchiveSearch(ctx context.Context, report models.SearchReport) (string, error) {
	ra.reports = append(ra.reports, report)
	return "searches/" + report.SessionID + ".parquet", ra.err
}

func newTestService(key string, factory *fakeFactory, n int) *SearchService {
	return NewSearchService(
		datastore.NewMemoryCredentialStore(key),
		factory.build,
		NewOrchestrator(countingExtractor{n: n}, 0, zerolog.Nop()),
		zerolog.Nop(),
	)
}

func TestSearch_MissingAPIKey(t *testing.T) {
	factory := &fakeFactory{}
	svc := newTestService("", factory, 1)

	resp := svc.Search(context.Background(), models.SearchFilters{Brand: "Honda"})

	assert.False(t, resp.Success)
	assert.Equal(t, MissingAPIKeyMessage, resp.Error)
	assert.Nil(t, resp.Data)
	assert.Empty(t, factory.tokens)
}

func TestSearch_InvalidFilters(t *testing.T) {
	factory := &fakeFactory{}
	svc := newTestService("fc-key", factory, 1)

	resp := svc.Search(context.Background(), models.SearchFilters{MinPrice: 5000, MaxPrice: 1000})

	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
	assert.Empty(t, factory.tokens)
}

func TestSearch_FactoryError(t *testing.T) {
	factory := &fakeFactory{err: errors.New("bad base url")}
	svc := newTestService("fc-key", factory, 1)

	resp := svc.Search(context.Background(), models.SearchFilters{})

	assert.False(t, resp.Success)
	assert.Equal(t, "bad base url", resp.Error)
}

func TestSearch_FactoryConfigurationError(t *testing.T) {
	factory := &fakeFactory{err: common.NewConfigurationError("fetcher_config", "api_base_url", "not a URL")}
	svc := newTestService("fc-key", factory, 1)

	resp := svc.Search(context.Background(), models.SearchFilters{})

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "fetcher_config")
	assert.Contains(t, resp.Error, "api_base_url")
}

func TestSearch_PartialFailureStillSucceeds(t *testing.T) {
	factory := &fakeFactory{prepare: func(f *fakeFetcher) {
		f.errs["autoscout24"] = errors.New("timeout")
		f.responses["subito"] = okPage("subito")
	}}
	svc := newTestService("fc-key", factory, 2)

	resp := svc.Search(context.Background(), models.SearchFilters{Brand: "Yamaha"})

	require.True(t, resp.Success)
	assert.Empty(t, resp.Error)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "subito-0", resp.Data[0].Title)
}

func TestSearch_AllTargetsFailGivesEmptySuccess(t *testing.T) {
	factory := &fakeFactory{prepare: func(f *fakeFetcher) {
		f.errs["http"] = errors.New("unreachable")
	}}
	svc := newTestService("fc-key", factory, 2)

	resp := svc.Search(context.Background(), models.SearchFilters{})

	assert.True(t, resp.Success)
	assert.Empty(t, resp.Data)
}

func TestSearch_ReusesClientForSameKey(t *testing.T) {
	factory := &fakeFactory{}
	svc := newTestService("fc-key", factory, 1)

	svc.Search(context.Background(), models.SearchFilters{})
	svc.Search(context.Background(), models.SearchFilters{})

	assert.Equal(t, []string{"fc-key"}, factory.tokens)
	require.Len(t, factory.fetchers, 1)
	assert.Equal(t, 4, factory.fetchers[0].callCount())
}

func TestSaveAPIKey_InvalidatesCachedClient(t *testing.T) {
	factory := &fakeFactory{}
	svc := newTestService("old-key", factory, 1)
	ctx := context.Background()

	svc.Search(ctx, models.SearchFilters{})
	require.NoError(t, svc.SaveAPIKey(ctx, "  new-key  "))
	svc.Search(ctx, models.SearchFilters{})

	assert.Equal(t, []string{"old-key", "new-key"}, factory.tokens)
	assert.Equal(t, 1, factory.fetchers[0].closed)
}

func TestSaveAPIKey_KeepsClientOpenForRunningSearch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	factory := &fakeFactory{prepare: func(f *fakeFetcher) {
		f.beforeScrape = func() {
			once.Do(func() { close(started) })
			<-release
		}
	}}
	svc := newTestService("old-key", factory, 1)
	ctx := context.Background()

	done := make(chan models.SearchResponse, 1)
	go func() { done <- svc.Search(ctx, models.SearchFilters{}) }()
	<-started

	require.NoError(t, svc.SaveAPIKey(ctx, "new-key"))
	old := factory.fetchers[0]
	assert.Equal(t, 0, old.closeCount(), "client closed while a search was still using it")

	close(release)
	resp := <-done
	assert.True(t, resp.Success)
	assert.Equal(t, 2, old.callCount())
	assert.Equal(t, 1, old.closeCount())

	svc.Search(ctx, models.SearchFilters{})
	assert.Equal(t, []string{"old-key", "new-key"}, factory.tokens)
}

func TestSaveAPIKey_RejectsBlank(t *testing.T) {
	svc := newTestService("", &fakeFactory{}, 1)
	err := svc.SaveAPIKey(context.Background(), "   ")
	require.Error(t, err)

	resp := svc.Search(context.Background(), models.SearchFilters{})
	assert.Equal(t, MissingAPIKeyMessage, resp.Error)
}

func TestSearch_ArchivesReport(t *testing.T) {
	archiver := &recordingArchiver{}
	svc := newTestService("fc-key", &fakeFactory{}, 1).WithArchiver(archiver)

	resp := svc.Search(context.Background(), models.SearchFilters{Brand: "BMW"})

	require.True(t, resp.Success)
	require.Len(t, archiver.reports, 1)
	assert.Equal(t, "BMW", archiver.reports[0].Filters.Brand)
	assert.Equal(t, resp.Data, archiver.reports[0].Listings)
}

func TestSearch_ArchiveErrorIsNotFatal(t *testing.T) {
	archiver := &recordingArchiver{err: errors.New("disk full")}
	svc := newTestService("fc-key", &fakeFactory{}, 1).WithArchiver(archiver)

	resp := svc.Search(context.Background(), models.SearchFilters{})

	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 2)
}

func TestSearch_CancelledContextFails(t *testing.T) {
	svc := newTestService("fc-key", &fakeFactory{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := svc.Search(ctx, models.SearchFilters{})

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, context.Canceled.Error())
}

func TestValidateAPIKey(t *testing.T) {
	t.Run("successful validation scrape", func(t *testing.T) {
		factory := &fakeFactory{}
		svc := newTestService("", factory, 1)

		assert.True(t, svc.ValidateAPIKey(context.Background(), "fc-key"))
		require.Len(t, factory.fetchers, 1)
		assert.Equal(t, validationURL, factory.fetchers[0].calls[0].URL)
		assert.Equal(t, 1, factory.fetchers[0].closed)
	})

	t.Run("fetch error", func(t *testing.T) {
		factory := &fakeFactory{prepare: func(f *fakeFetcher) {
			f.errs["example.com"] = errors.New("401")
		}}
		assert.False(t, newTestService("", factory, 1).ValidateAPIKey(context.Background(), "bad"))
	})

	t.Run("unsuccessful scrape", func(t *testing.T) {
		factory := &fakeFactory{prepare: func(f *fakeFetcher) {
			f.responses["example.com"] = &models.ScrapeResponse{Success: false}
		}}
		assert.False(t, newTestService("", factory, 1).ValidateAPIKey(context.Background(), "bad"))
	})

	t.Run("factory error", func(t *testing.T) {
		factory := &fakeFactory{err: errors.New("missing token")}
		assert.False(t, newTestService("", factory, 1).ValidateAPIKey(context.Background(), ""))
	})

	t.Run("does not store the key", func(t *testing.T) {
		svc := newTestService("", &fakeFactory{}, 1)
		svc.ValidateAPIKey(context.Background(), "fc-key")
		resp := svc.Search(context.Background(), models.SearchFilters{})
		assert.Equal(t, MissingAPIKeyMessage, resp.Error)
	})
}

func TestClose_ClosesCachedClient(t *testing.T) {
	factory := &fakeFactory{}
	svc := newTestService("fc-key", factory, 1)
	svc.Search(context.Background(), models.SearchFilters{})

	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())
	assert.Equal(t, 1, factory.fetchers[0].closed)
}
