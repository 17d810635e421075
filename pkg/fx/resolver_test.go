package fx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/weekendly/planner/pkg/domain"
	"github.com/weekendly/planner/pkg/money"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockFetcher is a mock implementation of Fetcher for testing.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) GetJSON(ctx context.Context, url string, params map[string]string, headers map[string]string, out any) error {
	args := m.Called(ctx, url, params, headers, out)
	if rates, ok := args.Get(0).(map[money.Code]float64); ok {
		out.(*liveResponse).Rates = rates
	}
	return args.Error(1)
}

// memStore is an in-memory Store for tests.
type memStore struct {
	rates    map[money.Code]float64
	storedAt time.Time
	saved    int
}

func (s *memStore) Load() (map[money.Code]float64, time.Time, bool) {
	if s.rates == nil {
		return nil, time.Time{}, false
	}
	return s.rates, s.storedAt, true
}

func (s *memStore) Save(rates map[money.Code]float64) error {
	s.rates = rates
	s.storedAt = time.Now()
	s.saved++
	return nil
}

func TestGetRates_LiveFetchPersistsAndTagsLive(t *testing.T) {
	fetcher := &MockFetcher{}
	fetcher.On("GetJSON", mock.Anything, "https://fx.example/latest", mock.Anything, mock.Anything, mock.Anything).
		Return(map[money.Code]float64{money.USD: 1.2, money.GBP: 0.9}, nil).Once()

	store := &memStore{}
	r := New(fetcher, store, Config{BaseURL: "https://fx.example/latest"}, testLogger())

	table, source := r.GetRates(context.Background())
	assert.Equal(t, domain.SourceLive, source)
	assert.InDelta(t, 1.2, table.Rates[money.USD], 1e-9)
	assert.InDelta(t, 1.0, table.Rates[money.EUR], 1e-9, "pivot always present at 1.0")
	assert.Equal(t, 1, store.saved)
	fetcher.AssertExpectations(t)
}

func TestGetRates_MemoizedPerResolverLifetime(t *testing.T) {
	fetcher := &MockFetcher{}
	fetcher.On("GetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(map[money.Code]float64{money.USD: 1.1}, nil).Once()

	r := New(fetcher, &memStore{}, Config{BaseURL: "u"}, testLogger())
	r.GetRates(context.Background())
	_, source := r.GetRates(context.Background())

	assert.Equal(t, domain.SourceLive, source)
	fetcher.AssertNumberOfCalls(t, "GetJSON", 1)
}

func TestGetRates_FreshDiskCacheSkipsLiveFetch(t *testing.T) {
	fetcher := &MockFetcher{}
	store := &memStore{rates: map[money.Code]float64{money.USD: 1.05}, storedAt: time.Now().Add(-time.Hour)}

	r := New(fetcher, store, Config{BaseURL: "u", MaxAge: 24 * time.Hour}, testLogger())
	table, source := r.GetRates(context.Background())

	assert.Equal(t, domain.SourceCached, source)
	assert.InDelta(t, 1.05, table.Rates[money.USD], 1e-9)
	fetcher.AssertNumberOfCalls(t, "GetJSON", 0)
}

func TestGetRates_StaleDiskCacheUsedAfterFailedFetch(t *testing.T) {
	fetcher := &MockFetcher{}
	fetcher.On("GetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("connect refused")).Once()
	store := &memStore{rates: map[money.Code]float64{money.USD: 1.08}, storedAt: time.Now().Add(-48 * time.Hour)}

	r := New(fetcher, store, Config{BaseURL: "u", MaxAge: 24 * time.Hour}, testLogger())
	table, source := r.GetRates(context.Background())

	assert.Equal(t, domain.SourceLastGood, source)
	assert.InDelta(t, 1.08, table.Rates[money.USD], 1e-9)
}

func TestGetRates_PivotOnlyFallbackWhenNothingElse(t *testing.T) {
	fetcher := &MockFetcher{}
	fetcher.On("GetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("unreachable")).Once()

	r := New(fetcher, &memStore{}, Config{BaseURL: "u"}, testLogger())
	table, source := r.GetRates(context.Background())

	assert.Equal(t, domain.SourceFallbackPivotOnly, source)
	assert.Equal(t, map[money.Code]float64{money.EUR: 1.0}, table.Rates)
}

func TestGetRates_ConfiguredFallbackTable(t *testing.T) {
	fetcher := &MockFetcher{}
	fetcher.On("GetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("unreachable")).Once()

	r := New(fetcher, &memStore{}, Config{
		BaseURL:       "u",
		FallbackRates: map[money.Code]float64{money.USD: 1.1},
	}, testLogger())
	table, source := r.GetRates(context.Background())

	assert.Equal(t, domain.SourceFallback, source)
	assert.InDelta(t, 1.1, table.Rates[money.USD], 1e-9)
}

func TestGetRates_OfflineModeReadsDiskIgnoringAge(t *testing.T) {
	fetcher := &MockFetcher{}
	store := &memStore{rates: map[money.Code]float64{money.USD: 1.07}, storedAt: time.Now().Add(-30 * 24 * time.Hour)}

	r := New(fetcher, store, Config{BaseURL: "u", Offline: true}, testLogger())
	_, source := r.GetRates(context.Background())

	assert.Equal(t, domain.SourceLastGood, source)
	fetcher.AssertNumberOfCalls(t, "GetJSON", 0)
}

func TestConvert_PivotRouting(t *testing.T) {
	table := domain.NewRateTable(money.EUR, map[money.Code]float64{money.USD: 1.2, money.GBP: 0.9})

	got := table.Convert(30, money.USD, money.EUR)
	assert.InDelta(t, 30.0/1.2, got, 1e-9)

	got = table.Convert(30, money.USD, money.GBP)
	assert.InDelta(t, 30.0/1.2*0.9, got, 1e-9)
}

func TestConvert_MissingCurrencyIsIdentity(t *testing.T) {
	table := domain.NewRateTable(money.EUR, nil)
	assert.InDelta(t, 42.0, table.Convert(42, "CHF", money.EUR), 1e-9)
	assert.InDelta(t, 42.0, table.Convert(42, money.EUR, "CHF"), 1e-9)
}

func TestInvalidate_ForcesReresolve(t *testing.T) {
	fetcher := &MockFetcher{}
	fetcher.On("GetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(map[money.Code]float64{money.USD: 1.1}, nil).Twice()

	r := New(fetcher, nil, Config{BaseURL: "u"}, testLogger())
	r.GetRates(context.Background())
	r.Invalidate()
	r.GetRates(context.Background())

	require.Equal(t, 2, len(fetcher.Calls))
}
