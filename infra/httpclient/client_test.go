package httpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekendly/planner/pkg/breaker"
	"github.com/weekendly/planner/pkg/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(cfg Config, b *breaker.Breaker) *Client {
	c := New(cfg, b, testLogger())
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestExecute_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-06-07", r.URL.Query().Get("date"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	c := newTestClient(Config{Retries: 1}, nil)
	resp, err := c.Execute(context.Background(), http.MethodGet, srv.URL,
		map[string]string{"date": "2025-06-07"},
		map[string]string{"Authorization": "Bearer tok"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestExecute_RetriesOn5xxThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	c := newTestClient(Config{Retries: 2}, nil)
	resp, err := c.Execute(context.Background(), http.MethodGet, srv.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExecute_ExhaustedRetriesSurfaceTransientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(Config{Retries: 2}, nil)
	_, err := c.Execute(context.Background(), http.MethodGet, srv.URL, nil, nil)
	require.Error(t, err)
	var transient *TransientError
	assert.ErrorAs(t, err, &transient)
	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}

func TestExecute_4xxIsPermanentAndNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	b := breaker.New("target", testLogger())
	c := newTestClient(Config{Retries: 3}, b)
	_, err := c.Execute(context.Background(), http.MethodGet, srv.URL, nil, nil)

	var permanent *HTTPError
	require.ErrorAs(t, err, &permanent)
	assert.Equal(t, http.StatusNotFound, permanent.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, breaker.Closed, b.State(), "4xx must not count as breaker failure")
}

func TestExecute_BreakerTripsAndRejectsWithoutNetworkCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := breaker.New("target", testLogger(), breaker.WithFailureThreshold(3))
	c := newTestClient(Config{Retries: 2}, b)

	_, err := c.Execute(context.Background(), http.MethodGet, srv.URL, nil, nil)
	require.Error(t, err)
	require.Equal(t, breaker.Open, b.State(), "3 failed attempts trip the breaker")
	before := calls.Load()

	_, err = c.Execute(context.Background(), http.MethodGet, srv.URL, nil, nil)
	assert.ErrorIs(t, err, domain.ErrCircuitOpen)
	assert.Equal(t, before, calls.Load(), "rejected request must not hit the network")
}

func TestExecute_HalfOpenProbeClosesBreaker(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	now := time.Now()
	b := breaker.New("target", testLogger(),
		breaker.WithFailureThreshold(1),
		breaker.WithResetTimeout(time.Minute),
		breaker.WithClock(func() time.Time { return now }),
	)
	c := newTestClient(Config{Retries: 0}, b)

	_, err := c.Execute(context.Background(), http.MethodGet, srv.URL, nil, nil)
	require.Error(t, err)
	require.Equal(t, breaker.Open, b.State())

	fail.Store(false)
	now = now.Add(2 * time.Minute)
	resp, err := c.Execute(context.Background(), http.MethodGet, srv.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, breaker.Closed, b.State())
}

func TestGetJSON_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not-json`)
	}))
	defer srv.Close()

	c := newTestClient(Config{}, nil)
	var out map[string]any
	err := c.GetJSON(context.Background(), srv.URL, nil, nil, &out)
	assert.ErrorContains(t, err, "decode response")
}

func TestPaginate_StopsOnShortPage(t *testing.T) {
	fetch := func(ctx context.Context, page, pageSize int) ([]int, error) {
		switch page {
		case 1:
			return []int{1, 2, 3}, nil
		case 2:
			return []int{4, 5}, nil
		default:
			t.Fatalf("unexpected page %d", page)
			return nil, nil
		}
	}
	got, err := Paginate(context.Background(), fetch, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestPaginate_StopsOnEmptyPage(t *testing.T) {
	fetch := func(ctx context.Context, page, pageSize int) ([]int, error) {
		if page <= 2 {
			return []int{page}, nil
		}
		return nil, nil
	}
	got, err := Paginate(context.Background(), fetch, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)
}

func TestPaginate_PropagatesError(t *testing.T) {
	fetch := func(ctx context.Context, page, pageSize int) ([]int, error) {
		return nil, fmt.Errorf("boom")
	}
	_, err := Paginate(context.Background(), fetch, 10)
	assert.ErrorContains(t, err, "boom")
}
