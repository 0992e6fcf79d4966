package handle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tollgate/internal/metrics"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

const (
	testYat     = "🦊🚀"
	testAddress = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
)

// yatServer serves the Yat API with the given handler and counts requests.
func yatServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestResolver(t *testing.T, baseURL string, opts ...Option) *YatResolver {
	t.Helper()

	cfg := DefaultYatConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = time.Second
	cfg.RatePerSecond = 0
	cfg.Retry = RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	y, err := NewYatResolver(cfg, opts...)
	require.NoError(t, err)
	return y
}

func TestYatResolver_Found(t *testing.T) {
	t.Parallel()

	srv, hits := yatServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emoji_id/"+testYat+"/0x1004", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"result":[{"tag":"0x4101","data":"hello"},{"tag":"0x1004","data":"` + testAddress + `|main wallet"}]}`))
	})

	m := metrics.New()
	y := newTestResolver(t, srv.URL, WithMetrics(m))

	addr, err := y.Resolve(context.Background(), " "+testYat+" ")
	require.NoError(t, err)
	assert.Equal(t, testAddress, addr)

	// Second lookup is served from cache
	addr, err = y.Resolve(context.Background(), testYat)
	require.NoError(t, err)
	assert.Equal(t, testAddress, addr)
	assert.Equal(t, int32(1), hits.Load())

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.HandleLookups)
	assert.Equal(t, int64(1), snap.CacheHits)
	assert.Equal(t, int64(1), snap.CacheMisses)
}

func TestYatResolver_NotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"404", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{"status false", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":false,"result":[]}`))
		}},
		{"no matching tag", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":true,"result":[{"tag":"0x1001","data":"bc1qxyz|btc"}]}`))
		}},
		{"empty data", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":true,"result":[{"tag":"0x1004","data":"|nothing"}]}`))
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv, hits := yatServer(t, tc.handler)
			y := newTestResolver(t, srv.URL)

			addr, err := y.Resolve(context.Background(), testYat)
			require.NoError(t, err)
			assert.Empty(t, addr)

			// Negative results are cached too
			_, err = y.Resolve(context.Background(), testYat)
			require.NoError(t, err)
			assert.Equal(t, int32(1), hits.Load())
		})
	}
}

func TestYatResolver_NonEmojiSkipsNetwork(t *testing.T) {
	t.Parallel()

	srv, hits := yatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	y := newTestResolver(t, srv.URL)

	for _, input := range []string{"sometag", "not-an-address", "🦊🦊🦊🦊🦊🦊", ""} {
		addr, err := y.Resolve(context.Background(), input)
		require.NoError(t, err, input)
		assert.Empty(t, addr, input)
	}
	assert.Equal(t, int32(0), hits.Load())
}

func TestYatResolver_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv, _ := yatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":true,"result":[{"tag":"0x1004","data":"` + testAddress + `"}]}`))
	})
	y := newTestResolver(t, srv.URL)

	addr, err := y.Resolve(context.Background(), testYat)
	require.NoError(t, err)
	assert.Equal(t, testAddress, addr)
	assert.Equal(t, int32(3), calls.Load())
}

func TestYatResolver_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		handler   http.HandlerFunc
		wantHits  int32
		wantCause error
	}{
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantHits:  3,
			wantCause: ErrRateLimited,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantHits:  3,
			wantCause: ErrTransient,
		},
		{
			name: "bad request is not retried",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			wantHits:  1,
			wantCause: tgerr.ErrNetworkError,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"status":`))
			},
			wantHits:  1,
			wantCause: tgerr.ErrNetworkError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv, hits := yatServer(t, tc.handler)
			m := metrics.New()
			y := newTestResolver(t, srv.URL, WithMetrics(m))

			addr, err := y.Resolve(context.Background(), testYat)
			require.ErrorIs(t, err, tgerr.ErrHandleLookup)
			require.ErrorIs(t, err, tc.wantCause)
			assert.Empty(t, addr)
			assert.Equal(t, tc.wantHits, hits.Load())
			assert.Equal(t, int64(1), m.Snapshot().LookupErrors)
		})
	}
}

func TestYatResolver_FailuresAreNotCached(t *testing.T) {
	t.Parallel()

	srv, hits := yatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	y := newTestResolver(t, srv.URL)

	_, err := y.Resolve(context.Background(), testYat)
	require.Error(t, err)
	_, err = y.Resolve(context.Background(), testYat)
	require.Error(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestYatResolver_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv, _ := yatServer(t, func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })

	cfg := DefaultYatConfig()
	cfg.BaseURL = srv.URL
	cfg.Timeout = 20 * time.Millisecond
	cfg.Retry = RetryPolicy{Attempts: 1}
	y, err := NewYatResolver(cfg)
	require.NoError(t, err)

	_, err = y.Resolve(context.Background(), testYat)
	require.ErrorIs(t, err, tgerr.ErrHandleLookup)
}

func TestNewYatResolver_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	for _, base := range []string{"ftp://a.y.at", "not a url", "https://"} {
		cfg := DefaultYatConfig()
		cfg.BaseURL = base
		_, err := NewYatResolver(cfg)
		require.ErrorIs(t, err, tgerr.ErrConfigInvalid, base)
	}
}

func TestNewYatResolver_Defaults(t *testing.T) {
	t.Parallel()

	y, err := NewYatResolver(YatConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultYatBaseURL, y.cfg.BaseURL)
	assert.Equal(t, DefaultYatTag, y.cfg.Tag)
	assert.Equal(t, "a.y.at", y.host)
	assert.Equal(t, DefaultRetryPolicy(), y.cfg.Retry)
}
