package minicluster

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverPort(t *testing.T, srv *httptest.Server) int {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	_, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}

func TestWaitForApp(t *testing.T) {
	t.Parallel()

	t.Run("healthy on first attempt returns without sleeping", func(t *testing.T) {
		t.Parallel()
		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			assert.Equal(t, "/health", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(srv.Close)

		// A one-minute interval would blow the test deadline if the waiter
		// slept even once.
		cluster := newTestCluster(nil,
			WithHost("127.0.0.1"),
			WithRetryInterval(time.Minute),
		)
		start := time.Now()
		require.NoError(t, cluster.WaitForApp(t.Context(), "jobmgr", serverPort(t, srv)))
		assert.Less(t, time.Since(start), 10*time.Second)
		assert.EqualValues(t, 1, requests.Load())
	})

	t.Run("succeeds on fourth attempt after three failures", func(t *testing.T) {
		t.Parallel()
		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if requests.Add(1) <= 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(srv.Close)

		cluster := newTestCluster(nil,
			WithHost("127.0.0.1"),
			WithMaxAttempts(10),
			WithRetryInterval(10*time.Millisecond),
		)
		require.NoError(t, cluster.WaitForApp(t.Context(), "jobmgr", serverPort(t, srv)))
		assert.EqualValues(t, 4, requests.Load())
	})

	t.Run("custom health path", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/ready" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(srv.Close)

		cluster := newTestCluster(nil, WithHost("127.0.0.1"))
		require.NoError(t, cluster.WaitForAppPath(t.Context(), "jobmgr", serverPort(t, srv), "/ready"))
	})

	t.Run("never healthy exhausts the budget", func(t *testing.T) {
		t.Parallel()
		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		t.Cleanup(srv.Close)

		cluster := newTestCluster(nil,
			WithHost("127.0.0.1"),
			WithMaxAttempts(5),
			WithRetryInterval(time.Millisecond),
		)
		port := serverPort(t, srv)
		err := cluster.WaitForApp(t.Context(), "resmgr", port)
		require.Error(t, err)
		assert.EqualValues(t, 5, requests.Load())

		var exhausted *ExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, "resmgr", exhausted.App)
		assert.Equal(t, port, exhausted.Port)
		assert.Equal(t, 5, exhausted.Attempts)
		assert.Contains(t, err.Error(), "resmgr")
		assert.Contains(t, err.Error(), "after 5 attempts")
		assert.Contains(t, err.Error(), "unexpected status")
	})

	t.Run("connection refused is retained as the last error", func(t *testing.T) {
		t.Parallel()
		port, err := FreePort()
		require.NoError(t, err)

		cluster := newTestCluster(nil,
			WithHost("127.0.0.1"),
			WithMaxAttempts(2),
			WithRetryInterval(time.Millisecond),
		)
		waitErr := cluster.WaitForApp(t.Context(), "placement", port)
		var exhausted *ExhaustedError
		require.ErrorAs(t, waitErr, &exhausted)
		require.Error(t, exhausted.Err)
		assert.Contains(t, waitErr.Error(), "placement")
	})

	t.Run("context cancellation aborts the wait", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		t.Cleanup(srv.Close)

		cluster := newTestCluster(nil,
			WithHost("127.0.0.1"),
			WithRetryInterval(50*time.Millisecond),
		)
		ctx, cancel := context.WithTimeout(t.Context(), 120*time.Millisecond)
		defer cancel()

		err := cluster.WaitForApp(ctx, "jobmgr", serverPort(t, srv))
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
