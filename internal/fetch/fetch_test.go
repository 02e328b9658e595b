package fetch_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/contactscout/internal/fetch"
	"github.com/jonesrussell/contactscout/internal/logger"
)

func TestClient_Fetch_Success(t *testing.T) {
	t.Parallel()

	var gotUserAgent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent.Store(r.Header.Get("User-Agent"))
		w.Write([]byte("<html><body>staff</body></html>"))
	}))
	defer srv.Close()

	c := fetch.NewClient(fetch.Config{}, logger.NewNoOp())
	result := c.Fetch(t.Context(), srv.URL)

	require.True(t, result.OK())
	assert.Equal(t, fetch.StatusSuccess, result.Status)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "staff")
	assert.Equal(t, fetch.DefaultUserAgent, gotUserAgent.Load())
}

func TestClient_Fetch_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := fetch.NewClient(fetch.Config{}, logger.NewNoOp())
	result := c.Fetch(t.Context(), srv.URL+"/missing")

	assert.False(t, result.OK())
	assert.Equal(t, fetch.StatusHTTPError, result.Status)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Empty(t, result.HTML)
}

func TestClient_Fetch_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("late"))
	}))
	defer srv.Close()

	c := fetch.NewClient(fetch.Config{Timeout: 20 * time.Millisecond}, logger.NewNoOp())
	result := c.Fetch(t.Context(), srv.URL)

	assert.Equal(t, fetch.StatusTimeout, result.Status)
}

func TestClient_Fetch_NetworkError(t *testing.T) {
	t.Parallel()

	c := fetch.NewClient(fetch.Config{Timeout: time.Second}, logger.NewNoOp())
	result := c.Fetch(t.Context(), "http://127.0.0.1:1/unreachable")

	assert.Equal(t, fetch.StatusNetworkError, result.Status)
}

func TestClient_Fetch_CachesByURL(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte("cached"))
	}))
	defer srv.Close()

	c := fetch.NewClient(fetch.Config{}, logger.NewNoOp())
	first := c.Fetch(t.Context(), srv.URL)
	second := c.Fetch(t.Context(), srv.URL)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load())
}
