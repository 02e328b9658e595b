// Package fetch retrieves pages over HTTP with a typed outcome instead of
// exposing transport errors to callers.
package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jonesrussell/contactscout/internal/logger"
)

// Status classifies a fetch outcome.
type Status string

const (
	// StatusSuccess means a 2xx response with a body.
	StatusSuccess Status = "success"
	// StatusHTTPError means the server answered with a non-2xx status.
	StatusHTTPError Status = "http_error"
	// StatusTimeout means the request deadline elapsed.
	StatusTimeout Status = "timeout"
	// StatusNetworkError means the request failed before an HTTP response.
	StatusNetworkError Status = "network_error"
)

const (
	// DefaultTimeout bounds one page fetch.
	DefaultTimeout = 15 * time.Second
	// DefaultUserAgent identifies the crawler to servers.
	DefaultUserAgent = "ContactScout/1.0 (+https://github.com/jonesrussell/contactscout)"

	// maxResponseBodyBytes limits the size of fetched page responses.
	maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

	statusOKLow  = 200
	statusOKHigh = 299
)

// Result is the outcome of fetching one URL.
type Result struct {
	URL        string
	Status     Status
	StatusCode int
	HTML       string
}

// OK reports whether the fetch produced usable HTML.
func (r *Result) OK() bool {
	return r.Status == StatusSuccess
}

// Config configures a Client.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Client fetches pages and caches successful bodies per URL so that repeated
// visits within one discovery run hit the network once.
type Client struct {
	httpClient *http.Client
	userAgent  string
	log        logger.Interface

	mu    sync.RWMutex
	cache map[string]*Result
}

// NewClient creates a fetch client.
func NewClient(cfg Config, log logger.Interface) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		log:        log.WithComponent("fetch"),
		cache:      map[string]*Result{},
	}
}

// Fetch retrieves one URL. It never returns an error for transport or HTTP
// failures; the Result's Status carries the outcome.
func (c *Client) Fetch(ctx context.Context, rawURL string) *Result {
	c.mu.RLock()
	cached, ok := c.cache[rawURL]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	result := c.fetch(ctx, rawURL)

	c.mu.Lock()
	c.cache[rawURL] = result
	c.mu.Unlock()

	return result
}

func (c *Client) fetch(ctx context.Context, rawURL string) *Result {
	result := &Result{URL: rawURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		result.Status = StatusNetworkError
		return result
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Status = classifyError(err)
		c.log.Debug("fetch failed", "url", rawURL, "status", result.Status, "error", err)
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode < statusOKLow || resp.StatusCode > statusOKHigh {
		result.Status = StatusHTTPError
		return result
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		result.Status = classifyError(err)
		return result
	}

	result.Status = StatusSuccess
	result.HTML = string(body)
	c.log.Debug("fetched page",
		"url", rawURL, "bytes", len(body), "duration", time.Since(start))
	return result
}

// classifyError separates deadline expiry from other transport failures.
func classifyError(err error) Status {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return StatusTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return StatusTimeout
	}
	if strings.Contains(err.Error(), "Client.Timeout exceeded") {
		return StatusTimeout
	}
	return StatusNetworkError
}
