// Package crawler walks an organization's website looking for pages likely to
// list staff, probing well-known directory paths and following links whose
// text or target suggests a people page.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	colly "github.com/gocolly/colly/v2"

	"github.com/jonesrussell/contactscout/internal/logger"
)

// Collector defaults.
const (
	defaultMaxDepth       = 2
	defaultMaxPages       = 25
	defaultParallelism    = 2
	defaultDelay          = 1 * time.Second
	defaultRequestTimeout = 15 * time.Second

	// RandomDelayDivisor is used to calculate random delay from the delay.
	RandomDelayDivisor = 2
)

// directoryPaths are probed directly off the site root before link following
// begins; municipal and district sites put staff listings at a small set of
// conventional locations.
var directoryPaths = []string{
	"/staff-directory",
	"/directory",
	"/staff",
	"/employees",
	"/departments",
	"/about/staff",
	"/about/directory",
	"/contact-us",
	"/contact",
	"/about/contact",
	"/government/directory",
	"/government/departments",
	"/government/staff",
	"/city-government/departments",
	"/city-hall/departments",
	"/town-hall/departments",
	"/officials",
	"/elected-officials",
	"/administration",
	"/personnel",
	"/team",
	"/about/team",
	"/city-council",
	"/mayor-council",
	"/management",
	"/leadership",
}

// staffLinkKeywords mark a link as worth following when they appear in its
// href or anchor text.
var staffLinkKeywords = []string{
	"staff", "directory", "contact", "team", "departments",
	"officials", "personnel", "about", "leadership",
}

// Config configures a SiteCrawler.
type Config struct {
	MaxDepth       int
	MaxPages       int
	Parallelism    int
	Delay          time.Duration
	RequestTimeout time.Duration
	UserAgent      string
	IgnoreRobots   bool
}

// withDefaults fills unset fields.
func (cfg Config) withDefaults() Config {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = defaultMaxDepth
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = defaultParallelism
	}
	if cfg.Delay <= 0 {
		cfg.Delay = defaultDelay
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	return cfg
}

// SiteCrawler crawls one website per Crawl call. It is safe for concurrent
// use; each call builds its own collector.
type SiteCrawler struct {
	cfg Config
	log logger.Interface
}

// New creates a site crawler.
func New(cfg Config, log logger.Interface) *SiteCrawler {
	return &SiteCrawler{
		cfg: cfg.withDefaults(),
		log: log.WithComponent("crawler"),
	}
}

// Crawl visits the website's root, probes the conventional directory paths,
// and follows staff-looking links up to the configured depth and page count.
// Each HTML page is handed to onPage as it arrives. Returns the number of
// pages processed.
func (c *SiteCrawler) Crawl(ctx context.Context, website string, onPage func(pageURL, html string)) (int, error) {
	base, err := normalizeBase(website)
	if err != nil {
		return 0, fmt.Errorf("invalid website %q: %w", website, err)
	}

	collector, err := c.newCollector(ctx, base)
	if err != nil {
		return 0, err
	}

	var (
		mu    sync.Mutex
		pages int
	)

	collector.OnRequest(func(r *colly.Request) {
		mu.Lock()
		full := pages >= c.cfg.MaxPages
		mu.Unlock()
		if full || ctx.Err() != nil {
			r.Abort()
		}
	})

	collector.OnResponseHeaders(func(r *colly.Response) {
		contentType := strings.ToLower(r.Headers.Get("Content-Type"))
		if contentType != "" && !strings.Contains(contentType, "html") {
			r.Request.Abort()
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		mu.Lock()
		if pages >= c.cfg.MaxPages {
			mu.Unlock()
			return
		}
		pages++
		mu.Unlock()

		pageURL := r.Request.URL.String()
		c.log.Debug("page fetched", "url", pageURL, "bytes", len(r.Body))
		onPage(pageURL, string(r.Body))
	})

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if ctx.Err() != nil {
			return
		}
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" || !sameSite(base, link) || !c.shouldFollow(link, e.Text) {
			return
		}
		// Expected errors (already visited, max depth, off-domain) are
		// surfaced through OnError.
		_ = e.Request.Visit(link)
	})

	collector.OnError(func(r *colly.Response, visitErr error) {
		if isExpectedCrawlError(visitErr) {
			return
		}
		c.log.Debug("page fetch failed",
			"url", r.Request.URL.String(),
			"status", r.StatusCode,
			"error", visitErr)
	})

	if visitErr := collector.Visit(base.String()); visitErr != nil && !isExpectedCrawlError(visitErr) {
		c.log.Warn("root page visit failed", "url", base.String(), "error", visitErr)
	}
	for _, path := range directoryPaths {
		_ = collector.Visit(base.String() + path)
	}

	collector.Wait()

	mu.Lock()
	defer mu.Unlock()
	return pages, ctx.Err()
}

// newCollector builds a collector restricted to the website's domain.
func (c *SiteCrawler) newCollector(ctx context.Context, base *url.URL) (*colly.Collector, error) {
	host := base.Hostname()
	domains := []string{host}
	if stripped := strings.TrimPrefix(host, "www."); stripped != host {
		domains = append(domains, stripped)
	} else {
		domains = append(domains, "www."+host)
	}

	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.MaxDepth(c.cfg.MaxDepth),
		colly.Async(true),
		colly.AllowedDomains(domains...),
	}
	if c.cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(c.cfg.UserAgent))
	}
	if c.cfg.IgnoreRobots {
		opts = append(opts, colly.IgnoreRobotsTxt())
	}

	collector := colly.NewCollector(opts...)
	collector.SetRequestTimeout(c.cfg.RequestTimeout)
	collector.WithTransport(&http.Transport{DisableKeepAlives: false})

	limitErr := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       c.cfg.Delay,
		RandomDelay: c.cfg.Delay / RandomDelayDivisor,
		Parallelism: c.cfg.Parallelism,
	})
	if limitErr != nil {
		return nil, fmt.Errorf("failed to set rate limit: %w", limitErr)
	}

	return collector, nil
}

// shouldFollow reports whether a link looks like it leads to a people page.
func (c *SiteCrawler) shouldFollow(link, text string) bool {
	haystack := strings.ToLower(link) + " " + strings.ToLower(text)
	for _, keyword := range staffLinkKeywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

// sameSite reports whether link points at the crawled site. Host comparison
// includes the port; AllowedDomains only matches hostnames.
func sameSite(base *url.URL, link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	baseHost := strings.ToLower(base.Host)
	return host == baseHost ||
		host == "www."+baseHost || "www."+host == baseHost
}

// isExpectedCrawlError returns true for errors that are part of normal
// collector operation rather than fetch failures.
func isExpectedCrawlError(visitErr error) bool {
	var alreadyVisited *colly.AlreadyVisitedError
	return errors.As(visitErr, &alreadyVisited) ||
		errors.Is(visitErr, colly.ErrMaxDepth) ||
		errors.Is(visitErr, colly.ErrForbiddenDomain) ||
		errors.Is(visitErr, colly.ErrRobotsTxtBlocked)
}

// normalizeBase parses a website into a scheme+host base URL.
func normalizeBase(website string) (*url.URL, error) {
	raw := strings.TrimRight(website, "/")
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, errors.New("missing host")
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}
