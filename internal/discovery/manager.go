// Package discovery orchestrates contact discovery per organization: crawl
// the website, extract and score candidates, resolve them into the store,
// and record the outcome on the organization.
package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jonesrussell/contactscout/internal/classify"
	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/fetch"
	"github.com/jonesrussell/contactscout/internal/logger"
	"github.com/jonesrussell/contactscout/internal/normalize"
)

// completedThreshold is the actual-contact count at which an organization's
// discovery is considered complete.
const completedThreshold = 5

// Crawler walks one website and streams its HTML pages.
type Crawler interface {
	Crawl(ctx context.Context, website string, onPage func(pageURL, html string)) (int, error)
}

// Fetcher retrieves a single page directly. It backs up the crawler when a
// crawl produces no pages at all.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) *fetch.Result
}

// Extractor turns one page into contact candidates.
type Extractor interface {
	ExtractPage(html, pageURL string) []domain.ContactCandidate
}

// Classifier scores a job title for relevance.
type Classifier interface {
	Classify(title, department string) classify.Classification
}

// Oracle is the fallback extractor for pages the deterministic extractors
// could not read.
type Oracle interface {
	ExtractContacts(ctx context.Context, pageURL, html string) ([]domain.ContactCandidate, error)
}

// Resolver merges candidates into the canonical store.
type Resolver interface {
	ResolveBatch(ctx context.Context, orgID string, candidates []domain.ContactCandidate) domain.BatchResult
	EnsureGenericContacts(ctx context.Context, org *domain.Organization) (int, error)
}

// OrganizationStore lists discovery targets and records outcomes.
type OrganizationStore interface {
	ListForDiscovery(ctx context.Context, limit int) ([]domain.Organization, error)
	UpdateDiscoveryStatus(ctx context.Context, id, status string) error
}

// ContactCounter reports how many actual contacts an organization has.
type ContactCounter interface {
	CountActual(ctx context.Context, orgID string) (int, error)
}

// Manager runs contact discovery.
type Manager struct {
	crawler    Crawler
	fetcher    Fetcher
	extractor  Extractor
	classifier Classifier
	oracle     Oracle
	resolver   Resolver
	orgs       OrganizationStore
	contacts   ContactCounter
	log        logger.Interface
}

// New creates a discovery manager.
func New(
	siteCrawler Crawler,
	extractor Extractor,
	classifier Classifier,
	oracle Oracle,
	resolver Resolver,
	orgs OrganizationStore,
	contacts ContactCounter,
	log logger.Interface,
) *Manager {
	return &Manager{
		crawler:    siteCrawler,
		extractor:  extractor,
		classifier: classifier,
		oracle:     oracle,
		resolver:   resolver,
		orgs:       orgs,
		contacts:   contacts,
		log:        log.WithComponent("discovery"),
	}
}

// WithFetcher installs a direct page fetcher used when a crawl produces no
// pages. Returns the manager for chaining.
func (m *Manager) WithFetcher(f Fetcher) *Manager {
	m.fetcher = f
	return m
}

// DiscoverAll runs discovery over the next batch of organizations, most
// relevant first. One organization's failure does not stop the rest.
func (m *Manager) DiscoverAll(ctx context.Context, limit int) ([]domain.BatchResult, error) {
	orgs, err := m.orgs.ListForDiscovery(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	results := make([]domain.BatchResult, 0, len(orgs))
	for i := range orgs {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		result, discoverErr := m.Discover(ctx, &orgs[i])
		if discoverErr != nil {
			m.log.Error("discovery failed",
				"org_id", orgs[i].ID, "org", orgs[i].Name, "error", discoverErr)
		}
		results = append(results, result)
	}
	return results, nil
}

// Discover runs contact discovery for one organization and records the
// outcome on its discovery status.
func (m *Manager) Discover(ctx context.Context, org *domain.Organization) (domain.BatchResult, error) {
	log := m.log.With("org_id", org.ID, "org", org.Name)
	log.Info("starting discovery", "website", org.Website)

	result := domain.BatchResult{OrganizationID: org.ID}
	if org.Website == "" {
		if err := m.orgs.UpdateDiscoveryStatus(ctx, org.ID, domain.DiscoveryStatusAttempted); err != nil {
			return result, err
		}
		return result, nil
	}

	candidates, pages, crawlErr := m.collectCandidates(ctx, org)
	result.PagesProcessed = pages
	if crawlErr != nil {
		log.Warn("crawl ended with error", "error", crawlErr)
	}

	batch := m.resolver.ResolveBatch(ctx, org.ID, candidates)
	batch.PagesProcessed = pages
	result = batch

	if _, err := m.resolver.EnsureGenericContacts(ctx, org); err != nil {
		log.Error("generic contact synthesis failed", "error", err)
	}

	status, statusErr := m.discoveryStatus(ctx, org.ID)
	if statusErr != nil {
		return result, statusErr
	}
	if err := m.orgs.UpdateDiscoveryStatus(ctx, org.ID, status); err != nil {
		return result, err
	}

	log.Info("discovery finished",
		"pages", result.PagesProcessed,
		"candidates", result.Candidates,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"status", status)
	return result, crawlErr
}

// collectCandidates crawls the website and accumulates normalized, classified
// candidates from every page.
func (m *Manager) collectCandidates(
	ctx context.Context,
	org *domain.Organization,
) (candidates []domain.ContactCandidate, pages int, err error) {
	var mu sync.Mutex

	pages, err = m.crawler.Crawl(ctx, org.Website, func(pageURL, html string) {
		found := m.processPage(ctx, pageURL, html)

		mu.Lock()
		candidates = append(candidates, found...)
		mu.Unlock()
	})

	if pages == 0 && m.fetcher != nil && ctx.Err() == nil {
		homepage := websiteURL(org.Website)
		result := m.fetcher.Fetch(ctx, homepage)
		if result.OK() {
			candidates = append(candidates, m.processPage(ctx, homepage, result.HTML)...)
			pages = 1
		} else {
			m.log.Warn("homepage fetch failed",
				"url", homepage, "status", string(result.Status), "code", result.StatusCode)
		}
	}

	return candidates, pages, err
}

// processPage runs the extractor chain over one page, consulting the oracle
// only when the deterministic extractors find nothing.
func (m *Manager) processPage(ctx context.Context, pageURL, html string) []domain.ContactCandidate {
	found := m.extractor.ExtractPage(html, pageURL)
	if len(found) == 0 && m.oracle != nil {
		oracleFound, oracleErr := m.oracle.ExtractContacts(ctx, pageURL, html)
		if oracleErr != nil {
			m.log.Warn("oracle extraction failed", "url", pageURL, "error", oracleErr)
		}
		found = oracleFound
	}

	for i := range found {
		m.prepare(&found[i])
	}
	return found
}

// websiteURL ensures the stored website has a scheme.
func websiteURL(website string) string {
	if !strings.Contains(website, "://") {
		return "https://" + website
	}
	return website
}

// prepare normalizes a candidate and fills in its relevance scoring.
func (m *Manager) prepare(c *domain.ContactCandidate) {
	normalize.Candidate(c)
	cls := m.classifier.Classify(c.JobTitle, c.Department)
	c.Relevance = cls.RelevanceScore
	c.IsDecisionMaker = cls.IsDecisionMaker
	c.IsTechnical = cls.IsTechnical
	c.IsInfrastructure = cls.IsInfrastructureRole
}

// discoveryStatus derives the organization's status from how many actual
// contacts it now has.
func (m *Manager) discoveryStatus(ctx context.Context, orgID string) (string, error) {
	count, err := m.contacts.CountActual(ctx, orgID)
	if err != nil {
		return "", fmt.Errorf("failed to count contacts: %w", err)
	}
	switch {
	case count >= completedThreshold:
		return domain.DiscoveryStatusCompleted, nil
	case count > 0:
		return domain.DiscoveryStatusPartial, nil
	default:
		return domain.DiscoveryStatusAttempted, nil
	}
}
