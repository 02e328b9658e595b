package api

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/logger"
	"github.com/jonesrussell/contactscout/internal/store"
)

// RunStore keeps the most recent discovery run in memory for the API.
type RunStore struct {
	mu       sync.RWMutex
	results  []domain.BatchResult
	finished time.Time
}

// NewRunStore creates an empty run store.
func NewRunStore() *RunStore {
	return &RunStore{}
}

// SetLatest replaces the stored run.
func (s *RunStore) SetLatest(results []domain.BatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	s.finished = time.Now()
}

// Latest returns the stored run and when it finished. The bool is false when
// no run has completed yet.
func (s *RunStore) Latest() ([]domain.BatchResult, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.results == nil {
		return nil, time.Time{}, false
	}
	return s.results, s.finished, true
}

// handler serves the v1 routes.
type handler struct {
	orgs     OrganizationGetter
	contacts ContactLister
	runs     *RunStore
	log      logger.Interface
}

func newHandler(orgs OrganizationGetter, contacts ContactLister, runs *RunStore, log logger.Interface) *handler {
	return &handler{
		orgs:     orgs,
		contacts: contacts,
		runs:     runs,
		log:      log.WithComponent("api"),
	}
}

// getOrganization handles GET /api/v1/organizations/:id.
func (h *handler) getOrganization(c *gin.Context) {
	org, err := h.orgs.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrOrganizationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
		return
	}
	if err != nil {
		h.log.Error("failed to load organization", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, org)
}

// listContacts handles GET /api/v1/organizations/:id/contacts.
func (h *handler) listContacts(c *gin.Context) {
	orgID := c.Param("id")
	if _, err := h.orgs.GetByID(c.Request.Context(), orgID); err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
			return
		}
		h.log.Error("failed to load organization", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	contacts, err := h.contacts.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.log.Error("failed to list contacts", "org_id", orgID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organization_id": orgID,
		"contacts":        contacts,
	})
}

// latestRun handles GET /api/v1/runs/latest.
func (h *handler) latestRun(c *gin.Context) {
	results, finished, ok := h.runs.Latest()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"finished_at": finished,
		"results":     results,
	})
}
