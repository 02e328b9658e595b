// Package api implements the HTTP API for browsing discovered contacts and
// discovery run results.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/logger"
)

// readHeaderTimeout bounds header reads on the HTTP server.
const readHeaderTimeout = 10 * time.Second

// OrganizationGetter fetches organizations for API responses.
type OrganizationGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
}

// ContactLister fetches an organization's contacts.
type ContactLister interface {
	ListByOrganization(ctx context.Context, orgID string) ([]domain.CanonicalContact, error)
}

// SetupRouter creates and configures the Gin router with all routes.
func SetupRouter(
	log logger.Interface,
	orgs OrganizationGetter,
	contacts ContactLister,
	runs *RunStore,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler := newHandler(orgs, contacts, runs, log)

	v1 := router.Group("/api/v1")
	v1.GET("/organizations/:id", handler.getOrganization)
	v1.GET("/organizations/:id/contacts", handler.listContacts)
	v1.GET("/runs/latest", handler.latestRun)

	return router
}

// NewServer wraps the router in an http.Server.
func NewServer(addr string, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// loggingMiddleware logs each request with latency and status.
func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("HTTP Request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// corsMiddleware adds CORS headers to allow frontend access.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
