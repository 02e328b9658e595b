// Package common provides shared dependency construction for commands.
package common

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/contactscout/internal/classify"
	"github.com/jonesrussell/contactscout/internal/config"
	"github.com/jonesrussell/contactscout/internal/crawler"
	"github.com/jonesrussell/contactscout/internal/discovery"
	"github.com/jonesrussell/contactscout/internal/extract"
	"github.com/jonesrussell/contactscout/internal/fetch"
	"github.com/jonesrussell/contactscout/internal/llm"
	"github.com/jonesrussell/contactscout/internal/logger"
	"github.com/jonesrussell/contactscout/internal/resolve"
	"github.com/jonesrussell/contactscout/internal/store"
)

// Deps holds the shared dependencies every command starts from.
type Deps struct {
	Config *config.Config
	Logger logger.Interface
	DB     *sqlx.DB

	Organizations *store.OrganizationRepository
	Contacts      *store.ContactRepository
}

// NewCommandDeps loads configuration, builds the logger, and connects to the
// database.
func NewCommandDeps(debug bool) (*Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if debug {
		cfg.App.Debug = true
		cfg.Logger.Level = "debug"
	}

	log, err := logger.New(&logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := store.NewPostgresConnection(store.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if schemaErr := store.EnsureSchema(context.Background(), db); schemaErr != nil {
		db.Close()
		return nil, schemaErr
	}

	return &Deps{
		Config:        cfg,
		Logger:        log,
		DB:            db,
		Organizations: store.NewOrganizationRepository(db),
		Contacts:      store.NewContactRepository(db),
	}, nil
}

// Close releases held resources.
func (d *Deps) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}

// NewDiscoveryManager assembles the full discovery pipeline from the deps.
func (d *Deps) NewDiscoveryManager() *discovery.Manager {
	cfg := d.Config

	siteCrawler := crawler.New(crawler.Config{
		MaxDepth:       cfg.Crawler.MaxDepth,
		MaxPages:       cfg.Crawler.MaxPages,
		Parallelism:    cfg.Crawler.Parallelism,
		Delay:          cfg.Crawler.Delay,
		RequestTimeout: cfg.Crawler.RequestTimeout,
		UserAgent:      cfg.Crawler.UserAgent,
		IgnoreRobots:   cfg.Crawler.IgnoreRobots,
	}, d.Logger)

	var oracle discovery.Oracle
	if cfg.LLM.Enabled {
		oracle = llm.NewHTTPOracle(llm.Config{
			Endpoint: cfg.LLM.Endpoint,
			APIKey:   cfg.LLM.APIKey,
			Model:    cfg.LLM.Model,
			Timeout:  cfg.LLM.Timeout,
		}, d.Logger)
	} else {
		oracle = llm.NewDisabled()
	}

	fetcher := fetch.NewClient(fetch.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.Crawler.RequestTimeout,
	}, d.Logger)

	return discovery.New(
		siteCrawler,
		extract.NewPipeline(d.Logger),
		classify.NewDefault(),
		oracle,
		resolve.New(d.Contacts, d.Logger),
		d.Organizations,
		d.Contacts,
		d.Logger,
	).WithFetcher(fetcher)
}
