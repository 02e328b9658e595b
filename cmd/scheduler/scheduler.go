// Package scheduler implements the recurring discovery service: discovery
// batches on a cron schedule, with the HTTP API served in-process so run
// results are queryable.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/contactscout/cmd/common"
	"github.com/jonesrussell/contactscout/internal/api"
	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/logger"
)

// shutdownTimeout bounds graceful shutdown of the embedded HTTP server.
const shutdownTimeout = 10 * time.Second

// discoverer runs one discovery batch.
type discoverer interface {
	DiscoverAll(ctx context.Context, limit int) ([]domain.BatchResult, error)
}

// Command returns the scheduler command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run contact discovery on a recurring schedule",
		Long: `Scheduler runs discovery batches on the cron schedule from the
configuration until interrupted, and serves the HTTP API so the latest run
is queryable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, _ := cmd.Flags().GetBool("debug")

			deps, err := common.NewCommandDeps(debug)
			if err != nil {
				return err
			}
			defer deps.Close()

			return run(cmd.Context(), deps)
		},
	}
}

// run schedules discovery batches, serves the API, and blocks until a
// shutdown signal.
func run(ctx context.Context, deps *common.Deps) error {
	log := deps.Logger.WithComponent("scheduler")
	manager := deps.NewDiscoveryManager()
	runs := api.NewRunStore()

	spec := deps.Config.Discovery.Schedule
	batchSize := deps.Config.Discovery.BatchSize

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scheduler := cron.New()
	_, err := scheduler.AddFunc(spec, func() {
		runOnce(ctx, manager, runs, batchSize, log)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	router := api.SetupRouter(deps.Logger, deps.Organizations, deps.Contacts, runs)
	server := api.NewServer(deps.Config.Server.Address, router)

	errChan := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "address", server.Addr)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	scheduler.Start()
	log.Info("scheduler started", "schedule", spec)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case serveErr := <-errChan:
		return fmt.Errorf("server error: %w", serveErr)
	case sig := <-sigChan:
		log.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
	}

	cancel()
	<-scheduler.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		return fmt.Errorf("server shutdown failed: %w", shutdownErr)
	}

	log.Info("scheduler stopped")
	return nil
}

// runOnce runs one discovery batch and publishes the results for the API.
// A failed run that produced no results keeps the previous run visible.
func runOnce(ctx context.Context, d discoverer, runs *api.RunStore, batchSize int, log logger.Interface) {
	log.Info("starting scheduled discovery run", "batch_size", batchSize)

	results, err := d.DiscoverAll(ctx, batchSize)
	if err != nil {
		log.Error("scheduled discovery run failed", "error", err)
		if results == nil {
			return
		}
	}

	runs.SetLatest(results)
	log.Info("scheduled discovery run finished", "organizations", len(results))
}
