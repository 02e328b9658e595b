package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/contactscout/internal/api"
	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/logger"
)

type fakeDiscoverer struct {
	results []domain.BatchResult
	err     error
	calls   int
}

func (f *fakeDiscoverer) DiscoverAll(context.Context, int) ([]domain.BatchResult, error) {
	f.calls++
	return f.results, f.err
}

func TestRunOnce_PublishesResults(t *testing.T) {
	t.Parallel()

	runs := api.NewRunStore()
	d := &fakeDiscoverer{results: []domain.BatchResult{
		{OrganizationID: "org-1", Inserted: 3},
	}}

	runOnce(t.Context(), d, runs, 10, logger.NewNoOp())

	results, _, ok := runs.Latest()
	require.True(t, ok, "a completed run must be queryable")
	require.Len(t, results, 1)
	assert.Equal(t, "org-1", results[0].OrganizationID)
	assert.Equal(t, 1, d.calls)
}

func TestRunOnce_FailedRunKeepsPreviousResults(t *testing.T) {
	t.Parallel()

	runs := api.NewRunStore()
	runs.SetLatest([]domain.BatchResult{{OrganizationID: "org-1"}})

	d := &fakeDiscoverer{err: errors.New("database offline")}
	runOnce(t.Context(), d, runs, 10, logger.NewNoOp())

	results, _, ok := runs.Latest()
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, "org-1", results[0].OrganizationID)
}

func TestRunOnce_PartialResultsStillPublished(t *testing.T) {
	t.Parallel()

	runs := api.NewRunStore()
	d := &fakeDiscoverer{
		results: []domain.BatchResult{{OrganizationID: "org-1"}},
		err:     context.Canceled,
	}

	runOnce(t.Context(), d, runs, 10, logger.NewNoOp())

	results, _, ok := runs.Latest()
	require.True(t, ok)
	assert.Len(t, results, 1)
}
