package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/contactscout/internal/domain"
)

// ErrOrganizationNotFound is returned when an organization id does not exist.
// Callers should check with errors.Is().
var ErrOrganizationNotFound = errors.New("organization not found")

// DefaultDiscoveryBatchSize bounds one discovery run when no limit is given.
const DefaultDiscoveryBatchSize = 50

// organizationSelectColumns lists columns for SELECT queries on organizations.
const organizationSelectColumns = `id, name, state, city, website, org_type,
	relevance_score, contact_discovery_status, last_contact_discovery,
	created_at, updated_at`

// OrganizationRepository handles database operations for organizations.
type OrganizationRepository struct {
	db *sqlx.DB
}

// NewOrganizationRepository creates a new organization repository.
func NewOrganizationRepository(db *sqlx.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// GetByID fetches one organization.
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	query := `
		SELECT ` + organizationSelectColumns + `
		FROM organizations
		WHERE id = $1
	`

	var org domain.Organization
	err := r.db.GetContext(ctx, &org, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

// ListForDiscovery returns organizations that have a website and have not
// completed contact discovery, most relevant first. A limit of 0 applies
// DefaultDiscoveryBatchSize.
func (r *OrganizationRepository) ListForDiscovery(ctx context.Context, limit int) ([]domain.Organization, error) {
	if limit <= 0 {
		limit = DefaultDiscoveryBatchSize
	}

	query := `
		SELECT ` + organizationSelectColumns + `
		FROM organizations
		WHERE website <> ''
		  AND contact_discovery_status IN ($1, $2)
		ORDER BY relevance_score DESC, name ASC
		LIMIT $3
	`

	orgs := []domain.Organization{}
	err := r.db.SelectContext(ctx, &orgs, query,
		domain.DiscoveryStatusPending, domain.DiscoveryStatusAttempted, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations for discovery: %w", err)
	}
	return orgs, nil
}

// UpdateDiscoveryStatus records the outcome of a discovery run and stamps the
// attempt time.
func (r *OrganizationRepository) UpdateDiscoveryStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE organizations
		SET contact_discovery_status = $1,
		    last_contact_discovery = NOW(),
		    updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, status, id)
	return execRequireRows(result, err, ErrOrganizationNotFound)
}

// Insert stores a new organization.
func (r *OrganizationRepository) Insert(ctx context.Context, org *domain.Organization) error {
	query := `
		INSERT INTO organizations (
			id, name, state, city, website, org_type,
			relevance_score, contact_discovery_status
		) VALUES (
			:id, :name, :state, :city, :website, :org_type,
			:relevance_score, :contact_discovery_status
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, org); err != nil {
		return fmt.Errorf("failed to insert organization: %w", err)
	}
	return nil
}

// Delete removes an organization; its contacts cascade.
func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	return execRequireRows(result, err, ErrOrganizationNotFound)
}
