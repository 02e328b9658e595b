package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/contactscout/internal/domain"
)

// ErrContactNotFound is returned when an update targets a missing contact.
// Callers should check with errors.Is().
var ErrContactNotFound = errors.New("contact not found")

// contactSelectColumns lists columns for SELECT queries on contacts.
const contactSelectColumns = `id, organization_id, first_name, last_name, job_title,
	email, email_valid, phone, discovery_method, discovery_url,
	contact_confidence_score, contact_relevance_score, contact_type, notes,
	created_at, updated_at`

// ContactRepository handles database operations for canonical contacts.
type ContactRepository struct {
	db *sqlx.DB
}

// NewContactRepository creates a new contact repository.
func NewContactRepository(db *sqlx.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// FindByEmail looks a contact up by email across all organizations.
// Returns (nil, nil) when no contact matches.
func (r *ContactRepository) FindByEmail(ctx context.Context, email string) (*domain.CanonicalContact, error) {
	query := `
		SELECT ` + contactSelectColumns + `
		FROM contacts
		WHERE email <> '' AND LOWER(email) = LOWER($1)
	`

	var contact domain.CanonicalContact
	err := r.db.GetContext(ctx, &contact, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contact by email: %w", err)
	}
	return &contact, nil
}

// FindByName looks a contact up by first and last name within one
// organization, case-insensitively. Returns (nil, nil) when no contact
// matches.
func (r *ContactRepository) FindByName(ctx context.Context, orgID, first, last string) (*domain.CanonicalContact, error) {
	query := `
		SELECT ` + contactSelectColumns + `
		FROM contacts
		WHERE organization_id = $1
		  AND LOWER(first_name) = LOWER($2)
		  AND LOWER(last_name) = LOWER($3)
		ORDER BY contact_confidence_score DESC
		LIMIT 1
	`

	var contact domain.CanonicalContact
	err := r.db.GetContext(ctx, &contact, query, orgID, first, last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contact by name: %w", err)
	}
	return &contact, nil
}

// Insert stores a new canonical contact.
func (r *ContactRepository) Insert(ctx context.Context, contact *domain.CanonicalContact) error {
	query := `
		INSERT INTO contacts (
			id, organization_id, first_name, last_name, job_title,
			email, email_valid, phone, discovery_method, discovery_url,
			contact_confidence_score, contact_relevance_score, contact_type, notes
		) VALUES (
			:id, :organization_id, :first_name, :last_name, :job_title,
			:email, :email_valid, :phone, :discovery_method, :discovery_url,
			:contact_confidence_score, :contact_relevance_score, :contact_type, :notes
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, contact); err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// Update applies a field patch to an existing contact. Non-nil patch fields
// overwrite; AppendNote is concatenated onto the existing notes. Returns
// ErrContactNotFound when the id does not exist.
func (r *ContactRepository) Update(ctx context.Context, id string, patch *domain.Patch) error {
	sets, args := buildPatchSets(patch)
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE contacts SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(sets, ", "), len(args),
	)

	result, err := r.db.ExecContext(ctx, query, args...)
	return execRequireRows(result, err, ErrContactNotFound)
}

// CountActual counts contacts of type actual for an organization.
func (r *ContactRepository) CountActual(ctx context.Context, orgID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM contacts
		WHERE organization_id = $1 AND contact_type = $2
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, orgID, domain.ContactTypeActual); err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return count, nil
}

// ListByOrganization returns an organization's contacts, most relevant first.
func (r *ContactRepository) ListByOrganization(ctx context.Context, orgID string) ([]domain.CanonicalContact, error) {
	query := `
		SELECT ` + contactSelectColumns + `
		FROM contacts
		WHERE organization_id = $1
		ORDER BY contact_relevance_score DESC, contact_confidence_score DESC, last_name ASC
	`

	contacts := []domain.CanonicalContact{}
	if err := r.db.SelectContext(ctx, &contacts, query, orgID); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// buildPatchSets converts a patch into SET clauses and positional args.
func buildPatchSets(patch *domain.Patch) (sets []string, args []any) {
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.FirstName != nil {
		add("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		add("last_name", *patch.LastName)
	}
	if patch.JobTitle != nil {
		add("job_title", *patch.JobTitle)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.EmailValid != nil {
		add("email_valid", *patch.EmailValid)
	}
	if patch.DiscoveryMethod != nil {
		add("discovery_method", *patch.DiscoveryMethod)
	}
	if patch.ConfidenceScore != nil {
		add("contact_confidence_score", *patch.ConfidenceScore)
	}
	if patch.RelevanceScore != nil {
		add("contact_relevance_score", *patch.RelevanceScore)
	}
	if patch.AppendNote != "" {
		args = append(args, patch.AppendNote)
		idx := strconv.Itoa(len(args))
		sets = append(sets,
			"notes = CASE WHEN notes = '' THEN $"+idx+" ELSE notes || '; ' || $"+idx+" END")
	}

	return sets, args
}
