// Package resolve implements identity resolution for contact candidates:
// in-batch deduplication, lookup against the canonical store, and
// insert-or-patch merge operations with idempotent semantics.
package resolve

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/logger"
)

// Generic-contact synthesis defaults.
const (
	genericInfoRelevance       = 6.0
	genericOperationsRelevance = 7.0
	genericConfidence          = 0.5
	genericDiscoveryMethod     = "generic_role_contact"
	genericNote                = "Generic role-based contact (no specific individual identified)"
)

// unknownDiscoveryMethod marks provenance that may be overwritten by a patch.
const unknownDiscoveryMethod = "unknown"

// Store is the persistence contract the resolver needs. All four calls are
// safe to repeat with identical arguments: reads are idempotent and updates
// are patch-merges, not replacements. Lookups return nil (not an error) when
// nothing matches.
type Store interface {
	// FindByEmail searches the whole store; an email identifies a person
	// across organizations.
	FindByEmail(ctx context.Context, email string) (*domain.CanonicalContact, error)
	// FindByName searches within one organization, case-insensitively.
	FindByName(ctx context.Context, orgID, first, last string) (*domain.CanonicalContact, error)
	Insert(ctx context.Context, contact *domain.CanonicalContact) error
	Update(ctx context.Context, id string, patch *domain.Patch) error
	// CountActual counts contacts of type actual for an organization.
	CountActual(ctx context.Context, orgID string) (int, error)
}

// Resolver resolves candidate batches against the canonical store.
type Resolver struct {
	store Store
	log   logger.Interface
}

// New creates a resolver.
func New(store Store, log logger.Interface) *Resolver {
	return &Resolver{
		store: store,
		log:   log.WithComponent("resolve"),
	}
}

// ResolveBatch resolves one organization's candidate batch. Candidates must
// already be normalized and classified, and must arrive in extractor order so
// higher-confidence sources win conflicts. Invalid candidates (no name and no
// email) are counted and discarded; persistence failures are retried once and
// then counted, never aborting the rest of the batch.
func (r *Resolver) ResolveBatch(
	ctx context.Context,
	orgID string,
	candidates []domain.ContactCandidate,
) domain.BatchResult {
	result := domain.BatchResult{OrganizationID: orgID, Candidates: len(candidates)}

	valid := make([]domain.ContactCandidate, 0, len(candidates))
	for i := range candidates {
		if !candidates[i].Valid() {
			result.SkippedInvalid++
			continue
		}
		valid = append(valid, candidates[i])
	}

	for _, c := range collapseBatch(valid) {
		if err := ctx.Err(); err != nil {
			// Cancellation between candidates leaves the store consistent;
			// every applied operation stands on its own.
			r.log.Info("batch aborted", "org_id", orgID, "error", err)
			return result
		}
		r.resolveOne(ctx, orgID, c, &result)
	}

	return result
}

// resolveOne resolves a single candidate and applies the resulting operation.
func (r *Resolver) resolveOne(
	ctx context.Context,
	orgID string,
	c domain.ContactCandidate,
	result *domain.BatchResult,
) {
	op, err := r.planOperation(ctx, orgID, &c)
	if err != nil {
		r.log.Error("candidate lookup failed",
			"org_id", orgID, "email", c.Email, "error", err)
		result.FailedPersist++
		return
	}
	if op == nil {
		// Resolved to an existing record that already has everything the
		// candidate offers; no store write happens.
		result.Unchanged++
		return
	}

	if err := r.applyWithRetry(ctx, op); err != nil {
		r.log.Error("operation failed after retry",
			"org_id", orgID, "kind", op.Kind, "error", err)
		result.FailedPersist++
		return
	}

	switch op.Kind {
	case domain.OpInsert:
		result.Inserted++
	case domain.OpUpdate:
		result.Updated++
	}
}

// planOperation decides insert vs update for one candidate. It returns a nil
// operation when the candidate matched an existing record and the resulting
// patch would change nothing.
func (r *Resolver) planOperation(
	ctx context.Context,
	orgID string,
	c *domain.ContactCandidate,
) (*domain.Operation, error) {
	// Email identity first, checked organization-wide.
	if c.Email != "" {
		existing, err := r.store.FindByEmail(ctx, c.Email)
		if err != nil {
			return nil, fmt.Errorf("find by email: %w", err)
		}
		if existing != nil {
			return updateOp(existing, c, orgID), nil
		}
	}

	// Name identity second, scoped to the organization. A name hit whose
	// record carries a different email is a different person.
	if c.HasName() {
		existing, err := r.store.FindByName(ctx, orgID, c.FirstName, c.LastName)
		if err != nil {
			return nil, fmt.Errorf("find by name: %w", err)
		}
		if existing != nil && !emailMismatch(existing.Email, c.Email) {
			return updateOp(existing, c, orgID), nil
		}
	}

	return &domain.Operation{
		Kind:    domain.OpInsert,
		Contact: newContact(orgID, c),
	}, nil
}

// applyWithRetry applies an operation, retrying once on failure.
func (r *Resolver) applyWithRetry(ctx context.Context, op *domain.Operation) error {
	err := r.apply(ctx, op)
	if err == nil {
		return nil
	}
	r.log.Warn("operation failed, retrying", "kind", op.Kind, "error", err)
	return r.apply(ctx, op)
}

func (r *Resolver) apply(ctx context.Context, op *domain.Operation) error {
	switch op.Kind {
	case domain.OpInsert:
		return r.store.Insert(ctx, op.Contact)
	case domain.OpUpdate:
		return r.store.Update(ctx, op.Target, op.Patch)
	default:
		return fmt.Errorf("unknown operation kind: %s", op.Kind)
	}
}

// EnsureGenericContacts synthesizes role-mailbox contacts for an organization
// that finished discovery with zero actual contacts and a known website:
// always info@domain, plus operations@domain for water/utility organizations.
// Synthesized contacts are skipped when the mailbox already exists. Returns
// the number of contacts inserted.
func (r *Resolver) EnsureGenericContacts(ctx context.Context, org *domain.Organization) (int, error) {
	if org.Website == "" {
		return 0, nil
	}

	actual, err := r.store.CountActual(ctx, org.ID)
	if err != nil {
		return 0, fmt.Errorf("count actual contacts: %w", err)
	}
	if actual > 0 {
		return 0, nil
	}

	host := hostFromURL(org.Website)
	if host == "" {
		return 0, nil
	}

	mailboxes := []struct {
		email     string
		relevance float64
	}{
		{"info@" + host, genericInfoRelevance},
	}
	if org.IsWaterUtility() {
		mailboxes = append(mailboxes, struct {
			email     string
			relevance float64
		}{"operations@" + host, genericOperationsRelevance})
	}

	inserted := 0
	for _, mb := range mailboxes {
		existing, findErr := r.store.FindByEmail(ctx, mb.email)
		if findErr != nil {
			return inserted, fmt.Errorf("find generic mailbox: %w", findErr)
		}
		if existing != nil {
			continue
		}

		contact := &domain.CanonicalContact{
			ID:              uuid.New().String(),
			OrganizationID:  org.ID,
			Email:           mb.email,
			EmailValid:      true,
			DiscoveryMethod: genericDiscoveryMethod,
			DiscoveryURL:    org.Website,
			ConfidenceScore: genericConfidence,
			RelevanceScore:  mb.relevance,
			ContactType:     domain.ContactTypeGeneric,
			Notes:           genericNote,
		}
		if insertErr := r.store.Insert(ctx, contact); insertErr != nil {
			return inserted, fmt.Errorf("insert generic mailbox: %w", insertErr)
		}
		inserted++
	}

	return inserted, nil
}

// newContact builds a canonical contact from a resolved candidate.
func newContact(orgID string, c *domain.ContactCandidate) *domain.CanonicalContact {
	contactType := c.ContactType
	if contactType == "" {
		contactType = domain.ContactTypeActual
	}

	return &domain.CanonicalContact{
		ID:              uuid.New().String(),
		OrganizationID:  orgID,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		JobTitle:        c.JobTitle,
		Email:           c.Email,
		EmailValid:      c.EmailValid,
		Phone:           c.Phone,
		DiscoveryMethod: string(c.Source),
		DiscoveryURL:    c.DiscoveryURL,
		ConfidenceScore: c.RawConfidence,
		RelevanceScore:  c.Relevance,
		ContactType:     contactType,
	}
}

// updateOp builds a patch-only-if-empty update against an existing record.
// Returns nil when the patch would change nothing.
func updateOp(existing *domain.CanonicalContact, c *domain.ContactCandidate, orgID string) *domain.Operation {
	patch := &domain.Patch{}

	if existing.FirstName == "" && c.FirstName != "" {
		patch.FirstName = &c.FirstName
	}
	if existing.LastName == "" && c.LastName != "" {
		patch.LastName = &c.LastName
	}
	if existing.JobTitle == "" && c.JobTitle != "" {
		patch.JobTitle = &c.JobTitle
	}
	if existing.Phone == "" && c.Phone != "" {
		patch.Phone = &c.Phone
	}
	if existing.Email == "" && c.Email != "" {
		patch.Email = &c.Email
		patch.EmailValid = &c.EmailValid
	}
	if existing.DiscoveryMethod == "" || existing.DiscoveryMethod == unknownDiscoveryMethod {
		method := string(c.Source)
		patch.DiscoveryMethod = &method
	}

	// Scores only ever go up.
	if c.Relevance > existing.RelevanceScore {
		patch.RelevanceScore = &c.Relevance
	}
	if c.RawConfidence > existing.ConfidenceScore {
		patch.ConfidenceScore = &c.RawConfidence
	}

	// A contact discovered under a second organization stays where it is;
	// the additional affiliation is recorded once, not moved.
	if existing.OrganizationID != orgID {
		marker := fmt.Sprintf("Also associated with organization %s", orgID)
		if !strings.Contains(existing.Notes, marker) {
			patch.AppendNote = fmt.Sprintf("%s (seen at %s)", marker, c.DiscoveryURL)
		}
	}

	if patch.Empty() {
		return nil
	}
	return &domain.Operation{
		Kind:   domain.OpUpdate,
		Target: existing.ID,
		Patch:  patch,
	}
}

func emailMismatch(a, b string) bool {
	return a != "" && b != "" && !strings.EqualFold(a, b)
}

// hostFromURL extracts the bare host from a website URL, stripping any
// leading www.
func hostFromURL(website string) string {
	raw := website
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
