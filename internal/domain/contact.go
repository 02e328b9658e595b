// Package domain provides domain models used across the application.
package domain

import (
	"strings"
	"time"
)

// Source identifies the extraction strategy that produced a candidate.
type Source string

// Candidate sources, ordered from most to least structured.
const (
	SourceStructuredData Source = "structured_data"
	SourceMicrodata      Source = "microdata"
	SourceVCard          Source = "vcard"
	SourceTable          Source = "table"
	SourceCard           Source = "card"
	SourceDefinitionList Source = "definition_list"
	SourceRegexText      Source = "regex_text"
	SourceLLM            Source = "llm"
)

// ContactType classifies how a canonical contact was established.
type ContactType string

const (
	// ContactTypeActual is a real named individual or personal mailbox found on a page.
	ContactTypeActual ContactType = "actual"
	// ContactTypeGeneric is a role-based or catch-all address with no named individual.
	ContactTypeGeneric ContactType = "generic"
	// ContactTypeInferred is a name/email synthesized from a pattern rather than observed.
	ContactTypeInferred ContactType = "inferred"
)

// ContactCandidate is an unvalidated, unmerged extraction result for a possible contact.
type ContactCandidate struct {
	Source        Source `json:"source"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	JobTitle      string `json:"job_title"`
	Department    string `json:"department"`
	Email         string `json:"email"`
	EmailValid    bool   `json:"email_valid"`
	Phone         string `json:"phone"`
	DiscoveryURL  string `json:"discovery_url"`
	RawConfidence float64 `json:"raw_confidence"`

	// Relevance is filled in by the role classifier before resolution.
	Relevance        float64     `json:"relevance"`
	IsDecisionMaker  bool        `json:"is_decision_maker"`
	IsTechnical      bool        `json:"is_technical"`
	IsInfrastructure bool        `json:"is_infrastructure_role"`
	ContactType      ContactType `json:"contact_type"`
}

// HasName reports whether the candidate carries both name parts.
func (c *ContactCandidate) HasName() bool {
	return c.FirstName != "" && c.LastName != ""
}

// Valid reports whether the candidate is worth resolving.
// A candidate with no name and no email is invalid and must be discarded.
func (c *ContactCandidate) Valid() bool {
	return c.FirstName != "" || c.LastName != "" || c.Email != ""
}

// NameKey returns the case-insensitive (first, last) identity key.
func (c *ContactCandidate) NameKey() string {
	return strings.ToLower(c.FirstName) + "\x00" + strings.ToLower(c.LastName)
}

// CanonicalContact is the persisted, deduplicated representation of one
// real person or role mailbox, owned by exactly one organization.
type CanonicalContact struct {
	ID             string `db:"id" json:"id"`
	OrganizationID string `db:"organization_id" json:"organization_id"`
	FirstName      string `db:"first_name" json:"first_name"`
	LastName       string `db:"last_name" json:"last_name"`
	JobTitle       string `db:"job_title" json:"job_title"`
	Email          string `db:"email" json:"email,omitempty"`
	EmailValid     bool   `db:"email_valid" json:"email_valid"`
	Phone          string `db:"phone" json:"phone,omitempty"`

	DiscoveryMethod string `db:"discovery_method" json:"discovery_method"`
	DiscoveryURL    string `db:"discovery_url" json:"discovery_url"`

	ConfidenceScore float64     `db:"contact_confidence_score" json:"contact_confidence_score"`
	RelevanceScore  float64     `db:"contact_relevance_score" json:"contact_relevance_score"`
	ContactType     ContactType `db:"contact_type" json:"contact_type"`
	Notes           string      `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Patch holds field-level updates for an existing canonical contact.
// Only non-nil fields are applied; Notes is appended, never replaced.
type Patch struct {
	FirstName       *string
	LastName        *string
	JobTitle        *string
	Phone           *string
	Email           *string
	EmailValid      *bool
	DiscoveryMethod *string
	ConfidenceScore *float64
	RelevanceScore  *float64
	AppendNote      string
}

// Empty reports whether the patch changes nothing.
func (p *Patch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.JobTitle == nil &&
		p.Phone == nil && p.Email == nil && p.EmailValid == nil &&
		p.DiscoveryMethod == nil && p.ConfidenceScore == nil &&
		p.RelevanceScore == nil && p.AppendNote == ""
}

// OpKind distinguishes resolver operations.
type OpKind string

const (
	// OpInsert creates a new canonical contact.
	OpInsert OpKind = "insert"
	// OpUpdate patches an existing canonical contact.
	OpUpdate OpKind = "update"
)

// Operation is one resolver output: either an insert of a new contact or a
// patch against an existing one.
type Operation struct {
	Kind    OpKind
	Contact *CanonicalContact // set for inserts
	Target  string            // existing contact id, set for updates
	Patch   *Patch            // set for updates
}

// BatchResult summarizes one organization's resolution batch.
type BatchResult struct {
	OrganizationID string `json:"organization_id"`
	PagesProcessed int    `json:"pages_processed"`
	Candidates     int    `json:"candidates"`
	Inserted       int    `json:"inserted"`
	Updated        int    `json:"updated"`
	Unchanged      int    `json:"unchanged"`
	SkippedInvalid int    `json:"skipped_invalid"`
	FailedPersist  int    `json:"failed_persist"`
}

// Add accumulates another result into this one.
func (r *BatchResult) Add(other BatchResult) {
	r.PagesProcessed += other.PagesProcessed
	r.Candidates += other.Candidates
	r.Inserted += other.Inserted
	r.Updated += other.Updated
	r.Unchanged += other.Unchanged
	r.SkippedInvalid += other.SkippedInvalid
	r.FailedPersist += other.FailedPersist
}
