package normalize

import "github.com/jonesrussell/contactscout/internal/domain"

// Candidate normalizes one raw candidate in place: email lowercasing and
// validation, phone extraction, and contact-type classification. It never
// rejects a candidate; unparseable fields are degraded, not discarded.
func Candidate(c *domain.ContactCandidate) {
	if c.Email != "" {
		c.Email, c.EmailValid = Email(c.Email)
	}
	if c.Phone != "" {
		c.Phone = Phone(c.Phone)
	}

	if c.ContactType == "" {
		c.ContactType = classifyType(c)
	}
}

// classifyType decides actual vs generic. An email-only discovery is actual
// unless its local part is a role prefix; role mailboxes with no recovered
// name are generic.
func classifyType(c *domain.ContactCandidate) domain.ContactType {
	if c.Email != "" && IsGenericLocalPart(c.Email) && !c.HasName() {
		return domain.ContactTypeGeneric
	}
	return domain.ContactTypeActual
}
