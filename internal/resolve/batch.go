package resolve

import (
	"strings"

	"github.com/jonesrussell/contactscout/internal/domain"
)

// collapseBatch deduplicates candidates within one batch before any store
// lookup happens. Two candidates collapse when they share an email, or when
// they share a name key and the survivor has no conflicting email. The
// higher-confidence candidate wins and absorbs any fields it is missing from
// the loser; first-seen order is preserved so extractor precedence holds on
// confidence ties.
func collapseBatch(candidates []domain.ContactCandidate) []domain.ContactCandidate {
	winners := make([]*domain.ContactCandidate, 0, len(candidates))
	byKey := make(map[string]*domain.ContactCandidate, len(candidates)*2)

	for i := range candidates {
		c := candidates[i]

		var match *domain.ContactCandidate
		for _, key := range batchKeys(&c) {
			found, ok := byKey[key]
			if !ok {
				continue
			}
			// Same name but different emails means different people.
			if strings.HasPrefix(key, "name:") && conflictingEmails(found, &c) {
				continue
			}
			match = found
			break
		}

		if match == nil {
			winners = append(winners, &c)
			for _, key := range batchKeys(&c) {
				byKey[key] = &c
			}
			continue
		}

		mergeCandidate(match, &c)
		// Merging can surface new keys, such as an email arriving on a
		// name-only record.
		for _, key := range batchKeys(match) {
			byKey[key] = match
		}
	}

	out := make([]domain.ContactCandidate, len(winners))
	for i, w := range winners {
		out[i] = *w
	}
	return out
}

func conflictingEmails(a, b *domain.ContactCandidate) bool {
	return a.Email != "" && b.Email != "" &&
		!strings.EqualFold(a.Email, b.Email)
}

// batchKeys returns the identity keys a candidate participates under.
func batchKeys(c *domain.ContactCandidate) []string {
	keys := make([]string, 0, 2)
	if c.Email != "" {
		keys = append(keys, "email:"+strings.ToLower(c.Email))
	}
	if c.HasName() {
		keys = append(keys, "name:"+c.NameKey())
	}
	return keys
}

// mergeCandidate folds other into dst. The higher-confidence side keeps its
// values; empty fields are backfilled from the other side either way.
func mergeCandidate(dst, other *domain.ContactCandidate) {
	if other.RawConfidence > dst.RawConfidence {
		backfill(other, dst)
		*dst = *other
		return
	}
	backfill(dst, other)
}

// backfill copies fields from src into dst where dst is empty.
func backfill(dst, src *domain.ContactCandidate) {
	if dst.FirstName == "" {
		dst.FirstName = src.FirstName
	}
	if dst.LastName == "" {
		dst.LastName = src.LastName
	}
	if dst.JobTitle == "" {
		dst.JobTitle = src.JobTitle
	}
	if dst.Department == "" {
		dst.Department = src.Department
	}
	if dst.Email == "" && src.Email != "" {
		dst.Email = src.Email
		dst.EmailValid = src.EmailValid
	}
	if dst.Phone == "" {
		dst.Phone = src.Phone
	}
	if src.Relevance > dst.Relevance {
		dst.Relevance = src.Relevance
	}
	dst.IsDecisionMaker = dst.IsDecisionMaker || src.IsDecisionMaker
	dst.IsTechnical = dst.IsTechnical || src.IsTechnical
	dst.IsInfrastructure = dst.IsInfrastructure || src.IsInfrastructure
}
