package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/normalize"
)

// nearbyNameWindow is how far around a text-scanned email to look for a name.
const nearbyNameWindow = 120

// roleMailboxRe matches role-based local parts that the generic extractor
// skips while real candidates are still being sought.
var roleMailboxRe = regexp.MustCompile(`^(info|contact|general|admin|webmaster)@`)

// titleAfterNameRe captures "Firstname Lastname, Job Title" shaped text.
var titleAfterNameRe = regexp.MustCompile(`[A-Z][a-z]+ [A-Z][a-z]+[,:\s]+([^,\n]+?)(?:,|\n|$)`)

// GenericExtractor is the regex fallback: it scans the whole page for
// email-shaped tokens and reconstructs a candidate around each one.
type GenericExtractor struct{}

// NewGenericExtractor creates a generic/regex extractor.
func NewGenericExtractor() *GenericExtractor {
	return &GenericExtractor{}
}

// Name identifies the extractor in logs.
func (e *GenericExtractor) Name() string { return "generic" }

// Extract returns one candidate per non-role email found on the page.
func (e *GenericExtractor) Extract(doc *goquery.Document, pageURL string) []domain.ContactCandidate {
	var candidates []domain.ContactCandidate
	seen := map[string]bool{}

	// mailto links first: each link carries its own address, while the parent
	// block gives the best name/title context.
	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, link *goquery.Selection) {
		email := hrefEmail(link)
		if email == "" || seen[strings.ToLower(email)] {
			return
		}
		if roleMailboxRe.MatchString(strings.ToLower(email)) {
			return
		}
		seen[strings.ToLower(email)] = true
		candidates = append(candidates, e.buildCandidate(email, link.Parent().Text(), pageURL))
	})

	// Then bare email tokens in the page text.
	pageText := doc.Find("body").Text()
	for _, loc := range emailTokenRe.FindAllStringIndex(pageText, -1) {
		email := pageText[loc[0]:loc[1]]
		key := strings.ToLower(email)
		if seen[key] || roleMailboxRe.MatchString(key) {
			continue
		}
		seen[key] = true
		candidates = append(candidates, e.buildCandidate(email, textWindow(pageText, loc, nearbyNameWindow), pageURL))
	}

	return candidates
}

// RoleMailboxes returns the role-based addresses on the page as generic
// candidates. Called only when a page yielded no other candidates.
func (e *GenericExtractor) RoleMailboxes(doc *goquery.Document, pageURL string) []domain.ContactCandidate {
	var candidates []domain.ContactCandidate
	seen := map[string]bool{}

	collect := func(email string) {
		key := strings.ToLower(email)
		if email == "" || seen[key] || !roleMailboxRe.MatchString(key) {
			return
		}
		seen[key] = true
		candidates = append(candidates, domain.ContactCandidate{
			Source:        domain.SourceRegexText,
			Email:         email,
			DiscoveryURL:  pageURL,
			RawConfidence: ConfidenceRoleMailbox,
			ContactType:   domain.ContactTypeGeneric,
		})
	}

	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, link *goquery.Selection) {
		collect(hrefEmail(link))
	})
	for _, email := range emailTokenRe.FindAllString(doc.Find("body").Text(), -1) {
		collect(email)
	}

	return candidates
}

// buildCandidate reconstructs a candidate around one email using the
// surrounding text for name, title, and phone.
func (e *GenericExtractor) buildCandidate(email, context, pageURL string) domain.ContactCandidate {
	candidate := domain.ContactCandidate{
		Source:        domain.SourceRegexText,
		Email:         email,
		DiscoveryURL:  pageURL,
		RawConfidence: ConfidenceGenericGuess,
		Phone:         firstPhoneIn(context),
	}

	if fullName := firstNameIn(context); fullName != "" {
		if first, last, ok := normalize.SplitName(fullName); ok {
			candidate.FirstName = first
			candidate.LastName = last
			candidate.RawConfidence = ConfidenceGenericNamed
		}
	}
	if !candidate.HasName() {
		// Placeholder name from the email local part; single-segment local
		// parts stay nameless, which is still a valid email-only candidate.
		if first, last, ok := normalize.NameFromEmail(email); ok {
			candidate.FirstName = first
			candidate.LastName = last
			candidate.ContactType = domain.ContactTypeInferred
		}
	}

	if m := titleAfterNameRe.FindStringSubmatch(context); m != nil {
		candidate.JobTitle = collapseSpace(m[1])
	}

	return candidate
}

// textWindow returns the text surrounding match location loc, clamped to the
// string bounds.
func textWindow(text string, loc []int, window int) string {
	start := loc[0] - window
	if start < 0 {
		start = 0
	}
	end := loc[1] + window
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}
