package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/normalize"
)

// Term length bounds for a dt to be treated as a candidate name.
const (
	minTermLength = 4
	maxTermLength = 40
)

// DefListExtractor pairs definition-list terms (candidate names) with their
// following definitions (title/contact blocks).
type DefListExtractor struct{}

// NewDefListExtractor creates a definition-list extractor.
func NewDefListExtractor() *DefListExtractor {
	return &DefListExtractor{}
}

// Name identifies the extractor in logs.
func (e *DefListExtractor) Name() string { return "deflist" }

// Extract returns one candidate per dt/dd pair with a parseable name.
func (e *DefListExtractor) Extract(doc *goquery.Document, pageURL string) []domain.ContactCandidate {
	var candidates []domain.ContactCandidate

	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		dl.Find("dt").Each(func(_ int, dt *goquery.Selection) {
			term := collapseSpace(dt.Text())
			if len(term) < minTermLength || len(term) > maxTermLength {
				return
			}

			first, last, ok := normalize.SplitName(term)
			if !ok {
				return
			}

			dd := dt.NextFiltered("dd")
			if dd.Length() == 0 {
				return
			}

			candidates = append(candidates, e.extractPair(first, last, dd, pageURL))
		})
	})

	return candidates
}

// extractPair builds a candidate from a name term and its definition block.
func (e *DefListExtractor) extractPair(
	first, last string,
	dd *goquery.Selection,
	pageURL string,
) domain.ContactCandidate {
	ddText := dd.Text()

	email := mailtoEmail(dd)
	if email == "" {
		email = firstEmailIn(ddText)
	}
	phone := telPhone(dd)
	if phone == "" {
		phone = firstPhoneIn(ddText)
	}

	return domain.ContactCandidate{
		Source:        domain.SourceDefinitionList,
		FirstName:     first,
		LastName:      last,
		JobTitle:      definitionTitle(ddText),
		Email:         email,
		Phone:         phone,
		DiscoveryURL:  pageURL,
		RawConfidence: ConfidenceDefList,
	}
}

// definitionTitle takes the leading text of the definition, stopping before
// any email or phone token, as the job title.
func definitionTitle(ddText string) string {
	text := collapseSpace(ddText)
	if loc := emailTokenRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	if loc := phoneTokenRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	return collapseSpace(text)
}
