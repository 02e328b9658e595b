package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/normalize"
)

// maxTitleTextLength bounds the "next short text block" title fallback.
const maxTitleTextLength = 100

// cardContainerHints mark a container as holding one person.
var cardContainerHints = []string{
	"team", "staff", "member", "person", "card", "vcard",
	"directory", "employee", "profile",
}

// cardTitleHints mark a child element as holding the person's job title.
var cardTitleHints = []string{"title", "position", "job", "role"}

// CardExtractor detects one-person-per-container layouts (team cards, staff
// profiles) by class/id hints.
type CardExtractor struct{}

// NewCardExtractor creates a card extractor.
func NewCardExtractor() *CardExtractor {
	return &CardExtractor{}
}

// Name identifies the extractor in logs.
func (e *CardExtractor) Name() string { return "card" }

// Extract returns one candidate per matched leaf container with a parseable name.
func (e *CardExtractor) Extract(doc *goquery.Document, pageURL string) []domain.ContactCandidate {
	var candidates []domain.ContactCandidate

	doc.Find("div, article, li, section").Each(func(_ int, container *goquery.Selection) {
		if !attrHintMatch(container, cardContainerHints) {
			return
		}
		// Only take leaf-most containers; an outer wrapper that holds
		// several matching cards would otherwise be extracted as one
		// mangled person.
		if hasMatchingDescendant(container) {
			return
		}
		if c, ok := e.extractCard(container, pageURL); ok {
			candidates = append(candidates, c)
		}
	})

	return candidates
}

// extractCard turns one container into a candidate, or reports ok=false when
// no name can be recovered.
func (e *CardExtractor) extractCard(card *goquery.Selection, pageURL string) (domain.ContactCandidate, bool) {
	fullName, fromNameClass := cardName(card)
	first, last, ok := normalize.SplitName(fullName)
	if !ok {
		return domain.ContactCandidate{}, false
	}

	confidence := ConfidenceCard
	if fromNameClass {
		confidence = ConfidenceCardClassed
	}

	email := mailtoEmail(card)
	if email == "" {
		email = firstEmailIn(card.Text())
	}
	phone := telPhone(card)
	if phone == "" {
		phone = firstPhoneIn(card.Text())
	}

	return domain.ContactCandidate{
		Source:        domain.SourceCard,
		FirstName:     first,
		LastName:      last,
		JobTitle:      cardTitle(card, fullName),
		Email:         email,
		Phone:         phone,
		DiscoveryURL:  pageURL,
		RawConfidence: confidence,
	}, true
}

// cardName finds the person's name: a name-classed element first, then the
// first heading-like child.
func cardName(card *goquery.Selection) (name string, fromNameClass bool) {
	classed := card.Find(`[class*="name"], [id*="name"]`).First()
	if classed.Length() > 0 {
		if text := collapseSpace(classed.Text()); text != "" {
			return text, true
		}
	}

	heading := card.Find("h1, h2, h3, h4, h5, strong").First()
	return collapseSpace(heading.Text()), false
}

// cardTitle finds the job title: a title-classed child first, then the next
// short text block that is neither the name nor contact details.
func cardTitle(card *goquery.Selection, fullName string) string {
	var title string
	card.Find("div, span, p").EachWithBreak(func(_ int, child *goquery.Selection) bool {
		if attrHintMatch(child, cardTitleHints) {
			title = collapseSpace(child.Text())
			return title == ""
		}
		return true
	})
	if title != "" {
		return title
	}

	card.Find("p, span, div").EachWithBreak(func(_ int, child *goquery.Selection) bool {
		text := collapseSpace(child.Text())
		if text == "" || text == fullName || len(text) > maxTitleTextLength {
			return true
		}
		if firstEmailIn(text) != "" || firstPhoneIn(text) != "" {
			return true
		}
		title = text
		return false
	})
	return title
}

// hasMatchingDescendant reports whether any descendant also looks like a card
// container.
func hasMatchingDescendant(container *goquery.Selection) bool {
	found := false
	container.Find("div, article, li, section").EachWithBreak(func(_ int, child *goquery.Selection) bool {
		if attrHintMatch(child, cardContainerHints) {
			found = true
			return false
		}
		return true
	})
	return found
}
