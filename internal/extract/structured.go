package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/normalize"
)

// StructuredExtractor reads machine-readable person records: JSON-LD blocks,
// schema.org microdata, and vCard-class markup. A malformed block yields zero
// candidates from that sub-source, never an aborted page.
type StructuredExtractor struct{}

// NewStructuredExtractor creates a structured-data extractor.
func NewStructuredExtractor() *StructuredExtractor {
	return &StructuredExtractor{}
}

// Name identifies the extractor in logs.
func (e *StructuredExtractor) Name() string { return "structured" }

// Extract returns candidates from all three structured sub-sources.
func (e *StructuredExtractor) Extract(doc *goquery.Document, pageURL string) []domain.ContactCandidate {
	var candidates []domain.ContactCandidate
	candidates = append(candidates, e.extractJSONLD(doc, pageURL)...)
	candidates = append(candidates, e.extractMicrodata(doc, pageURL)...)
	candidates = append(candidates, e.extractVCards(doc, pageURL)...)
	return candidates
}

// extractJSONLD walks every application/ld+json script for Person records,
// including people nested under Organization member/employee and @graph.
func (e *StructuredExtractor) extractJSONLD(doc *goquery.Document, pageURL string) []domain.ContactCandidate {
	var candidates []domain.ContactCandidate

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, script *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(script.Text()), &data); err != nil {
			return
		}
		candidates = append(candidates, e.walkJSONLD(data, pageURL)...)
	})

	return candidates
}

// walkJSONLD recurses through JSON-LD values collecting Person records.
func (e *StructuredExtractor) walkJSONLD(data any, pageURL string) []domain.ContactCandidate {
	switch v := data.(type) {
	case []any:
		var candidates []domain.ContactCandidate
		for _, item := range v {
			candidates = append(candidates, e.walkJSONLD(item, pageURL)...)
		}
		return candidates
	case map[string]any:
		return e.personFromObject(v, pageURL)
	default:
		return nil
	}
}

// personFromObject extracts a Person candidate from one JSON-LD object, or
// recurses into Organization members and @graph nodes.
func (e *StructuredExtractor) personFromObject(obj map[string]any, pageURL string) []domain.ContactCandidate {
	objType := jsonString(obj["@type"])
	if objType == "" {
		objType = jsonString(obj["type"])
	}

	if objType == "Person" {
		first, last, ok := normalize.SplitName(jsonString(obj["name"]))
		if !ok {
			return nil
		}
		return []domain.ContactCandidate{{
			Source:        domain.SourceStructuredData,
			FirstName:     first,
			LastName:      last,
			JobTitle:      collapseSpace(jsonString(obj["jobTitle"])),
			Email:         strings.TrimPrefix(jsonString(obj["email"]), "mailto:"),
			Phone:         jsonString(obj["telephone"]),
			DiscoveryURL:  pageURL,
			RawConfidence: ConfidenceJSONLD,
		}}
	}

	var candidates []domain.ContactCandidate
	for _, key := range []string{"member", "employee", "employees", "@graph"} {
		if nested, ok := obj[key]; ok {
			candidates = append(candidates, e.walkJSONLD(nested, pageURL)...)
		}
	}
	return candidates
}

// extractMicrodata reads schema.org Person microdata attributes.
func (e *StructuredExtractor) extractMicrodata(doc *goquery.Document, pageURL string) []domain.ContactCandidate {
	var candidates []domain.ContactCandidate

	doc.Find(`[itemtype*="schema.org/Person"]`).Each(func(_ int, person *goquery.Selection) {
		first, last, ok := normalize.SplitName(itempropText(person, "name"))
		if !ok {
			return
		}

		email := mailtoEmail(person)
		if email == "" {
			email = itempropText(person, "email")
		}

		candidates = append(candidates, domain.ContactCandidate{
			Source:        domain.SourceMicrodata,
			FirstName:     first,
			LastName:      last,
			JobTitle:      itempropText(person, "jobTitle"),
			Email:         email,
			Phone:         itempropText(person, "telephone"),
			DiscoveryURL:  pageURL,
			RawConfidence: ConfidenceMicrodata,
		})
	})

	return candidates
}

// extractVCards reads hCard-style markup (.vcard with .fn/.title/.email/.tel).
func (e *StructuredExtractor) extractVCards(doc *goquery.Document, pageURL string) []domain.ContactCandidate {
	var candidates []domain.ContactCandidate

	doc.Find(".vcard").Each(func(_ int, card *goquery.Selection) {
		first, last, ok := normalize.SplitName(collapseSpace(card.Find(".fn").First().Text()))
		if !ok {
			return
		}

		email := mailtoEmail(card)
		if email == "" {
			email = firstEmailIn(card.Find(".email").Text())
		}
		phone := telPhone(card)
		if phone == "" {
			phone = firstPhoneIn(card.Find(".tel").Text())
		}

		candidates = append(candidates, domain.ContactCandidate{
			Source:        domain.SourceVCard,
			FirstName:     first,
			LastName:      last,
			JobTitle:      collapseSpace(card.Find(".title, .role").First().Text()),
			Email:         email,
			Phone:         phone,
			DiscoveryURL:  pageURL,
			RawConfidence: ConfidenceVCard,
		})
	})

	return candidates
}

// itempropText returns the collapsed text of the first matching itemprop,
// preferring the content attribute when present.
func itempropText(sel *goquery.Selection, prop string) string {
	elem := sel.Find(`[itemprop="` + prop + `"]`).First()
	if content, ok := elem.Attr("content"); ok {
		return collapseSpace(content)
	}
	return collapseSpace(elem.Text())
}

// jsonString returns v as a trimmed string when it is one, else empty.
func jsonString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
