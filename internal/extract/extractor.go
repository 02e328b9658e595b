// Package extract turns one page's parsed HTML into raw contact candidates
// via independent competing strategies: structured data, tables, cards,
// definition lists, and a regex fallback. Extractors run unconditionally on
// every page; their results are concatenated, not chosen exclusively.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/logger"
)

// Extractor-assigned confidence priors, reflecting how structured the source was.
const (
	ConfidenceJSONLD        = 0.95
	ConfidenceMicrodata     = 0.95
	ConfidenceVCard         = 0.9
	ConfidenceCardClassed   = 0.9
	ConfidenceCard          = 0.85
	ConfidenceTableHeader   = 0.85
	ConfidenceTableNoHeader = 0.75
	ConfidenceDefList       = 0.7
	ConfidenceGenericNamed  = 0.75
	ConfidenceGenericGuess  = 0.6
	ConfidenceRoleMailbox   = 0.5
)

// Extractor is one extraction strategy. Implementations must be pure with
// respect to the document and must not panic on malformed markup; the
// pipeline additionally isolates each extractor behind a recover boundary.
type Extractor interface {
	Name() string
	Extract(doc *goquery.Document, pageURL string) []domain.ContactCandidate
}

// Pipeline runs every extractor on a page in confidence order, most
// structured first, so downstream conflict resolution favors better sources.
type Pipeline struct {
	extractors []Extractor
	generic    *GenericExtractor
	log        logger.Interface
}

// NewPipeline creates a pipeline with the default extractor ordering.
func NewPipeline(log logger.Interface) *Pipeline {
	return &Pipeline{
		extractors: []Extractor{
			NewStructuredExtractor(),
			NewTableExtractor(),
			NewCardExtractor(),
			NewDefListExtractor(),
		},
		generic: NewGenericExtractor(),
		log:     log.WithComponent("extract"),
	}
}

// ExtractPage parses the HTML and returns all candidates found by all
// extractors. A failure inside one extractor never suppresses the others;
// unparseable HTML yields an empty list.
func (p *Pipeline) ExtractPage(html, pageURL string) []domain.ContactCandidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.log.Debug("failed to parse page", "url", pageURL, "error", err)
		return nil
	}

	var candidates []domain.ContactCandidate
	for _, e := range p.extractors {
		candidates = append(candidates, p.runSafe(e, doc, pageURL)...)
	}
	candidates = append(candidates, p.runSafe(p.generic, doc, pageURL)...)

	// Role mailboxes are normally skipped; when a page yields nothing else
	// they are the only lead worth keeping.
	if len(candidates) == 0 {
		candidates = p.generic.RoleMailboxes(doc, pageURL)
	}

	return candidates
}

// runSafe runs one extractor behind a recover boundary.
func (p *Pipeline) runSafe(e Extractor, doc *goquery.Document, pageURL string) (out []domain.ContactCandidate) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("extractor panicked",
				"extractor", e.Name(),
				"url", pageURL,
				"panic", r,
			)
			out = nil
		}
	}()
	return e.Extract(doc, pageURL)
}
