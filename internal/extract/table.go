package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/normalize"
)

// minDirectoryRows is the row threshold for the headerless directory heuristic.
const minDirectoryRows = 3

// minRowCells skips rows too narrow to describe a person.
const minRowCells = 2

// directoryHeaderTokens mark a table as a staff directory when present in a header.
var directoryHeaderTokens = []string{"name", "title", "position", "email", "phone", "department"}

// priorityRowKeywords mark a headerless row as person-bearing.
var priorityRowKeywords = []string{
	"director", "manager", "supervisor", "superintendent", "chief",
	"engineer", "operator", "clerk", "coordinator",
}

// TableExtractor detects tables that look like staff directories and maps
// header tokens to columns positionally.
type TableExtractor struct{}

// NewTableExtractor creates a table extractor.
func NewTableExtractor() *TableExtractor {
	return &TableExtractor{}
}

// Name identifies the extractor in logs.
func (e *TableExtractor) Name() string { return "table" }

// columnMap holds per-table column indexes; -1 means not found.
type columnMap struct {
	name, title, email, phone, dept int
}

// Extract returns candidates from every directory-looking table on the page.
func (e *TableExtractor) Extract(doc *goquery.Document, pageURL string) []domain.ContactCandidate {
	var candidates []domain.ContactCandidate

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		headers := tableHeaders(table)
		hasHeader := len(headers) > 0 && matchesAnyToken(headers, directoryHeaderTokens)

		if !hasHeader && !looksLikeDirectory(table) {
			return
		}

		cols := mapColumns(headers)
		confidence := ConfidenceTableNoHeader
		if hasHeader {
			confidence = ConfidenceTableHeader
		}

		rows := table.Find("tr")
		rows.Each(func(i int, row *goquery.Selection) {
			// Only a recognized header row is skipped; in a headerless table
			// the first row may itself describe a person.
			if i == 0 && hasHeader {
				return
			}
			if c, ok := e.extractRow(row, cols, pageURL, confidence); ok {
				candidates = append(candidates, c)
			}
		})
	})

	return candidates
}

// extractRow turns one table row into a candidate, or reports ok=false when
// no name can be recovered.
func (e *TableExtractor) extractRow(
	row *goquery.Selection,
	cols columnMap,
	pageURL string,
	confidence float64,
) (domain.ContactCandidate, bool) {
	cells := row.Find("td, th")
	if cells.Length() < minRowCells {
		return domain.ContactCandidate{}, false
	}

	candidate := domain.ContactCandidate{
		Source:        domain.SourceTable,
		DiscoveryURL:  pageURL,
		RawConfidence: confidence,
	}

	// Name: positional column first, then any cell matching the exact
	// Title Case pattern.
	fullName := cellText(cells, cols.name)
	if fullName == "" {
		cells.EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			text := collapseSpace(cell.Text())
			if looksLikeExactName(text) {
				fullName = text
				return false
			}
			return true
		})
	}

	first, last, nameOK := normalize.SplitName(fullName)
	if nameOK {
		candidate.FirstName = first
		candidate.LastName = last
	}

	candidate.JobTitle = cellText(cells, cols.title)
	candidate.Department = cellText(cells, cols.dept)
	if candidate.JobTitle == "" && candidate.Department != "" {
		candidate.JobTitle = candidate.Department + " Staff"
	}

	// Email: mapped column first, then any cell with a mailto link or
	// email-shaped token.
	if cols.email >= 0 {
		candidate.Email = cellEmail(cells.Eq(cols.email))
	}
	if candidate.Email == "" {
		cells.EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			candidate.Email = cellEmail(cell)
			return candidate.Email == ""
		})
	}

	if cols.phone >= 0 {
		candidate.Phone = firstPhoneIn(cells.Eq(cols.phone).Text())
	}
	if candidate.Phone == "" {
		candidate.Phone = firstPhoneIn(row.Text())
	}

	if !nameOK && candidate.Email == "" {
		return domain.ContactCandidate{}, false
	}
	return candidate, true
}

// tableHeaders returns the lowercased header cells, falling back to the first
// row's td cells when the table has no th elements.
func tableHeaders(table *goquery.Selection) []string {
	var headers []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.ToLower(collapseSpace(th.Text())))
	})
	if len(headers) > 0 {
		return headers
	}
	table.Find("tr").First().Find("td").Each(func(_ int, td *goquery.Selection) {
		headers = append(headers, strings.ToLower(collapseSpace(td.Text())))
	})
	return headers
}

// looksLikeDirectory applies the headerless heuristic: at least three rows
// each containing an email or a priority-role keyword.
func looksLikeDirectory(table *goquery.Selection) bool {
	matching := 0
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		text := strings.ToLower(row.Text())
		if firstEmailIn(text) != "" || containsAnyKeyword(text, priorityRowKeywords) {
			matching++
		}
		return matching < minDirectoryRows
	})
	return matching >= minDirectoryRows
}

// mapColumns maps header tokens to column indexes.
func mapColumns(headers []string) columnMap {
	cols := columnMap{name: -1, title: -1, email: -1, phone: -1, dept: -1}
	for i, h := range headers {
		switch {
		case cols.name < 0 && strings.Contains(h, "name"):
			cols.name = i
		case cols.title < 0 && containsAnyKeyword(h, []string{"title", "position", "job", "role"}):
			cols.title = i
		case cols.email < 0 && strings.Contains(h, "email"):
			cols.email = i
		case cols.phone < 0 && containsAnyKeyword(h, []string{"phone", "tel", "contact"}):
			cols.phone = i
		case cols.dept < 0 && containsAnyKeyword(h, []string{"department", "dept", "division"}):
			cols.dept = i
		}
	}
	return cols
}

// cellText returns the collapsed text of cell idx, or empty when out of range.
func cellText(cells *goquery.Selection, idx int) string {
	if idx < 0 || idx >= cells.Length() {
		return ""
	}
	return collapseSpace(cells.Eq(idx).Text())
}

// cellEmail extracts an email from a cell, mailto link first then regex.
func cellEmail(cell *goquery.Selection) string {
	if email := mailtoEmail(cell); email != "" {
		return email
	}
	return firstEmailIn(cell.Text())
}

// matchesAnyToken reports whether any header contains any token.
func matchesAnyToken(headers, tokens []string) bool {
	for _, h := range headers {
		if containsAnyKeyword(h, tokens) {
			return true
		}
	}
	return false
}

func containsAnyKeyword(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
