// Package report renders discovery run summaries as tables.
package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jonesrussell/contactscout/internal/domain"
)

// Renderer formats batch results for operators.
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// RenderResults displays one row per organization plus a totals footer.
func (r *Renderer) RenderResults(results []domain.BatchResult) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{
		"Organization", "Pages", "Candidates", "Inserted", "Updated", "Unchanged", "Skipped", "Failed",
	})

	var total domain.BatchResult
	for _, result := range results {
		t.AppendRow(table.Row{
			result.OrganizationID,
			result.PagesProcessed,
			result.Candidates,
			result.Inserted,
			result.Updated,
			result.Unchanged,
			result.SkippedInvalid,
			result.FailedPersist,
		})
		total.Add(result)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		total.PagesProcessed,
		total.Candidates,
		total.Inserted,
		total.Updated,
		total.Unchanged,
		total.SkippedInvalid,
		total.FailedPersist,
	})

	t.Render()
}

// RenderContacts displays an organization's resolved contacts.
func (r *Renderer) RenderContacts(contacts []domain.CanonicalContact) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{
		"Name", "Title", "Email", "Phone", "Type", "Relevance", "Confidence",
	})

	for _, c := range contacts {
		name := c.FirstName
		if c.LastName != "" {
			if name != "" {
				name += " "
			}
			name += c.LastName
		}
		t.AppendRow(table.Row{
			name,
			c.JobTitle,
			c.Email,
			c.Phone,
			string(c.ContactType),
			c.RelevanceScore,
			c.ConfidenceScore,
		})
	}

	t.Render()
}
