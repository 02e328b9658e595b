package report_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/report"
)

func TestRenderer_RenderResults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := report.NewRenderer(&buf)

	r.RenderResults([]domain.BatchResult{
		{OrganizationID: "org-1", PagesProcessed: 3, Candidates: 7, Inserted: 4, Updated: 2, Unchanged: 1, SkippedInvalid: 1},
		{OrganizationID: "org-2", PagesProcessed: 1, Candidates: 2, Inserted: 1, FailedPersist: 1},
	})

	out := buf.String()
	assert.Contains(t, out, "org-1")
	assert.Contains(t, out, "org-2")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "UNCHANGED")
	assert.Contains(t, out, "4")
}

func TestRenderer_RenderContacts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := report.NewRenderer(&buf)

	r.RenderContacts([]domain.CanonicalContact{
		{
			FirstName:       "John",
			LastName:        "Smith",
			JobTitle:        "Public Works Director",
			Email:           "jsmith@city.gov",
			ContactType:     domain.ContactTypeActual,
			RelevanceScore:  9.0,
			ConfidenceScore: 0.85,
		},
		{
			Email:       "info@city.gov",
			ContactType: domain.ContactTypeGeneric,
		},
	})

	out := buf.String()
	assert.Contains(t, out, "John Smith")
	assert.Contains(t, out, "Public Works Director")
	assert.Contains(t, out, "info@city.gov")
	assert.Contains(t, out, "generic")
}
