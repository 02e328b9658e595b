package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/extract"
)

// staffCardHTML is one person per hinted container with mailto/tel links.
const staffCardHTML = `<!DOCTYPE html>
<html><body>
<div class="staff-member">
  <h3>John Smith</h3>
  <p class="position">Public Works Director</p>
  <a href="mailto:jsmith@city.gov">Email John</a>
  <a href="tel:+12025550100">Call</a>
</div>
</body></html>`

// namedCardHTML uses a name-classed element instead of a heading.
const namedCardHTML = `<!DOCTYPE html>
<html><body>
<li class="team-card">
  <span class="member-name">Jane Doe</span>
  <span class="role">City Engineer</span>
  <span>jdoe@city.gov</span>
</li>
</body></html>`

// nestedCardsHTML wraps two person cards in a hinted outer container; only
// the leaf cards must be extracted.
const nestedCardsHTML = `<!DOCTYPE html>
<html><body>
<div class="team-directory">
  <div class="person-card">
    <h4>John Smith</h4>
    <p class="title">Water Operator</p>
  </div>
  <div class="person-card">
    <h4>Jane Doe</h4>
    <p class="title">Utilities Superintendent</p>
  </div>
</div>
</body></html>`

// headingOnlyCardHTML has a container whose heading is not a person name.
const headingOnlyCardHTML = `<!DOCTYPE html>
<html><body>
<div class="staff-listing">
  <h3>Staff</h3>
  <p>Check back soon.</p>
</div>
</body></html>`

func TestCardExtractor_BasicCard(t *testing.T) {
	t.Parallel()

	e := extract.NewCardExtractor()
	candidates := e.Extract(parseHTML(t, staffCardHTML), testPageURL)

	require.Len(t, candidates, 1)
	c := candidates[0]
	assert.Equal(t, domain.SourceCard, c.Source)
	assert.Equal(t, "John", c.FirstName)
	assert.Equal(t, "Smith", c.LastName)
	assert.Equal(t, "Public Works Director", c.JobTitle)
	assert.Equal(t, "jsmith@city.gov", c.Email)
	assert.Equal(t, "+12025550100", c.Phone)
	assert.InDelta(t, extract.ConfidenceCard, c.RawConfidence, 0.001)
}

func TestCardExtractor_NameClassedCard(t *testing.T) {
	t.Parallel()

	e := extract.NewCardExtractor()
	candidates := e.Extract(parseHTML(t, namedCardHTML), testPageURL)

	require.Len(t, candidates, 1)
	c := candidates[0]
	assert.Equal(t, "Jane", c.FirstName)
	assert.Equal(t, "Doe", c.LastName)
	assert.Equal(t, "City Engineer", c.JobTitle)
	assert.Equal(t, "jdoe@city.gov", c.Email)
	assert.InDelta(t, extract.ConfidenceCardClassed, c.RawConfidence, 0.001)
}

func TestCardExtractor_NestedContainersTakeLeaves(t *testing.T) {
	t.Parallel()

	e := extract.NewCardExtractor()
	candidates := e.Extract(parseHTML(t, nestedCardsHTML), testPageURL)

	require.Len(t, candidates, 2)
	assert.Equal(t, "John", candidates[0].FirstName)
	assert.Equal(t, "Water Operator", candidates[0].JobTitle)
	assert.Equal(t, "Jane", candidates[1].FirstName)
	assert.Equal(t, "Utilities Superintendent", candidates[1].JobTitle)
}

func TestCardExtractor_UnparseableNameSkipped(t *testing.T) {
	t.Parallel()

	e := extract.NewCardExtractor()
	candidates := e.Extract(parseHTML(t, headingOnlyCardHTML), testPageURL)
	assert.Empty(t, candidates)
}
