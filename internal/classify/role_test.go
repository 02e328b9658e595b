package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/contactscout/internal/classify"
)

func TestClassify_TierBoundaries(t *testing.T) {
	t.Parallel()

	c := classify.NewDefault()

	tests := []struct {
		name       string
		title      string
		department string
		expected   float64
	}{
		// Leadership tier (9.0 base).
		{"director", "Director", "", 9.0},
		{"manager", "Office Manager", "", 9.0},
		{"chief", "Fire Chief", "", 9.0},
		{"superintendent", "Superintendent", "", 9.0},
		{"administrator", "City Administrator", "", 9.0},
		{"mayor", "Mayor", "", 9.0},
		{"president", "Council President", "", 9.0},

		// Supervisory tier (8.0 base).
		{"supervisor", "Shift Supervisor", "", 8.0},
		{"foreman", "Crew Foreman", "", 8.0},
		{"coordinator", "Project Coordinator", "", 8.0},
		{"engineer", "Civil Engineer", "", 8.0},
		{"technician", "Lab Technician", "", 8.0},

		// Operational tier (7.0 base).
		{"specialist", "GIS Specialist", "", 7.0},
		{"analyst", "Budget Analyst", "", 7.0},
		{"officer", "Code Enforcement Officer", "", 7.0},
		{"clerk", "Town Clerk", "", 7.0},
		{"secretary", "Board Secretary", "", 7.0},

		// Default and no-information tiers.
		{"unknown title", "Staff Member", "", 6.0},
		{"empty title with department", "", "Finance", 6.0},
		{"empty everything", "", "", 5.0},

		// Department bonuses on top of the base.
		{"default plus major department", "Staff Member", "Public Works", 7.0},
		{"default plus minor department", "Staff Member", "Maintenance", 6.5},
		{"leadership plus major department", "Director", "Utilities", 10.0},

		// Title bonuses.
		{"operator with water title", "Water Operator", "", 8.0},
		{"default plus minor title term", "Planning Assistant", "", 6.5},

		// Capping at 10.
		{"water treatment superintendent", "Water Treatment Superintendent", "Water", 10.0},
		{"public works director", "Public Works Director", "Public Works", 10.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := c.Classify(tt.title, tt.department)
			assert.InDelta(t, tt.expected, got.RelevanceScore, 0.001,
				"title=%q department=%q", tt.title, tt.department)
		})
	}
}

func TestClassify_Flags(t *testing.T) {
	t.Parallel()

	c := classify.NewDefault()

	tests := []struct {
		name           string
		title          string
		decisionMaker  bool
		technical      bool
		infrastructure bool
	}{
		{"public works director", "Public Works Director", true, false, true},
		{"water operator", "Water Treatment Plant Operator", false, true, true},
		{"scada engineer", "SCADA Integration Engineer", false, true, true},
		{"clerk", "Town Clerk", false, false, false},
		{"utilities superintendent", "Utilities Superintendent", true, false, true},
		{"empty", "", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := c.Classify(tt.title, "")
			assert.Equal(t, tt.decisionMaker, got.IsDecisionMaker, "IsDecisionMaker")
			assert.Equal(t, tt.technical, got.IsTechnical, "IsTechnical")
			assert.Equal(t, tt.infrastructure, got.IsInfrastructureRole, "IsInfrastructureRole")
		})
	}
}

func TestClassify_NeverExceedsCap(t *testing.T) {
	t.Parallel()

	c := classify.NewDefault()

	got := c.Classify("Water Operations Director", "Public Works and Utilities")
	assert.LessOrEqual(t, got.RelevanceScore, classify.MaxRelevance)
	assert.InDelta(t, classify.MaxRelevance, got.RelevanceScore, 0.001)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	t.Parallel()

	c := classify.NewDefault()

	upper := c.Classify("WATER TREATMENT SUPERINTENDENT", "WATER")
	lower := c.Classify("water treatment superintendent", "water")
	assert.Equal(t, lower, upper)
}
