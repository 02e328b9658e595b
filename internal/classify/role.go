// Package classify maps free-text job titles and departments to relevance
// scores and role-category flags. All functions are pure and deterministic.
package classify

import "strings"

// Score constants for the tiered title families.
const (
	// MaxRelevance caps every computed score.
	MaxRelevance = 10.0

	baseLeadership  = 9.0
	baseSupervisory = 8.0
	baseOperational = 7.0
	baseDefault     = 6.0
	baseNoInfo      = 5.0

	bonusMajor = 1.0
	bonusMinor = 0.5
)

// Classification is the role classifier output for one title/department pair.
type Classification struct {
	RelevanceScore       float64
	IsDecisionMaker      bool
	IsTechnical          bool
	IsInfrastructureRole bool
}

// Config holds the keyword vocabularies. Zero value is unusable; use
// DefaultConfig and override per organization type where needed.
type Config struct {
	// Title base tiers, checked in order; first match wins.
	LeadershipTitles  []string
	SupervisoryTitles []string
	OperationalTitles []string

	// Bonus vocabularies.
	MajorDepartments []string
	MinorDepartments []string
	MajorTitleTerms  []string
	MinorTitleTerms  []string

	// Flag vocabularies.
	DecisionMakerTerms  []string
	TechnicalTerms      []string
	InfrastructureTerms []string
}

// DefaultConfig returns the stock municipal/utility vocabularies.
func DefaultConfig() Config {
	return Config{
		LeadershipTitles: []string{
			"director", "manager", "chief", "superintendent",
			"administrator", "mayor", "president",
		},
		SupervisoryTitles: []string{
			"supervisor", "foreman", "lead", "senior", "coordinator",
			"engineer", "technician",
		},
		OperationalTitles: []string{
			"operator", "specialist", "analyst", "officer", "clerk", "secretary",
		},
		MajorDepartments: []string{
			"public works", "utilities", "utility", "water", "wastewater",
			"infrastructure", "sewer",
		},
		MinorDepartments: []string{
			"maintenance", "technical", "planning", "engineering",
		},
		MajorTitleTerms: []string{
			"water", "utility", "operations", "maintenance", "facilities",
		},
		MinorTitleTerms: []string{
			"planning", "technical", "systems", "compliance",
		},
		DecisionMakerTerms: []string{
			"director", "manager", "chief", "head", "president",
			"supervisor", "superintendent", "administrator", "commissioner",
		},
		TechnicalTerms: []string{
			"engineer", "technician", "operator", "specialist", "analyst",
			"integrator", "developer", "architect",
		},
		InfrastructureTerms: []string{
			"water", "wastewater", "treatment", "plant", "utility", "utilities",
			"operations", "maintenance", "facilities", "public works",
			"infrastructure", "scada", "automation", "control",
		},
	}
}

// Classifier scores job titles against a keyword configuration.
type Classifier struct {
	cfg Config
}

// New creates a classifier with the given vocabularies.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// NewDefault creates a classifier with the stock vocabularies.
func NewDefault() *Classifier {
	return New(DefaultConfig())
}

// Classify scores a job title and optional department. Both inputs may be
// empty; empty title and department yield the no-information default.
func (c *Classifier) Classify(title, department string) Classification {
	titleLower := strings.ToLower(strings.TrimSpace(title))
	deptLower := strings.ToLower(strings.TrimSpace(department))

	score := c.baseScore(titleLower, deptLower)
	score += c.departmentBonus(deptLower)
	score += c.titleBonus(titleLower)
	if score > MaxRelevance {
		score = MaxRelevance
	}

	return Classification{
		RelevanceScore:       score,
		IsDecisionMaker:      containsAny(titleLower, c.cfg.DecisionMakerTerms),
		IsTechnical:          containsAny(titleLower, c.cfg.TechnicalTerms),
		IsInfrastructureRole: containsAny(titleLower, c.cfg.InfrastructureTerms),
	}
}

// baseScore returns the tiered base by keyword family.
func (c *Classifier) baseScore(titleLower, deptLower string) float64 {
	switch {
	case containsAny(titleLower, c.cfg.LeadershipTitles):
		return baseLeadership
	case containsAny(titleLower, c.cfg.SupervisoryTitles):
		return baseSupervisory
	case containsAny(titleLower, c.cfg.OperationalTitles):
		return baseOperational
	case titleLower == "" && deptLower == "":
		return baseNoInfo
	default:
		return baseDefault
	}
}

// departmentBonus rewards infrastructure-sounding departments.
func (c *Classifier) departmentBonus(deptLower string) float64 {
	switch {
	case deptLower == "":
		return 0
	case containsAny(deptLower, c.cfg.MajorDepartments):
		return bonusMajor
	case containsAny(deptLower, c.cfg.MinorDepartments):
		return bonusMinor
	default:
		return 0
	}
}

// titleBonus rewards infrastructure-operational title keywords.
func (c *Classifier) titleBonus(titleLower string) float64 {
	switch {
	case titleLower == "":
		return 0
	case containsAny(titleLower, c.cfg.MajorTitleTerms):
		return bonusMajor
	case containsAny(titleLower, c.cfg.MinorTitleTerms):
		return bonusMinor
	default:
		return 0
	}
}

func containsAny(s string, terms []string) bool {
	if s == "" {
		return false
	}
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
