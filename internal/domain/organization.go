package domain

import (
	"strings"
	"time"
)

// Discovery status values for an organization.
const (
	DiscoveryStatusPending   = "pending"
	DiscoveryStatusAttempted = "attempted"
	DiscoveryStatusPartial   = "partial"
	DiscoveryStatusCompleted = "completed"
)

// Organization is the owner of zero or more canonical contacts.
// Identity is (name, state); id is a surrogate key.
type Organization struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	State   string `db:"state" json:"state"`
	City    string `db:"city" json:"city,omitempty"`
	Website string `db:"website" json:"website,omitempty"`
	OrgType string `db:"org_type" json:"org_type"`

	RelevanceScore  float64    `db:"relevance_score" json:"relevance_score"`
	DiscoveryStatus string     `db:"contact_discovery_status" json:"contact_discovery_status"`
	LastDiscoveryAt *time.Time `db:"last_contact_discovery" json:"last_contact_discovery,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// waterOrgTypes are the categories that get an operations@ contact synthesized
// when no named contacts are found.
var waterOrgTypes = []string{"water", "wastewater", "utility", "utilities"}

// IsWaterUtility reports whether the organization's category is
// water/wastewater/utility adjacent.
func (o *Organization) IsWaterUtility() bool {
	orgType := strings.ToLower(o.OrgType)
	for _, t := range waterOrgTypes {
		if strings.Contains(orgType, t) {
			return true
		}
	}
	return false
}
