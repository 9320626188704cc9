package registry

import (
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
)

// RegisterBeneficiaryRequest represents a manual registration from the entry form
type RegisterBeneficiaryRequest struct {
	Identity      string `json:"identity" binding:"required,max=20"`
	Name          string `json:"name" binding:"required,min=1,max=200"`
	Address       string `json:"address" binding:"required,min=1,max=300"`
	Sector        string `json:"sector" binding:"max=100"`
	HouseholdSize int    `json:"household_size" binding:"required,min=1,max=15"`
}

// BeneficiaryResponse represents a beneficiary in API responses
type BeneficiaryResponse struct {
	IdentityKey        string    `json:"identity_key"`
	Name               string    `json:"name"`
	Address            string    `json:"address"`
	Sector             string    `json:"sector,omitempty"`
	HouseholdSize      int       `json:"household_size"`
	Eligible           bool      `json:"eligible"`
	EligibilityWarning string    `json:"eligibility_warning,omitempty"`
	RegisteredAt       time.Time `json:"registered_at"`
}

// ToBeneficiaryResponse converts a domain Beneficiary, presenting times in loc
func ToBeneficiaryResponse(b *registry.Beneficiary, loc *time.Location) BeneficiaryResponse {
	return BeneficiaryResponse{
		IdentityKey:        b.Key.String(),
		Name:               b.Name,
		Address:            b.Address,
		Sector:             b.Sector,
		HouseholdSize:      b.HouseholdSize,
		Eligible:           b.Eligible,
		EligibilityWarning: b.Warning(),
		RegisteredAt:       b.RegisteredAt.In(loc),
	}
}

// ToBeneficiaryResponses converts a list of domain Beneficiaries
func ToBeneficiaryResponses(list []registry.Beneficiary, loc *time.Location) []BeneficiaryResponse {
	out := make([]BeneficiaryResponse, len(list))
	for i := range list {
		out[i] = ToBeneficiaryResponse(&list[i], loc)
	}
	return out
}
