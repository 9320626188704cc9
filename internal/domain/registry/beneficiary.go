package registry

import (
	"strings"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
)

// EligibilityWarning is shown when a located person is not on the official list
const EligibilityWarning = "not in official list"

// Beneficiary is a registered person. Records are created by registration or
// bulk upsert and only ever overwritten by key, never deleted.
type Beneficiary struct {
	Key           IdentityKey
	Name          string
	Address       string
	Sector        string
	HouseholdSize int
	Eligible      bool
	RegisteredAt  time.Time
}

// NewBeneficiary builds a record for manual registration. Name and address
// are required, the household must count at least one person, and the
// record is eligible from registeredAt.
func NewBeneficiary(key IdentityKey, name, address, sector string, householdSize int, registeredAt time.Time) (*Beneficiary, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)

	if key.IsEmpty() {
		return nil, shared.NewValidationError("identity is required")
	}
	if name == "" {
		return nil, shared.NewValidationError("name is required")
	}
	if address == "" {
		return nil, shared.NewValidationError("address is required")
	}
	if householdSize < 1 {
		return nil, shared.NewValidationError("household size must be at least 1")
	}

	return &Beneficiary{
		Key:           key,
		Name:          name,
		Address:       address,
		Sector:        strings.TrimSpace(sector),
		HouseholdSize: householdSize,
		Eligible:      true,
		RegisteredAt:  registeredAt,
	}, nil
}

// NewImportedBeneficiary builds a record for the bulk path. Address may be
// blank on historic rosters; household size is coerced by the caller.
func NewImportedBeneficiary(key IdentityKey, name, address, sector string, householdSize int) (*Beneficiary, error) {
	name = strings.TrimSpace(name)
	if key.IsEmpty() {
		return nil, shared.NewValidationError("identity is required")
	}
	if name == "" {
		return nil, shared.NewValidationError("name is required")
	}
	if householdSize < 1 {
		householdSize = 1
	}
	return &Beneficiary{
		Key:           key,
		Name:          name,
		Address:       strings.TrimSpace(address),
		Sector:        strings.TrimSpace(sector),
		HouseholdSize: householdSize,
		Eligible:      true,
	}, nil
}

// Warning returns the eligibility warning for non-listed people, or ""
func (b *Beneficiary) Warning() string {
	if b.Eligible {
		return ""
	}
	return EligibilityWarning
}
