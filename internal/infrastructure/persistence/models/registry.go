package models

import (
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
)

// BeneficiaryModel is the persistence model for registry.Beneficiary.
// identity_key is the only unique column.
type BeneficiaryModel struct {
	IdentityKey   string    `gorm:"column:identity_key;type:varchar(20);primaryKey"`
	Name          string    `gorm:"type:varchar(200);not null"`
	Address       string    `gorm:"type:varchar(300);not null;index"`
	Sector        string    `gorm:"type:varchar(100)"`
	HouseholdSize int       `gorm:"not null"`
	Eligible      bool      `gorm:"not null"`
	RegisteredAt  time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BeneficiaryModel) TableName() string {
	return "beneficiaries"
}

// ToDomain converts the persistence model to a domain Beneficiary
func (m *BeneficiaryModel) ToDomain() *registry.Beneficiary {
	return &registry.Beneficiary{
		Key:           registry.IdentityKey(m.IdentityKey),
		Name:          m.Name,
		Address:       m.Address,
		Sector:        m.Sector,
		HouseholdSize: m.HouseholdSize,
		Eligible:      m.Eligible,
		RegisteredAt:  m.RegisteredAt,
	}
}

// FromDomain populates the persistence model from a domain Beneficiary
func (m *BeneficiaryModel) FromDomain(b *registry.Beneficiary) {
	m.IdentityKey = string(b.Key)
	m.Name = b.Name
	m.Address = b.Address
	m.Sector = b.Sector
	m.HouseholdSize = b.HouseholdSize
	m.Eligible = b.Eligible
	m.RegisteredAt = b.RegisteredAt.UTC()
}

// BeneficiaryModelFromDomain creates a persistence model from a domain Beneficiary
func BeneficiaryModelFromDomain(b *registry.Beneficiary) *BeneficiaryModel {
	m := &BeneficiaryModel{}
	m.FromDomain(b)
	return m
}
