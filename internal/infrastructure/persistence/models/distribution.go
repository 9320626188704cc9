package models

import (
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/google/uuid"
)

// DeliveryModel is the persistence model for distribution.Delivery.
// Timestamps are stored in UTC.
type DeliveryModel struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey"`
	RecipientKey string            `gorm:"column:recipient_key;type:varchar(20);not null;index"`
	Recipient    *BeneficiaryModel `gorm:"foreignKey:RecipientKey;references:IdentityKey;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Item         string            `gorm:"type:varchar(120);not null;index"`
	Quantity     int               `gorm:"not null"`
	Center       string            `gorm:"type:varchar(150);not null;index"`
	Officer      string            `gorm:"type:varchar(150);not null"`
	DeliveredAt  time.Time         `gorm:"not null;index"`
	CreatedAt    time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DeliveryModel) TableName() string {
	return "deliveries"
}

// ToDomain converts the persistence model to a domain Delivery
func (m *DeliveryModel) ToDomain() distribution.Delivery {
	return distribution.Delivery{
		ID:           m.ID,
		RecipientKey: registry.IdentityKey(m.RecipientKey),
		Item:         m.Item,
		Quantity:     m.Quantity,
		Center:       m.Center,
		Officer:      m.Officer,
		DeliveredAt:  m.DeliveredAt.UTC(),
	}
}

// DeliveryModelFromDomain creates a persistence model from a domain Delivery
func DeliveryModelFromDomain(d *distribution.Delivery) *DeliveryModel {
	return &DeliveryModel{
		ID:           d.ID,
		RecipientKey: string(d.RecipientKey),
		Item:         d.Item,
		Quantity:     d.Quantity,
		Center:       d.Center,
		Officer:      d.Officer,
		DeliveredAt:  d.DeliveredAt.UTC().Truncate(time.Microsecond),
	}
}

// CatalogItemModel is the persistence model for distribution.CatalogItem
type CatalogItemModel struct {
	Name      string    `gorm:"type:varchar(120);primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CatalogItemModel) TableName() string {
	return "catalog_items"
}

// DeliveriesToDomain converts a slice of models
func DeliveriesToDomain(ms []DeliveryModel) []distribution.Delivery {
	out := make([]distribution.Delivery, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out
}
