package distribution

import (
	"fmt"
	"strings"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	"github.com/google/uuid"
)

// ErrRecipientNotFound is the ForeignKeyError of the ledger: a delivery
// named a recipient that is not in the Directory. Match with errors.Is.
var ErrRecipientNotFound = shared.NewDomainError(shared.CodeForeignKey, "recipient is not registered")

// NewRecipientNotFoundError reports the missing recipient key
func NewRecipientNotFoundError(key registry.IdentityKey, cause error) error {
	return shared.WrapDomainError(shared.CodeForeignKey,
		fmt.Sprintf("recipient %s is not registered", key), cause)
}

// Delivery is one aid item handed to a person. Deliveries are append-only.
type Delivery struct {
	ID           uuid.UUID
	RecipientKey registry.IdentityKey
	Item         string
	Quantity     int
	Center       string
	Officer      string
	DeliveredAt  time.Time
}

// NewDelivery validates and builds a delivery stamped at deliveredAt.
func NewDelivery(recipient registry.IdentityKey, item string, quantity int, session Session, deliveredAt time.Time) (*Delivery, error) {
	item = strings.TrimSpace(item)

	if recipient.IsEmpty() {
		return nil, shared.NewValidationError("recipient identity is required")
	}
	if item == "" {
		return nil, shared.NewValidationError("item is required")
	}
	if quantity < 1 {
		return nil, shared.NewValidationError("quantity must be at least 1")
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if deliveredAt.IsZero() {
		return nil, shared.NewValidationError("delivery time is required")
	}

	return &Delivery{
		ID:           uuid.New(),
		RecipientKey: recipient,
		Item:         item,
		Quantity:     quantity,
		Center:       session.Center,
		Officer:      session.Officer,
		DeliveredAt:  deliveredAt,
	}, nil
}

// LocalTime returns the delivery time in loc
func (d Delivery) LocalTime(loc *time.Location) time.Time {
	return d.DeliveredAt.In(loc)
}
