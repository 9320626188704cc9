package distribution

import (
	"context"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
)

// LedgerFilter bounds a global ledger query. Zero times are open bounds;
// To is exclusive.
type LedgerFilter struct {
	From time.Time
	To   time.Time
}

// DeliveryRepository is the append-only ledger. No update or delete exists.
type DeliveryRepository interface {
	// Append stores d. It fails with an error matching ErrRecipientNotFound,
	// and stores nothing, when the recipient is not registered.
	Append(ctx context.Context, d *Delivery) error
	// HistoryFor returns the recipient's deliveries, most recent first
	HistoryFor(ctx context.Context, key registry.IdentityKey) ([]Delivery, error)
	// ListByRecipients returns every delivery of the given recipients
	ListByRecipients(ctx context.Context, keys []registry.IdentityKey) ([]Delivery, error)
	// ListAll returns the ledger within filter, oldest first
	ListAll(ctx context.Context, filter LedgerFilter) ([]Delivery, error)
}

// CatalogRepository stores the item names offered for selection
type CatalogRepository interface {
	List(ctx context.Context) ([]CatalogItem, error)
	// Add is a no-op when the name already exists
	Add(ctx context.Context, item CatalogItem) error
}
