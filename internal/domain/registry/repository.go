package registry

import (
	"context"

	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
)

// BeneficiaryRepository is the Directory's persistence contract. The identity
// key is the only uniqueness constraint: Upsert overwrites by key, so the
// store holds exactly one record per key.
type BeneficiaryRepository interface {
	// FindByKey returns shared.ErrNotFound when no record has key
	FindByKey(ctx context.Context, key IdentityKey) (*Beneficiary, error)
	// FindByAddress matches the address string exactly
	FindByAddress(ctx context.Context, address string) ([]Beneficiary, error)
	// Upsert inserts or replaces by key. A zero RegisteredAt keeps the stored
	// registration timestamp of an existing record.
	Upsert(ctx context.Context, b *Beneficiary) error
	// List returns a page of records ordered by name
	List(ctx context.Context, filter shared.Filter) ([]Beneficiary, int64, error)
}
