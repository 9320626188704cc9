// Package registry implements the Beneficiary Directory use cases.
package registry

import (
	"context"
	"errors"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/metrics"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/telemetry"
)

// Sources for the beneficiaries_upserted metric
const (
	SourceManual = "manual"
	SourceImport = "import"
)

// DirectoryService handles lookups and writes of beneficiaries
type DirectoryService struct {
	repo    registry.BeneficiaryRepository
	now     func() time.Time
	metrics *metrics.Metrics
}

// Option configures a DirectoryService
type Option func(*DirectoryService)

// WithClock replaces the registration clock
func WithClock(now func() time.Time) Option {
	return func(s *DirectoryService) { s.now = now }
}

// WithMetrics records upserts in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *DirectoryService) { s.metrics = m }
}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService(repo registry.BeneficiaryRepository, opts ...Option) *DirectoryService {
	s := &DirectoryService{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Find normalizes raw and returns the matching beneficiary. An empty key or
// an unknown person yields (nil, nil): "not found" is a result, not an error.
func (s *DirectoryService) Find(ctx context.Context, raw string) (*registry.Beneficiary, error) {
	key := registry.NormalizeIdentity(raw)
	if key.IsEmpty() {
		return nil, nil
	}
	return s.FindByKey(ctx, key)
}

// FindByKey looks up an already normalized key. Absent records yield (nil, nil).
func (s *DirectoryService) FindByKey(ctx context.Context, key registry.IdentityKey) (*registry.Beneficiary, error) {
	b, err := s.repo.FindByKey(ctx, key)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Register creates or overwrites the beneficiary typed in the entry form.
// The record is eligible and stamped with the current time.
func (s *DirectoryService) Register(ctx context.Context, req RegisterBeneficiaryRequest) (*registry.Beneficiary, error) {
	key := registry.NormalizeIdentity(req.Identity)
	ctx, span := telemetry.StartServiceSpan(ctx, "directory", "register", telemetry.SpanAttrIdentityKey, key.String())
	defer span.End()

	b, err := registry.NewBeneficiary(key, req.Name, req.Address, req.Sector, req.HouseholdSize, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, b); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.metrics.IncBeneficiaryUpserted(SourceManual)
	return b, nil
}

// Upsert writes a record from the bulk path, keeping the registration
// timestamp of an existing record.
func (s *DirectoryService) Upsert(ctx context.Context, b *registry.Beneficiary) error {
	if b == nil || b.Key.IsEmpty() {
		return shared.NewValidationError("identity is required")
	}
	if err := s.repo.Upsert(ctx, b); err != nil {
		return err
	}
	s.metrics.IncBeneficiaryUpserted(SourceImport)
	return nil
}

// FindByAddress returns everyone registered at exactly address
func (s *DirectoryService) FindByAddress(ctx context.Context, address string) ([]registry.Beneficiary, error) {
	return s.repo.FindByAddress(ctx, address)
}

// List returns a page of the directory
func (s *DirectoryService) List(ctx context.Context, filter shared.Filter) ([]registry.Beneficiary, int64, error) {
	return s.repo.List(ctx, filter.Normalize())
}
