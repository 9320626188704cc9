package testutil

import (
	"context"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockBeneficiaryRepository is a mock implementation of registry.BeneficiaryRepository
type MockBeneficiaryRepository struct {
	mock.Mock
}

var _ registry.BeneficiaryRepository = (*MockBeneficiaryRepository)(nil)

func (m *MockBeneficiaryRepository) FindByKey(ctx context.Context, key registry.IdentityKey) (*registry.Beneficiary, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Beneficiary), args.Error(1)
}

func (m *MockBeneficiaryRepository) FindByAddress(ctx context.Context, address string) ([]registry.Beneficiary, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]registry.Beneficiary), args.Error(1)
}

func (m *MockBeneficiaryRepository) Upsert(ctx context.Context, b *registry.Beneficiary) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBeneficiaryRepository) List(ctx context.Context, filter shared.Filter) ([]registry.Beneficiary, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]registry.Beneficiary), args.Get(1).(int64), args.Error(2)
}

// MockDeliveryRepository is a mock implementation of distribution.DeliveryRepository
type MockDeliveryRepository struct {
	mock.Mock
}

var _ distribution.DeliveryRepository = (*MockDeliveryRepository)(nil)

func (m *MockDeliveryRepository) Append(ctx context.Context, d *distribution.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) HistoryFor(ctx context.Context, key registry.IdentityKey) ([]distribution.Delivery, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]distribution.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) ListByRecipients(ctx context.Context, keys []registry.IdentityKey) ([]distribution.Delivery, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]distribution.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) ListAll(ctx context.Context, filter distribution.LedgerFilter) ([]distribution.Delivery, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]distribution.Delivery), args.Error(1)
}

// MockCatalogRepository is a mock implementation of distribution.CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

var _ distribution.CatalogRepository = (*MockCatalogRepository)(nil)

func (m *MockCatalogRepository) List(ctx context.Context) ([]distribution.CatalogItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]distribution.CatalogItem), args.Error(1)
}

func (m *MockCatalogRepository) Add(ctx context.Context, item distribution.CatalogItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockFileArchive is a mock implementation of shared.FileArchive
type MockFileArchive struct {
	mock.Mock
}

var _ shared.FileArchive = (*MockFileArchive)(nil)

func (m *MockFileArchive) Archive(ctx context.Context, kind, fileName string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, kind, fileName, data, contentType)
	return args.String(0), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

var _ shared.IdempotencyStore = (*MockIdempotencyStore)(nil)

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Forget(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}
