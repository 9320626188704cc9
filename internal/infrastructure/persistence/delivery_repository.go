package persistence

import (
	"context"
	"errors"

	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDeliveryRepository implements distribution.DeliveryRepository using GORM.
// It only ever inserts.
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new GormDeliveryRepository
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// Append stores d after checking the recipient exists. The database foreign
// key backs the check; its violation is translated to the same typed error.
func (r *GormDeliveryRepository) Append(ctx context.Context, d *distribution.Delivery) error {
	model := models.DeliveryModelFromDomain(d)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BeneficiaryModel{}).
			Where("identity_key = ?", model.RecipientKey).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return distribution.NewRecipientNotFoundError(d.RecipientKey, nil)
		}

		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return distribution.NewRecipientNotFoundError(d.RecipientKey, err)
			}
			return err
		}
		return nil
	})
}

// HistoryFor returns the recipient's deliveries, most recent first
func (r *GormDeliveryRepository) HistoryFor(ctx context.Context, key registry.IdentityKey) ([]distribution.Delivery, error) {
	var rows []models.DeliveryModel
	if err := r.db.WithContext(ctx).
		Where("recipient_key = ?", string(key)).
		Order("delivered_at DESC").Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return models.DeliveriesToDomain(rows), nil
}

// ListByRecipients returns every delivery made to any of keys
func (r *GormDeliveryRepository) ListByRecipients(ctx context.Context, keys []registry.IdentityKey) ([]distribution.Delivery, error) {
	if len(keys) == 0 {
		return []distribution.Delivery{}, nil
	}

	var rows []models.DeliveryModel
	if err := r.db.WithContext(ctx).
		Where("recipient_key IN ?", registry.Keys(keys)).
		Order("delivered_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return models.DeliveriesToDomain(rows), nil
}

// ListAll returns the ledger within filter, oldest first
func (r *GormDeliveryRepository) ListAll(ctx context.Context, filter distribution.LedgerFilter) ([]distribution.Delivery, error) {
	query := r.db.WithContext(ctx).Model(&models.DeliveryModel{})
	if !filter.From.IsZero() {
		query = query.Where("delivered_at >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		query = query.Where("delivered_at < ?", filter.To.UTC())
	}

	var rows []models.DeliveryModel
	if err := query.Order("delivered_at ASC").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return models.DeliveriesToDomain(rows), nil
}
