package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBeneficiaryRepository implements registry.BeneficiaryRepository using GORM
type GormBeneficiaryRepository struct {
	db *gorm.DB
}

// NewGormBeneficiaryRepository creates a new GormBeneficiaryRepository
func NewGormBeneficiaryRepository(db *gorm.DB) *GormBeneficiaryRepository {
	return &GormBeneficiaryRepository{db: db}
}

// FindByKey finds a beneficiary by identity key
func (r *GormBeneficiaryRepository) FindByKey(ctx context.Context, key registry.IdentityKey) (*registry.Beneficiary, error) {
	var model models.BeneficiaryModel
	if err := r.db.WithContext(ctx).
		Where("identity_key = ?", string(key)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAddress returns everyone registered at exactly address
func (r *GormBeneficiaryRepository) FindByAddress(ctx context.Context, address string) ([]registry.Beneficiary, error) {
	var rows []models.BeneficiaryModel
	if err := r.db.WithContext(ctx).
		Where("address = ?", address).
		Order("identity_key").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]registry.Beneficiary, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Upsert inserts b or overwrites the record with the same key
func (r *GormBeneficiaryRepository) Upsert(ctx context.Context, b *registry.Beneficiary) error {
	model := models.BeneficiaryModelFromDomain(b)
	now := time.Now().UTC()
	model.UpdatedAt = now

	updates := []string{"name", "address", "sector", "household_size", "eligible", "updated_at"}
	if b.RegisteredAt.IsZero() {
		model.RegisteredAt = now
	} else {
		updates = append(updates, "registered_at")
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "identity_key"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).
		Create(model).Error
}

// List returns a page of beneficiaries, by name unless filter names another
// allowed column. Search matches the identity key prefix or any part of the
// name, case-insensitively.
func (r *GormBeneficiaryRepository) List(ctx context.Context, filter shared.Filter) ([]registry.Beneficiary, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.BeneficiaryModel{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("identity_key LIKE ? OR LOWER(name) LIKE ?",
			string(registry.NormalizeIdentity(search))+"%",
			"%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, BeneficiarySortFields, "name")
	orderDir := ValidateSortOrder(filter.OrderDir, "ASC")

	var rows []models.BeneficiaryModel
	if err := query.
		Order(orderBy + " " + orderDir).Order("identity_key").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]registry.Beneficiary, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}
