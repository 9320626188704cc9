package persistence

import (
	"context"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCatalogRepository implements distribution.CatalogRepository using GORM
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// List returns catalog items ordered by name
func (r *GormCatalogRepository) List(ctx context.Context) ([]distribution.CatalogItem, error) {
	var rows []models.CatalogItemModel
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]distribution.CatalogItem, len(rows))
	for i, row := range rows {
		out[i] = distribution.CatalogItem{Name: row.Name}
	}
	return out, nil
}

// Add inserts item unless its name already exists
func (r *GormCatalogRepository) Add(ctx context.Context, item distribution.CatalogItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.CatalogItemModel{Name: item.Name, CreatedAt: time.Now().UTC()}).Error
}
