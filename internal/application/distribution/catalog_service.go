package distribution

import (
	"context"

	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
)

// CatalogService manages the item names offered in the entry form
type CatalogService struct {
	repo distribution.CatalogRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(repo distribution.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// List returns the item names in alphabetical order
func (s *CatalogService) List(ctx context.Context) ([]string, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalogNames(items), nil
}

// Add title-cases name and adds it. Adding an existing name is a no-op.
func (s *CatalogService) Add(ctx context.Context, req AddCatalogItemRequest) (string, error) {
	name := distribution.NormalizeItemName(req.Name)
	if name == "" {
		return "", shared.NewValidationError("item name is required")
	}
	if err := s.repo.Add(ctx, distribution.CatalogItem{Name: name}); err != nil {
		return "", err
	}
	return name, nil
}
