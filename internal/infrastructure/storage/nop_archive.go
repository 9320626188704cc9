package storage

import (
	"context"

	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	infraconfig "github.com/fpm2805/ayuda-penco/internal/infrastructure/config"
)

var _ shared.FileArchive = NopArchive{}

// NopArchive discards files. Used when storage is disabled.
type NopArchive struct{}

// Archive implements shared.FileArchive
func (NopArchive) Archive(context.Context, string, string, []byte, string) (string, error) {
	return "", nil
}

// NewFileArchive returns an S3Archive when storage is enabled, NopArchive otherwise
func NewFileArchive(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3ArchiveOption) (shared.FileArchive, error) {
	if cfg == nil || !cfg.Enabled {
		return NopArchive{}, nil
	}
	archive, err := NewS3Archive(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return archive, nil
}
