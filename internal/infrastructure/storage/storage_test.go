package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3Archive_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3Archive(ctx, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3Archive(ctx, &config.StorageConfig{AccessKeyID: "k", SecretAccessKey: "s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("invalid endpoint returns error", func(t *testing.T) {
		_, err := NewS3Archive(ctx, &config.StorageConfig{Bucket: "b", Endpoint: "not a url"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid storage endpoint")
	})

	t.Run("valid config creates archive", func(t *testing.T) {
		archive, err := NewS3Archive(ctx, &config.StorageConfig{
			Bucket:          "ayuda-archive",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Endpoint:        "http://localhost:9000",
			UsePathStyle:    true,
			Prefix:          "/ayuda/",
		})
		require.NoError(t, err)
		assert.Equal(t, "ayuda-archive", archive.Bucket())
		assert.Equal(t, "ayuda", archive.prefix)
	})
}

func TestS3Archive_ObjectKey(t *testing.T) {
	archive, err := NewS3Archive(context.Background(), &config.StorageConfig{
		Bucket:      "b",
		AccessKeyID: "k",
		Prefix:      "ayuda",
	})
	require.NoError(t, err)
	archive.now = func() time.Time { return time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC) }

	key := archive.objectKey("imports", `C:\Users\muni\padron.csv`)
	assert.True(t, strings.HasPrefix(key, "ayuda/imports/2024/03/09/"), key)
	assert.True(t, strings.HasSuffix(key, "-padron.csv"), key)

	key = archive.objectKey("exports", "")
	assert.True(t, strings.HasSuffix(key, "-file"), key)
}

func TestNewFileArchive_Disabled(t *testing.T) {
	archive, err := NewFileArchive(context.Background(), &config.StorageConfig{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, NopArchive{}, archive)

	key, err := archive.Archive(context.Background(), "exports", "x.csv", []byte("a"), "text/csv")
	require.NoError(t, err)
	assert.Empty(t, key)
}
