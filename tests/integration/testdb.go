// Package integration runs the services against a real PostgreSQL started
// with testcontainers. The tests are skipped with -short.
package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/infrastructure/config"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDBName     = "ayuda_test"
	testDBUser     = "postgres"
	testDBPassword = "ayuda123"
)

var (
	// Shared container for all tests in the package
	sharedContainer   *tcpostgres.PostgresContainer
	sharedContainerMu sync.Mutex
)

// NewTestDB returns a migrated database on the shared PostgreSQL container.
// Every table is truncated before the test runs.
func NewTestDB(t *testing.T) *persistence.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := containerConfig(t)
	db, err := persistence.NewDatabase(cfg, nil)
	require.NoError(t, err, "Failed to connect to PostgreSQL container")
	require.NoError(t, db.AutoMigrate(), "Failed to migrate schema")
	require.NoError(t, db.DB.Exec("TRUNCATE TABLE deliveries, beneficiaries, catalog_items CASCADE").Error)

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func containerConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	ctx := context.Background()
	if sharedContainer == nil {
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase(testDBName),
			tcpostgres.WithUsername(testDBUser),
			tcpostgres.WithPassword(testDBPassword),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err, "Failed to start PostgreSQL container")
		sharedContainer = container
	}

	host, err := sharedContainer.Host(ctx)
	require.NoError(t, err)
	port, err := sharedContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return &config.DatabaseConfig{
		Driver:          "postgres",
		Host:            host,
		Port:            port.Int(),
		User:            testDBUser,
		Password:        testDBPassword,
		DBName:          testDBName,
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 1,
	}
}
