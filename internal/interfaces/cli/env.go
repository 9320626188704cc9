package cli

import (
	"context"
	"fmt"
	"time"

	distributionapp "github.com/fpm2805/ayuda-penco/internal/application/distribution"
	importapp "github.com/fpm2805/ayuda-penco/internal/application/import"
	registryapp "github.com/fpm2805/ayuda-penco/internal/application/registry"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/config"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/logger"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/persistence"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// env is the wiring a bulk load needs: the datastore plus the import services
type env struct {
	cfg        *config.Config
	log        *zap.Logger
	db         *persistence.Database
	people     *importapp.PeopleImportService
	deliveries *importapp.DeliveryImportService
}

func openEnv(ctx context.Context, opts *RootOptions) (*env, error) {
	cfg, err := config.LoadFrom(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	level, sqlLevel := "info", "warn"
	if opts.Verbose {
		level, sqlLevel = "debug", "debug"
	}
	log := opts.log
	if log == nil {
		log, err = logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr"})
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	loc, err := time.LoadLocation(cfg.Relief.TimeZone)
	if err != nil {
		return nil, err
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(sqlLevel), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	archive, err := storage.NewFileArchive(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	directory := registryapp.NewDirectoryService(persistence.NewGormBeneficiaryRepository(db.DB))
	ledger := distributionapp.NewLedgerService(
		persistence.NewGormDeliveryRepository(db.DB),
		persistence.NewGormCatalogRepository(db.DB),
	)

	return &env{
		cfg: cfg,
		log: log,
		db:  db,
		people: importapp.NewPeopleImportService(directory,
			importapp.WithArchive(archive),
			importapp.WithMaxRows(cfg.Relief.MaxImportRows),
		),
		deliveries: importapp.NewDeliveryImportService(ledger, loc, cfg.Relief.ImportCenter, cfg.Relief.ImportOfficer,
			importapp.WithArchive(archive),
			importapp.WithMaxRows(cfg.Relief.MaxImportRows),
		),
	}, nil
}

// withLogger returns ctx carrying the env logger, so the services log
// through it instead of the no-op default.
func (e *env) withLogger(ctx context.Context) context.Context {
	return logger.WithContext(ctx, e.log)
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		e.log.Error("Error closing database", zap.Error(err))
	}
	_ = logger.Sync(e.log)
}
