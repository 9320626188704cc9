package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	distributionapp "github.com/fpm2805/ayuda-penco/internal/application/distribution"
	importapp "github.com/fpm2805/ayuda-penco/internal/application/import"
	registryapp "github.com/fpm2805/ayuda-penco/internal/application/registry"
	reportapp "github.com/fpm2805/ayuda-penco/internal/application/report"
	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/auth"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/cache"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/config"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/logger"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/metrics"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/persistence"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/storage"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/telemetry"
	"github.com/fpm2805/ayuda-penco/internal/interfaces/http/handler"
	"github.com/fpm2805/ayuda-penco/internal/interfaces/http/middleware"
	"github.com/fpm2805/ayuda-penco/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

// Login attempts allowed per client IP and window
const (
	loginAttempts = 5
	loginWindow   = time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting relief distribution service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", Version),
	)

	loc, err := time.LoadLocation(cfg.Relief.TimeZone)
	if err != nil {
		log.Fatal("Invalid relief time zone", zap.String("timezone", cfg.Relief.TimeZone), zap.Error(err))
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Tracing
	tp, err := telemetry.NewTracerProvider(rootCtx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)

	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.App.Env == "development",
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	// Repositories
	beneficiaryRepo := persistence.NewGormBeneficiaryRepository(db.DB)
	deliveryRepo := persistence.NewGormDeliveryRepository(db.DB)
	catalogRepo := persistence.NewGormCatalogRepository(db.DB)

	// Supporting infrastructure
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
	}

	idempotencyStore := cache.NewIdempotencyStore(rootCtx, cfg.Redis, log)
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	archive, err := storage.NewFileArchive(rootCtx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize file archive", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	admin := auth.NewAdminAuthenticator(cfg.Admin, jwtService)
	if cfg.Admin.PasswordHash == "" {
		log.Warn("admin.password_hash is empty, admin login is disabled")
	}

	// Application services
	directory := registryapp.NewDirectoryService(beneficiaryRepo, registryapp.WithMetrics(m))
	ledger := distributionapp.NewLedgerService(deliveryRepo, catalogRepo, distributionapp.WithMetrics(m))
	guard := distributionapp.NewHouseholdGuard(directory, ledger, loc, distributionapp.WithMetrics(m))
	catalog := distributionapp.NewCatalogService(catalogRepo)
	lookup := distributionapp.NewLookupService(directory, guard, ledger, catalog, loc)
	reports := reportapp.NewReportService(ledger, loc, cfg.Relief.TopRecipients, archive)
	peopleImport := importapp.NewPeopleImportService(directory,
		importapp.WithMetrics(m),
		importapp.WithArchive(archive),
		importapp.WithMaxRows(cfg.Relief.MaxImportRows),
	)
	deliveryImport := importapp.NewDeliveryImportService(ledger, loc, cfg.Relief.ImportCenter, cfg.Relief.ImportOfficer,
		importapp.WithMetrics(m),
		importapp.WithArchive(archive),
		importapp.WithMaxRows(cfg.Relief.MaxImportRows),
	)

	// Handlers
	systemHandler := handler.NewSystemHandler(db, Version)
	lookupHandler := handler.NewLookupHandler(lookup)
	beneficiaryHandler := handler.NewBeneficiaryHandler(directory, ledger, guard, loc)
	catalogHandler := handler.NewCatalogHandler(catalog)
	authHandler := handler.NewAuthHandler(admin)
	importHandler := handler.NewImportHandler(peopleImport, deliveryImport, cfg.HTTP.MaxBodySize)
	reportHandler := handler.NewReportHandler(reports)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
		AllowMethods:  cfg.HTTP.CORSAllowMethods,
		AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders: []string{"X-Request-ID", handler.ArchiveKeyHeader, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.Session(distribution.Session{
		Center:  cfg.Relief.DefaultCenter,
		Officer: cfg.Relief.DefaultOfficer,
	}))
	engine.Use(middleware.TraceAttributes())
	if m != nil {
		engine.Use(middleware.Metrics(m))
		engine.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Operator routes: no login, session from headers
	lookupRoutes := router.NewDomainGroup("lookup", "/lookup")
	lookupRoutes.GET("", lookupHandler.Lookup)
	r.Register(lookupRoutes)

	beneficiaryRoutes := router.NewDomainGroup("beneficiaries", "/beneficiaries")
	beneficiaryRoutes.GET("", beneficiaryHandler.List)
	beneficiaryRoutes.POST("", beneficiaryHandler.Register)
	beneficiaryRoutes.GET("/:key", beneficiaryHandler.Get)
	beneficiaryRoutes.GET("/:key/deliveries", beneficiaryHandler.History)
	beneficiaryRoutes.POST("/:key/deliveries",
		middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL),
		beneficiaryHandler.RecordDelivery,
	)
	beneficiaryRoutes.GET("/:key/household-alert", beneficiaryHandler.HouseholdAlert)
	r.Register(beneficiaryRoutes)

	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("", catalogHandler.List)
	catalogRoutes.POST("", catalogHandler.Add)
	r.Register(catalogRoutes)

	// Admin login, rate limited per client IP
	loginLimiter := middleware.NewRateLimiter(loginAttempts, loginWindow)
	loginLimiter.StartCleanup(rootCtx)
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", middleware.RateLimit(loginLimiter), authHandler.Login)
	r.Register(authRoutes)

	// Admin routes
	importRoutes := router.NewDomainGroup("imports", "/imports")
	importRoutes.Use(middleware.JWTAuth(jwtService, log), middleware.RequirePermission(auth.PermissionImportWrite))
	importRoutes.POST("/preview", importHandler.Preview)
	importRoutes.POST("/people", importHandler.ImportPeople)
	importRoutes.POST("/deliveries", importHandler.ImportDeliveries)
	r.Register(importRoutes)

	reportRoutes := router.NewDomainGroup("reports", "/reports")
	reportRoutes.Use(middleware.JWTAuth(jwtService, log), middleware.RequirePermission(auth.PermissionReportsRead))
	reportRoutes.GET("/summary", reportHandler.Summary)
	reportRoutes.GET("/centers", reportHandler.Centers)
	reportRoutes.GET("/recipients", reportHandler.Recipients)
	reportRoutes.GET("/items", reportHandler.Items)
	reportRoutes.GET("/export", reportHandler.Export)
	r.Register(reportRoutes)

	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
