package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"stockroom/internal/caching"
	"stockroom/internal/config"
	"stockroom/internal/events"
	"stockroom/internal/handlers"
	"stockroom/internal/jobs"
	"stockroom/internal/jobs/background"
	"stockroom/internal/middleware"
	"stockroom/internal/repositories"
	"stockroom/internal/services"
	"stockroom/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load(os.Getenv("STOCKROOM_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Server.JWTSecret == "" {
		cfg.Server.JWTSecret = random.String(32)
		log.Printf("WARNING: Using generated JWT secret, tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database.URL, database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime.Duration,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if cfg.Database.EnsureSchema {
		if err := database.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
	}

	cacheService := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	minioService, err := services.NewMinioService(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.UseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}
	if err := minioService.EnsureBucketExists(ctx, cfg.MinIO.Bucket); err != nil {
		// exports fail until storage is reachable; listing keeps working
		log.Printf("WARNING: could not ensure bucket %s: %v", cfg.MinIO.Bucket, err)
	}

	var (
		publisher  events.Publisher = events.NoopBus{}
		subscriber events.Subscriber
		natsBus    *events.NATSBus
	)
	if cfg.NATS.URL != "" {
		natsBus, err = events.NewNATSBus(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer natsBus.Close()
		publisher = natsBus
		if cfg.Jobs.EvaluateOnChange {
			subscriber = natsBus
		}
	} else {
		log.Printf("NATS url not set, change events are disabled")
	}

	// Repositories
	stockRepo := repositories.NewStockLevelRepo(pool)
	adjustmentRepo := repositories.NewAdjustmentRepo(pool)
	alertRepo := repositories.NewAlertRepo(pool)
	ruleRepo := repositories.NewAlertRuleRepo(pool)
	transferRepo := repositories.NewTransferRepo(pool)
	inventoryRepo := repositories.NewWarehouseInventoryRepo(pool)

	// Services
	collections := services.NewCollections(cacheService, publisher, cfg.Cache.CollectionTTL.Duration)
	views := services.NewViews(cfg.Listing.PageSizes, cfg.Listing.DefaultPageSize)
	thresholds := cfg.Listing.Thresholds

	stockService := services.NewStockLevelService(stockRepo, adjustmentRepo, collections, thresholds, views.StockLevels)
	adjustmentService := services.NewAdjustmentService(adjustmentRepo, collections, views.Adjustments)
	alertService := services.NewAlertService(alertRepo, ruleRepo, collections, views.Alerts)
	transferService := services.NewTransferService(transferRepo, collections, views.Transfers)
	inventoryService := services.NewWarehouseInventoryService(inventoryRepo, collections, thresholds, views.WarehouseInventory)
	exportService := services.NewExportService(stockService, adjustmentService, alertService, transferService, inventoryService,
		minioService, cfg.MinIO.Bucket, cfg.Exports.URLExpiry.Duration)

	// Background jobs
	evaluator := jobs.NewAlertEvaluator(stockRepo, ruleRepo, alertRepo, collections, thresholds)
	scheduler, err := background.NewJobScheduler(evaluator, subscriber, cfg.Jobs.AlertInterval.Duration)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}

	// Handlers
	stockHandlers := handlers.NewStockLevelHandlers(stockService)
	adjustmentHandlers := handlers.NewAdjustmentHandlers(adjustmentService)
	alertHandlers := handlers.NewAlertHandlers(alertService)
	transferHandlers := handlers.NewTransferHandlers(transferService)
	warehouseHandlers := handlers.NewWarehouseHandlers(inventoryService)
	exportHandlers := handlers.NewExportHandlers(exportService)

	checks := []handlers.DependencyCheck{
		{Name: "database", Critical: true, Check: pool.Ping},
		{Name: "redis", Check: cacheService.Ping},
		{Name: "minio", Check: func(ctx context.Context) error { return minioService.Ping(ctx, cfg.MinIO.Bucket) }},
	}
	if natsBus != nil {
		checks = append(checks, handlers.DependencyCheck{
			Name:  "nats",
			Check: func(context.Context) error { return natsBus.Ping() },
		})
	}
	healthHandlers := handlers.NewHealthHandlers(checks, scheduler.GetJobStatus)

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	v1 := versionMiddleware.VersionRoute(e, "v1")
	v1.Use(middleware.JWTMiddleware(cfg.Server.JWTSecret))

	stock := v1.Group("/stock-levels")
	stock.GET("", stockHandlers.ListStockLevels)
	stock.POST("/bulk-delete", stockHandlers.BulkDeleteStockLevels)
	stock.POST("/labels", stockHandlers.PrintLabels)
	stock.DELETE("/:id", stockHandlers.DeleteStockLevel)
	stock.POST("/:id/adjustments", stockHandlers.AdjustStock)
	stock.GET("/:id/barcode", stockHandlers.GetBarcode)

	v1.GET("/adjustments", adjustmentHandlers.ListAdjustments)

	alerts := v1.Group("/alerts")
	alerts.GET("", alertHandlers.ListAlerts)
	alerts.POST("/bulk-delete", alertHandlers.BulkDeleteAlerts)
	alerts.PUT("/:id/status", alertHandlers.UpdateAlertStatus)
	alerts.DELETE("/:id", alertHandlers.DeleteAlert)

	rules := v1.Group("/alert-rules")
	rules.GET("", alertHandlers.ListAlertRules)
	rules.POST("", alertHandlers.CreateAlertRule)
	rules.DELETE("/:id", alertHandlers.DeleteAlertRule)

	transfers := v1.Group("/transfers")
	transfers.GET("", transferHandlers.ListTransfers)
	transfers.POST("", transferHandlers.CreateTransfer)
	transfers.PUT("/:id/status", transferHandlers.UpdateTransferStatus)
	transfers.DELETE("/:id", transferHandlers.DeleteTransfer)

	v1.GET("/warehouses/:id/inventory", warehouseHandlers.ListWarehouseInventory)

	v1.POST("/exports/:view", exportHandlers.CreateExport,
		middleware.RateLimit(cacheService, "exports", cfg.Exports.RateLimit, time.Minute))

	go func() {
		log.Printf("Stockroom server v%s starting on port %d", version, cfg.Server.Port)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	if err := scheduler.Stop(); err != nil {
		log.Printf("Job scheduler shutdown error: %v", err)
	}
}
