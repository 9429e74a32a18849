package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/dishware/backend/internal/application/inventory"
	"github.com/dishware/backend/internal/domain/shared"
	"github.com/dishware/backend/internal/infrastructure/auth"
	"github.com/dishware/backend/internal/infrastructure/cache"
	"github.com/dishware/backend/internal/infrastructure/config"
	"github.com/dishware/backend/internal/infrastructure/event"
	"github.com/dishware/backend/internal/infrastructure/logger"
	"github.com/dishware/backend/internal/infrastructure/persistence"
	"github.com/dishware/backend/internal/infrastructure/telemetry"
	"github.com/dishware/backend/internal/interfaces/http/handler"
	"github.com/dishware/backend/internal/interfaces/http/middleware"
	"github.com/dishware/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Dishware Backend API
//	@version		1.0
//	@description	Multi-outlet dishware inventory core: item registry, movement ledger, allocation tracking and monthly audits.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Dishware Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Distributed tracing: spans flow to the OTLP collector when enabled,
	// otherwise the provider stays a no-op
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel,
		logger.WithSlowThreshold(cfg.Log.SlowQueryThreshold))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Statement-level spans with slow query detection, under the request span
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled,
		LogFullSQL:      cfg.Telemetry.LogFullSQL,
		SlowQueryThresh: cfg.Log.SlowQueryThreshold,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	itemRepo := persistence.NewGormItemRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	allocationRepo := persistence.NewGormAllocationRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize application services
	itemService := inventoryapp.NewItemService(itemRepo, movementRepo)
	ledgerService := inventoryapp.NewLedgerService(txScope, movementRepo, itemRepo, nil)
	allocationService := inventoryapp.NewAllocationService(allocationRepo, movementRepo, itemRepo)
	auditService := inventoryapp.NewAuditService(txScope, auditRepo, itemRepo)

	// Idempotency store for movement deduplication: Redis when available,
	// otherwise a per-instance in-memory store
	if cfg.Idempotency.Enabled {
		idempotencyCfg := shared.IdempotencyConfig{Enabled: true, TTL: cfg.Idempotency.TTL}
		if cfg.Redis.Enabled {
			store, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
				Host:     cfg.Redis.Host,
				Port:     cfg.Redis.Port,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err != nil {
				log.Fatal("Failed to connect to Redis", zap.Error(err))
			}
			defer func() {
				if err := store.Close(); err != nil {
					log.Error("Error closing Redis idempotency store", zap.Error(err))
				}
			}()
			ledgerService.SetIdempotencyStore(store, idempotencyCfg)
			log.Info("Idempotency store enabled", zap.String("backend", "redis"))
		} else {
			store := cache.NewInMemoryIdempotencyStore()
			defer func() {
				_ = store.Close()
			}()
			ledgerService.SetIdempotencyStore(store, idempotencyCfg)
			log.Info("Idempotency store enabled", zap.String("backend", "memory"))
		}
	}

	// Initialize event bus: every aggregate publishes its domain events here
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLogHandler(log))

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	itemService.SetEventPublisher(eventBus)
	ledgerService.SetEventPublisher(eventBus)
	auditService.SetEventPublisher(eventBus)

	// Background sweep that archives idle discontinued items
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go runArchiveSweep(sweepCtx, itemRepo, itemService, cfg.Audit.ArchiveSweepInterval, log)

	// Identity: tokens are issued by the central identity service; this
	// instance only validates them
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	itemHandler := handler.NewItemHandler(itemService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	allocationHandler := handler.NewAllocationHandler(allocationService)
	auditHandler := handler.NewAuditHandler(auditService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Tracing - Open the request span
	// 3. SpanErrorMarker - Mark 4xx/5xx spans as failed
	// 4. Recovery - Catch panics
	// 5. Logger - Log requests
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	// 8. BodyLimit - Limit request body size
	// 9. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.App.Name,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	publicPaths := []string{
		"/api/v1/ping",
		"/api/v1/system/ping",
		"/api/v1/system/info",
	}

	// JWT authentication, then outlet scoping for the whole API surface
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  publicPaths,
		Logger:     log,
	}))
	r.Use(middleware.OutletMiddlewareWithConfig(middleware.OutletMiddlewareConfig{
		HeaderEnabled: true,
		JWTEnabled:    true,
		SkipPaths:     publicPaths,
		Required:      true,
		Logger:        log,
	}))
	// Token claims are available now, so re-enrich the request span
	r.Use(middleware.TracingAttributeInjector())

	// Item registry
	itemRoutes := router.NewDomainGroup("items", "/items")
	itemRoutes.POST("", itemHandler.CreateItem)
	itemRoutes.GET("", itemHandler.ListItems)
	itemRoutes.POST("/archive-idle", itemHandler.ArchiveIdleItems)
	itemRoutes.GET("/:id", itemHandler.GetItem)
	itemRoutes.PUT("/:id", itemHandler.UpdateItem)
	itemRoutes.DELETE("/:id", itemHandler.DeleteItem)
	itemRoutes.POST("/:id/activate", itemHandler.ActivateItem)
	itemRoutes.POST("/:id/discontinue", itemHandler.DiscontinueItem)
	itemRoutes.POST("/:id/archive", itemHandler.ArchiveItem)
	// Per-item ledger projections
	itemRoutes.GET("/:id/movements", ledgerHandler.ListItemMovements)
	itemRoutes.GET("/:id/balances", ledgerHandler.GetBalances)
	itemRoutes.POST("/:id/balances/rebuild", ledgerHandler.RebuildBalances)
	itemRoutes.GET("/:id/allocations", allocationHandler.ListItemAllocations)

	// Movement ledger: the single write path for every stock change
	movementRoutes := router.NewDomainGroup("movements", "/movements")
	movementRoutes.POST("", ledgerHandler.RecordMovement)
	movementRoutes.GET("", ledgerHandler.ListMovements)
	movementRoutes.GET("/:id", ledgerHandler.GetMovement)

	// Allocation tracking per customer reference
	allocationRoutes := router.NewDomainGroup("allocations", "/allocations")
	allocationRoutes.GET("/references/:type/:refId", allocationHandler.GetReferenceOutstanding)
	allocationRoutes.GET("/references/:type/:refId/closable", allocationHandler.CheckReferenceClosable)
	allocationRoutes.POST("/references/:type/:refId/close", allocationHandler.CloseReference)

	// Monthly audit workflow
	auditRoutes := router.NewDomainGroup("audits", "/audits")
	auditRoutes.POST("", auditHandler.CreateAudit)
	auditRoutes.GET("", auditHandler.ListAudits)
	auditRoutes.GET("/:id", auditHandler.GetAudit)
	auditRoutes.POST("/:id/start", auditHandler.StartCounting)
	auditRoutes.POST("/:id/counts", auditHandler.RecordCount)
	auditRoutes.POST("/:id/lines/:itemId/review", auditHandler.ReviewLine)
	auditRoutes.POST("/:id/submit", auditHandler.SubmitAudit)
	auditRoutes.POST("/:id/approve", auditHandler.ApproveAudit)
	auditRoutes.POST("/:id/reject", auditHandler.RejectAudit)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(itemRoutes).
		Register(movementRoutes).
		Register(allocationRoutes).
		Register(auditRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
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

	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runArchiveSweep periodically archives discontinued items that have held
// zero stock and seen no movement for twelve months, outlet by outlet.
func runArchiveSweep(
	ctx context.Context,
	itemRepo *persistence.GormItemRepository,
	itemService *inventoryapp.ItemService,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		outlets, err := itemRepo.DistinctOutlets(ctx)
		if err != nil {
			log.Error("Archive sweep: failed to list outlets", zap.Error(err))
			continue
		}

		total := 0
		for _, outletID := range outlets {
			archived, err := itemService.ArchiveIdleItems(ctx, outletID)
			if err != nil {
				log.Error("Archive sweep failed for outlet",
					zap.String("outlet_id", outletID.String()),
					zap.Error(err),
				)
				continue
			}
			total += archived
		}
		if total > 0 {
			log.Info("Archive sweep completed", zap.Int("items_archived", total))
		}
	}
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
