package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	balanceapp "github.com/erp/reconciler/internal/application/balance"
	financeapp "github.com/erp/reconciler/internal/application/finance"
	tradeapp "github.com/erp/reconciler/internal/application/trade"
	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/erp/reconciler/internal/infrastructure/auth"
	"github.com/erp/reconciler/internal/infrastructure/cache"
	"github.com/erp/reconciler/internal/infrastructure/config"
	"github.com/erp/reconciler/internal/infrastructure/event"
	"github.com/erp/reconciler/internal/infrastructure/lock"
	"github.com/erp/reconciler/internal/infrastructure/logger"
	"github.com/erp/reconciler/internal/infrastructure/persistence"
	"github.com/erp/reconciler/internal/infrastructure/scheduler"
	"github.com/erp/reconciler/internal/infrastructure/storage"
	"github.com/erp/reconciler/internal/infrastructure/telemetry"
	"github.com/erp/reconciler/internal/interfaces/http/handler"
	"github.com/erp/reconciler/internal/interfaces/http/middleware"
	"github.com/erp/reconciler/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

// largeBalanceChange is the absolute change above which balance events are logged at warn level
const largeBalanceChange = 10000

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	baseLog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	if cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = version
	}
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log := providers.BridgeLogger(baseLog, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
	defer func() { _ = log.Sync() }()

	log.Info("Starting balance reconciler",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormConfig{
		Level:         logger.MapGormLogLevel(cfg.Log.Level),
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
		FullSQL:       cfg.Telemetry.DBLogFullSQL,
	})
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.DBName),
	)

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	scope := persistence.NewGormTransactionScope(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	returnSettings := persistence.NewReturnSettingsProvider(
		persistence.NewGormTenantSettingRepository(db.DB),
		trade.ReturnSettings{
			Enabled:         cfg.Returns.EnabledDefault,
			RequireApproval: cfg.Returns.RequireApprovalDefault,
		},
	)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	journal := event.NewJournalHandler(log)
	eventBus.Subscribe(journal, journal.EventTypes()...)
	balanceChanged := balanceapp.NewBalanceChangedHandler(log, largeBalanceChange)
	eventBus.Subscribe(balanceChanged, balanceChanged.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	balanceService := balanceapp.NewService(scope,
		balanceapp.WithEventPublisher(eventBus),
		balanceapp.WithLogger(log),
		balanceapp.WithMetrics(providers.Metrics),
		balanceapp.WithWorkers(cfg.Reconciliation.Workers),
	)
	driftDetector := balanceapp.NewDriftDetector(scope, balanceService)
	saleReturnService := tradeapp.NewSaleReturnService(scope, balanceService, returnSettings,
		tradeapp.WithReturnEventPublisher(eventBus),
		tradeapp.WithReturnLogger(log),
	)
	saleService := tradeapp.NewSaleService(scope, balanceService, eventBus, log)
	paymentService := financeapp.NewPaymentService(scope, balanceService, eventBus, log)
	creditNoteService := financeapp.NewCreditNoteService(scope, balanceService, eventBus, log)

	// Redis backs the reconciliation lock and the idempotency store when configured
	redisClient := newRedisClient(cfg, log)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis client", zap.Error(err))
			}
		}()
	}

	// Nightly reconciliation
	var (
		jobScheduler *scheduler.Scheduler
		cronTrigger  *scheduler.CronTrigger
	)
	if cfg.Scheduler.Enabled && cfg.Reconciliation.Enabled {
		var locker lock.Locker
		if redisClient != nil {
			locker = lock.NewRedisLocker(redisClient, cfg.Reconciliation.LockPrefix)
		} else {
			log.Warn("Reconciliation lock is process-local")
			locker = lock.NewMemoryLocker()
		}

		var executorOpts []scheduler.ExecutorOption
		if cfg.Storage.Enabled {
			objects, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
			if err != nil {
				log.Fatal("Failed to initialize object storage", zap.Error(err))
			}
			if err := objects.EnsureBucket(ctx); err != nil {
				log.Warn("Drift report bucket not ready", zap.String("bucket", objects.Bucket()), zap.Error(err))
			}
			executorOpts = append(executorOpts, scheduler.WithReportArchiver(
				storage.NewDriftReportArchive(objects, cfg.Storage.Prefix, log),
			))
		}

		executor := scheduler.NewBalanceReconciliationExecutor(driftDetector, locker, cfg.Reconciliation.LockTTL, log, executorOpts...)
		jobScheduler = scheduler.NewScheduler(scheduler.SchedulerConfig{
			Enabled:           true,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}, executor, log)
		cronTrigger = scheduler.NewCronTrigger(scheduler.CronTriggerConfig{
			RunHour:   cfg.Reconciliation.RunHour,
			RunMinute: cfg.Reconciliation.RunMinute,
		}, jobScheduler, tenantRepo, log)

		if err := jobScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start reconciliation scheduler", zap.Error(err))
		}
		if err := cronTrigger.Start(ctx); err != nil {
			log.Fatal("Failed to start reconciliation trigger", zap.Error(err))
		}
	} else {
		log.Info("Nightly reconciliation disabled")
	}

	// Idempotency-Key handling
	var idempotency middleware.IdempotencyStore
	if cfg.Idempotency.Enabled {
		if redisClient != nil {
			idempotency = cache.NewRedisIdempotencyStore(redisClient, cfg.Idempotency.KeyPrefix)
		} else {
			memStore := cache.NewInMemoryIdempotencyStore()
			defer memStore.Close()
			idempotency = memStore
		}
	}

	// HTTP
	var meter metric.Meter
	if providers.Meter.IsEnabled() {
		meter = providers.Meter.Meter("balance-reconciler/http")
	}
	engine, err := router.New(router.Deps{
		HTTP:              cfg.HTTP,
		ServiceName:       cfg.Telemetry.ServiceName,
		Logger:            log,
		Verifier:          auth.NewVerifier(cfg.JWT),
		Tenants:           tenantRepo,
		AllowTenantHeader: cfg.App.Env == "development",
		Meter:             meter,
		Idempotency:       idempotency,
		IdempotencyTTL:    cfg.Idempotency.TTL,
		Handlers: router.Handlers{
			Health:      handler.NewHealthHandler(db, cfg.App.Name, version),
			SaleReturns: handler.NewSaleReturnHandler(saleReturnService),
			Sales:       handler.NewSaleHandler(saleService),
			Finance:     handler.NewFinanceHandler(paymentService, creditNoteService),
			Balances:    handler.NewBalanceHandler(balanceService, driftDetector),
		},
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if cronTrigger != nil {
		if err := cronTrigger.Stop(shutdownCtx); err != nil {
			log.Error("Failed to stop reconciliation trigger", zap.Error(err))
		}
	}
	if jobScheduler != nil {
		if err := jobScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Failed to stop reconciliation scheduler", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop event bus", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown telemetry", zap.Error(err))
	}

	log.Info("Server exited")
}

// newRedisClient returns nil when Redis is not configured or unreachable.
// Callers then fall back to process-local state.
func newRedisClient(cfg *config.Config, log *zap.Logger) *redis.Client {
	if cfg.Redis.Host == "" {
		log.Warn("Redis not configured")
		return nil
	}
	client, err := lock.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		return nil
	}
	return client
}
