package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/application/admin"
	"github.com/syncbridge/backend/internal/application/ingest"
	"github.com/syncbridge/backend/internal/application/ordersync"
	"github.com/syncbridge/backend/internal/application/productsync"
	"github.com/syncbridge/backend/internal/application/stocksync"
	"github.com/syncbridge/backend/internal/domain/channel"
	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/syncjob"
	"github.com/syncbridge/backend/internal/infrastructure/cache"
	"github.com/syncbridge/backend/internal/infrastructure/config"
	"github.com/syncbridge/backend/internal/infrastructure/credentials"
	"github.com/syncbridge/backend/internal/infrastructure/fulfillment"
	"github.com/syncbridge/backend/internal/infrastructure/logger"
	"github.com/syncbridge/backend/internal/infrastructure/notify"
	"github.com/syncbridge/backend/internal/infrastructure/persistence"
	"github.com/syncbridge/backend/internal/infrastructure/platform"
	"github.com/syncbridge/backend/internal/infrastructure/queue"
	"github.com/syncbridge/backend/internal/infrastructure/scheduler"
	"github.com/syncbridge/backend/internal/interfaces/http/handler"
	"github.com/syncbridge/backend/internal/interfaces/http/middleware"
	"github.com/syncbridge/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting SyncBridge",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	windowStore, err := cache.NewWindowStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create window store", zap.Error(err))
	}
	defer func() {
		if err := windowStore.Close(); err != nil {
			log.Error("Error closing window store", zap.Error(err))
		}
	}()

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	productChannelRepo := persistence.NewGormProductChannelRepository(db.DB)
	conflictRepo := persistence.NewGormConflictRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)
	channelRepo := persistence.NewGormChannelRepository(db.DB)
	methodRepo := persistence.NewGormShippingMethodRepository(db.DB)
	mappingRepo := persistence.NewGormShippingMappingRepository(db.DB)
	mismatchRepo := persistence.NewGormShippingMismatchRepository(db.DB)
	jobRepo := persistence.NewGormSyncJobRepository(db.DB)
	logRepo := persistence.NewGormSyncLogRepository(db.DB)

	// Outbound clients
	credResolver := credentials.NewEnvCredentialResolver(channelRepo, cfg.Platform.CredentialEnvPrefix)

	ffnClient, err := fulfillment.NewClient(&fulfillment.Config{
		BaseURL: cfg.Sync.FfnBaseURL,
		APIKey:  cfg.Sync.FfnAPIKey,
	})
	if err != nil {
		log.Fatal("Failed to create fulfillment client", zap.Error(err))
	}

	registry := platform.NewRegistry()
	registerPlatformAdapters(registry, cfg.Platform, credResolver, log)

	notifier := notify.NewWebhookNotifier(cfg.Sync.NotifyWebhookURL, log)

	// Application services
	jobOpts := syncjob.Options{
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}
	shippingResolver := ordersync.NewShippingResolver(mappingRepo, mismatchRepo, notifier)
	orderSvc := ordersync.NewService(orderRepo, channelRepo, shippingResolver, jobRepo, logRepo, ordersync.WithJobOptions(jobOpts))
	productSvc := productsync.NewService(productRepo, productChannelRepo, conflictRepo, channelRepo, jobRepo, logRepo, productsync.WithJobOptions(jobOpts))
	stockSvc := stocksync.NewService(stockRepo, channelRepo, ffnClient, jobRepo, logRepo, stocksync.WithJobOptions(jobOpts))
	adminSvc := admin.NewService(jobRepo, conflictRepo, mismatchRepo, mappingRepo, methodRepo, logRepo)

	windows := shared.WindowConfig{
		DedupTTL: cfg.Sync.DedupWindow,
		EchoTTL:  cfg.Sync.EchoWindow,
	}
	ingestSvc := ingest.NewService(windowStore, windows, logRepo, orderSvc, productSvc)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Queue dispatcher
	var dispatcher *queue.Dispatcher
	if cfg.Queue.DispatcherEnabled {
		dispatcher = queue.NewDispatcher(jobRepo, queue.DispatcherConfig{
			BatchSize:        cfg.Queue.BatchSize,
			PollInterval:     cfg.Queue.PollInterval,
			WorkersPerQueue:  cfg.Queue.WorkersPerQueue,
			CleanupEnabled:   cfg.Queue.CleanupEnabled,
			CleanupRetention: cfg.Queue.CleanupRetention,
			CleanupInterval:  time.Hour,
		}, log)
		dispatcher.Register(syncjob.QueueOrderToFfn,
			ordersync.NewFfnPushHandler(orderRepo, methodRepo, ffnClient, logRepo))
		dispatcher.Register(syncjob.QueueOrderToPlatform,
			ordersync.NewPlatformPushHandler(orderRepo, channelRepo, registry, logRepo))
		dispatcher.Register(syncjob.QueueStockToPlatform,
			stocksync.NewPushHandler(stockRepo, productRepo, productChannelRepo, channelRepo, registry, logRepo))
		dispatcher.Register(syncjob.QueueProductToPlatform,
			productsync.NewPushHandler(productRepo, productChannelRepo, channelRepo, registry, logRepo))

		if err := dispatcher.Start(rootCtx); err != nil {
			log.Fatal("Failed to start queue dispatcher", zap.Error(err))
		}
	}

	// Background stock pulls
	stockScheduler := scheduler.NewStockScheduler(scheduler.StockSchedulerConfig{
		ReconcileInterval:   cfg.Sync.StockReconcileInterval,
		InboundPollInterval: cfg.Sync.InboundPollInterval,
	}, stockSvc, log)
	if err := stockScheduler.Start(rootCtx); err != nil {
		log.Fatal("Failed to start stock scheduler", zap.Error(err))
	}

	// HTTP surface
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	systemHandler := handler.NewSystemHandler(version, db.Ping)
	engine.GET("/health", systemHandler.Health)

	webhookHandler := handler.NewWebhookHandler(ingestSvc)
	engine.POST("/webhooks/:channelID", middleware.WebhookSignature(credResolver), webhookHandler.Receive)

	r := router.NewRouter(engine)
	r.Register(handler.NewOrderHandler(orderSvc)).
		Register(handler.NewProductHandler(productSvc)).
		Register(handler.NewStockHandler(stockSvc)).
		Register(handler.NewAdminHandler(adminSvc)).
		Register(systemHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := stockScheduler.Stop(shutdownCtx); err != nil {
		log.Error("Stock scheduler shutdown failed", zap.Error(err))
	}
	if dispatcher != nil {
		if err := dispatcher.Stop(shutdownCtx); err != nil {
			log.Error("Dispatcher shutdown failed", zap.Error(err))
		}
	}
	rootCancel()

	log.Info("Server exited gracefully")
}

// registerPlatformAdapters wires the configured storefront adapters.
// Channels of an unconfigured type fail their jobs with a terminal
// unknown-channel error instead of blocking startup.
func registerPlatformAdapters(registry *platform.Registry, cfg config.PlatformConfig, resolver channel.CredentialResolver, log *zap.Logger) {
	if cfg.ShopwareBaseURL != "" {
		swCfg := platform.NewShopwareConfig(cfg.ShopwareBaseURL)
		if cfg.ShopwareTimeoutSeconds > 0 {
			swCfg.TimeoutSeconds = cfg.ShopwareTimeoutSeconds
		}
		adapter, err := platform.NewShopwareAdapter(swCfg, resolver)
		if err != nil {
			log.Fatal("Failed to create shopware adapter", zap.Error(err))
		}
		registry.Register(adapter)
		log.Info("Registered platform adapter", zap.String("type", string(channel.ChannelTypeShopware)))
	}

	if cfg.ShopifyShopDomain != "" {
		shCfg := platform.NewShopifyConfig(cfg.ShopifyShopDomain)
		if cfg.ShopifyAPIVersion != "" {
			shCfg.APIVersion = cfg.ShopifyAPIVersion
		}
		if cfg.ShopifyTimeoutSeconds > 0 {
			shCfg.TimeoutSeconds = cfg.ShopifyTimeoutSeconds
		}
		adapter, err := platform.NewShopifyAdapter(shCfg, resolver)
		if err != nil {
			log.Fatal("Failed to create shopify adapter", zap.Error(err))
		}
		registry.Register(adapter)
		log.Info("Registered platform adapter", zap.String("type", string(channel.ChannelTypeShopify)))
	}
}
