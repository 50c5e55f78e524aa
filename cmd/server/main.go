package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	catalogapp "github.com/damneddesigns/storefront/internal/application/catalog"
	checkoutapp "github.com/damneddesigns/storefront/internal/application/checkout"
	customerapp "github.com/damneddesigns/storefront/internal/application/customer"
	paymentapp "github.com/damneddesigns/storefront/internal/application/payment"
	promotionapp "github.com/damneddesigns/storefront/internal/application/promotion"
	seoapp "github.com/damneddesigns/storefront/internal/application/seo"
	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/damneddesigns/storefront/internal/infrastructure/auth"
	"github.com/damneddesigns/storefront/internal/infrastructure/cache"
	"github.com/damneddesigns/storefront/internal/infrastructure/config"
	"github.com/damneddesigns/storefront/internal/infrastructure/email"
	infrafulfillment "github.com/damneddesigns/storefront/internal/infrastructure/fulfillment"
	"github.com/damneddesigns/storefront/internal/infrastructure/gateway"
	"github.com/damneddesigns/storefront/internal/infrastructure/health"
	"github.com/damneddesigns/storefront/internal/infrastructure/logger"
	"github.com/damneddesigns/storefront/internal/infrastructure/persistence"
	"github.com/damneddesigns/storefront/internal/infrastructure/printing"
	"github.com/damneddesigns/storefront/internal/infrastructure/ratelimit"
	"github.com/damneddesigns/storefront/internal/infrastructure/scheduler"
	"github.com/damneddesigns/storefront/internal/infrastructure/search"
	"github.com/damneddesigns/storefront/internal/infrastructure/storage"
	"github.com/damneddesigns/storefront/internal/infrastructure/telemetry"
	"github.com/damneddesigns/storefront/internal/interfaces/http/handler"
	"github.com/damneddesigns/storefront/internal/interfaces/http/middleware"
	"github.com/damneddesigns/storefront/internal/interfaces/http/router"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer stopWithTimeout(tp.Shutdown, log, "telemetry")

	mp, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer stopWithTimeout(mp.Shutdown, log, "metrics")

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLogger(log, gormlogger.Warn))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
	}()
	if tp.IsEnabled() {
		if err := db.DB.Use(otelgorm.NewPlugin()); err != nil {
			return fmt.Errorf("install gorm tracing: %w", err)
		}
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warn("Failed to close redis client", zap.Error(err))
		}
	}()

	productRepo := persistence.NewGormProductRepository(db.DB)
	collectionRepo := persistence.NewGormCollectionRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	promotionRepo := persistence.NewGormPromotionRepository(db.DB)
	shippingRepo := persistence.NewGormShippingMethodRepository(db.DB)
	fulfillmentRepo := persistence.NewGormFulfillmentRepository(db.DB)

	bus := shared.NewInProcessEventBus(func(event shared.DomainEvent, err error) {
		log.Error("Event handler failed",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	})

	if cfg.Email.Enabled {
		sender, err := email.NewSMTPSender(cfg.Email, log)
		if err != nil {
			return fmt.Errorf("init email sender: %w", err)
		}
		notifier := email.NewOrderNotifier(sender, cfg.App.ShopURL, log)
		bus.Subscribe(notifier, notifier.EventTypes()...)
	}

	tokens := auth.NewJWTService(cfg.JWT)

	catalogSvc := catalogapp.NewService(productRepo, collectionRepo, log)
	if cfg.Search.Enabled {
		esClient, err := search.NewClient(cfg.Search, log)
		if err != nil {
			return fmt.Errorf("init search client: %w", err)
		}
		catalogSvc.SetSearcher(search.NewProductIndex(esClient, cfg.Search.Index, log))
	}
	if cfg.Storage.Enabled {
		assetStorage, err := storage.NewS3AssetStorage(&cfg.Storage, log)
		if err != nil {
			return fmt.Errorf("init asset storage: %w", err)
		}
		if err := assetStorage.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("ensure asset bucket: %w", err)
		}
		catalogSvc.SetAssetStorage(assetStorage)
	}

	couponSvc := promotionapp.NewService(promotionRepo, log)

	checkoutSvc := checkoutapp.NewService(orderRepo, productRepo, shippingRepo, customerRepo, log)
	checkoutSvc.SetEventPublisher(bus)
	checkoutSvc.SetCouponService(couponSvc)

	var dedupStore shared.IdempotencyStore
	if cfg.Dedup.Enabled {
		dedupStore = cache.NewRedisDedupStore(redisClient, cfg.Dedup.KeyPrefix)
		defer func() {
			_ = dedupStore.Close()
		}()
		checkoutSvc.SetDedupStore(dedupStore, checkoutapp.DedupConfig{
			Enabled: true,
			TTL:     cfg.Dedup.TTL,
		})
	}

	accountSvc := customerapp.NewService(customerRepo, tokens, log)

	gateways := gateway.NewRegistry()
	var stripeAdapter *gateway.StripeAdapter
	if cfg.Stripe.Enabled {
		stripeAdapter, err = gateway.NewStripeAdapter(&gateway.StripeConfig{
			SecretKey:     cfg.Stripe.SecretKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
		}, log)
		if err != nil {
			return fmt.Errorf("init stripe gateway: %w", err)
		}
		gateways.Register(stripeAdapter)
	}
	if cfg.NMI.Enabled {
		nmiAdapter, err := gateway.NewNMIAdapter(&gateway.NMIConfig{
			SecurityKey: cfg.NMI.SecurityKey,
			Endpoint:    cfg.NMI.Endpoint,
		}, log)
		if err != nil {
			return fmt.Errorf("init nmi gateway: %w", err)
		}
		gateways.Register(nmiAdapter)
	}
	if cfg.Sezzle.Enabled {
		sezzleAdapter, err := gateway.NewSezzleAdapter(&gateway.SezzleConfig{
			PublicKey:  cfg.Sezzle.PublicKey,
			PrivateKey: cfg.Sezzle.PrivateKey,
			BaseURL:    cfg.Sezzle.Endpoint,
		}, log)
		if err != nil {
			return fmt.Errorf("init sezzle gateway: %w", err)
		}
		gateways.Register(sezzleAdapter)
	}
	log.Info("Payment gateways registered", zap.Any("types", gateways.Types()))

	paymentSvc := paymentapp.NewService(paymentRepo, orderRepo, gateways, log)
	paymentSvc.SetEventPublisher(bus)
	paymentSvc.SetFulfillmentRepository(fulfillmentRepo)
	if dedupStore != nil {
		paymentSvc.SetDedupReleaser(dedupStore, "")
	}

	if cfg.Fulfillment.Enabled {
		worker := infrafulfillment.NewExportWorker(fulfillmentRepo, orderRepo, infrafulfillment.NewHTTPExporter(log), cfg.Fulfillment, log)
		if err := worker.Start(ctx); err != nil {
			return fmt.Errorf("start fulfillment worker: %w", err)
		}
		defer stopWithTimeout(worker.Stop, log, "fulfillment worker")
	}

	var monitor *health.Monitor
	if cfg.Health.Enabled {
		monitor = health.NewMonitor(db.DB, redisClient, cfg.Health, log)
		monitor.Start(ctx)
		defer monitor.Stop()
		if mp.IsEnabled() {
			if err := health.RegisterMetrics(mp.Meter("storefront/health"), monitor); err != nil {
				return fmt.Errorf("register health metrics: %w", err)
			}
		}
	}

	var sitemapSvc *seoapp.SitemapService
	if cfg.SEO.Enabled {
		sitemapSvc = seoapp.NewSitemapService(productRepo, collectionRepo, cache.NewJSONCache(redisClient, "seo:"), cfg.App.ShopURL, cfg.SEO.CacheTTL, log)
		sitemapSched := scheduler.NewSitemapScheduler(sitemapSvc, log, scheduler.SitemapSchedulerConfig{
			Enabled:  true,
			Interval: cfg.SEO.RegenerateInterval,
		})
		if err := sitemapSched.Start(ctx); err != nil {
			return fmt.Errorf("start sitemap scheduler: %w", err)
		}
		defer stopWithTimeout(sitemapSched.Stop, log, "sitemap scheduler")
	}

	pdfRenderer := printing.NewChromedpRenderer(printing.ChromedpConfig{
		NoSandbox: true,
		Logger:    log,
	})
	defer func() {
		_ = pdfRenderer.Close()
	}()
	invoices := printing.NewInvoiceRenderer(pdfRenderer, cfg.App.Name)

	engine := buildEngine(cfg, redisClient, tp, log)

	cartHandler := handler.NewCartHandler(checkoutSvc, log)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, stripeAdapter, log)
	if cfg.HTTP.RateLimitEnabled {
		checkoutLimiter := ratelimit.NewSlidingWindowLimiter(redisClient, "ratelimit:checkout:",
			cfg.HTTP.CheckoutRateLimitRequests, cfg.HTTP.CheckoutRateLimitWindow, log)
		guard := middleware.RateLimit(checkoutLimiter)
		cartHandler.SetPlaceOrderGuard(guard)
		paymentHandler.SetCreatePaymentGuard(guard)
	}

	accountHandler := handler.NewAccountHandler(accountSvc, log)
	orderHandler := handler.NewOrderHandler(checkoutSvc, orderRepo, invoices, log)
	systemHandler := handler.NewSystemHandler(monitor, sitemapSvc, log)

	r := router.New(engine)
	r.Register(
		handler.NewCatalogHandler(catalogSvc, log),
		accountHandler,
		orderHandler,
		paymentHandler,
		systemHandler,
	)
	r.RegisterWith(
		[]gin.HandlerFunc{middleware.OptionalAuth(tokens)},
		cartHandler,
	)
	r.RegisterWith(
		[]gin.HandlerFunc{middleware.RequireAuth(tokens)},
		router.Func(accountHandler.RegisterAuthenticatedRoutes),
		router.Func(orderHandler.RegisterAuthenticatedRoutes),
	)
	r.RegisterWith(
		[]gin.HandlerFunc{middleware.RequireAdminKey(cfg.App.AdminAPIKey)},
		handler.NewAdminCatalogHandler(catalogSvc, log),
		handler.NewAdminOrderHandler(checkoutSvc, log),
		handler.NewAdminPaymentHandler(paymentSvc, log),
	)
	r.Setup()
	systemHandler.RegisterRootRoutes(engine)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func buildEngine(cfg *config.Config, redisClient *redis.Client, tp *telemetry.TracerProvider, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	if tp.IsEnabled() {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		limiter := ratelimit.NewSlidingWindowLimiter(redisClient, "ratelimit:global:",
			cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, log)
		engine.Use(middleware.RateLimit(limiter))
	}
	return engine
}

func stopWithTimeout(stopFn func(context.Context) error, log *zap.Logger, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := stopFn(ctx); err != nil {
		log.Warn("Component did not stop cleanly", zap.String("component", name), zap.Error(err))
	}
}
