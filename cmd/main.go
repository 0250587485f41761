package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront-service/internal/assistant"
	"storefront-service/internal/backend"
	"storefront-service/internal/clients"
	"storefront-service/internal/config"
	"storefront-service/internal/events"
	"storefront-service/internal/handlers"
	"storefront-service/internal/metrics"
	"storefront-service/internal/middleware"
	"storefront-service/internal/repository"
	"storefront-service/internal/services"
	"storefront-service/internal/snapshot"
	"storefront-service/internal/tracing"
)

// @title Storefront API
// @version 1.0.0
// @description Catalog, order requests and shopping assistant for a small accessories boutique

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the admin token.

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, "storefront-service", cfg.OTLPEndpoint)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize tracing, continuing without it")
	}

	mode, err := backend.Select(cfg.BackendMode, cfg.RemoteConfigured())
	if err != nil {
		logger.WithError(err).Fatal("Invalid backend mode")
	}

	redisClient := newRedisClient(ctx, cfg, logger)
	defer redisClient.Close()

	local, closeLocal, err := openLocalStore(cfg, redisClient)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open local fallback store")
	}
	defer closeLocal()

	var (
		catalogRemote services.CatalogRemote
		orderRemote   services.OrderRemote
		ping          func(context.Context) error
	)
	if mode.Remote() {
		db, err := config.InitDB(cfg)
		switch {
		case err == nil:
			catalogRemote = repository.NewProductsRepository(db, redisClient)
			orderRemote = repository.NewOrdersRepository(db)
			ping = func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}
		case strings.EqualFold(cfg.BackendMode, "remote"):
			logger.WithError(err).Fatal("Failed to connect to database")
		default:
			logger.WithError(err).Warn("Database unreachable at startup, serving from the local store")
			mode = backend.ModeLocal
		}
	}
	logger.WithField("backend", mode.String()).Info("Backend selected")

	var publisher services.EventPublisher
	if cfg.NATSURL != "" {
		p, err := events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize events publisher, continuing without events")
		} else {
			defer p.Close()
			publisher = p
		}
	}

	shop := services.ShopContact{Name: cfg.ShopName, WhatsAppPhone: cfg.ShopPhone, Email: cfg.ShopEmail}
	catalog := services.NewCatalogStore(mode, catalogRemote, local, publisher, logger)
	orders := services.NewOrderQueue(mode, orderRemote, local, publisher, shop, logger)

	var transport assistant.Transport = assistant.UnavailableTransport{}
	if gemini, err := assistant.NewGeminiTransport(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
		logger.WithError(err).Warn("Assistant disabled, chat turns will answer with the apology")
	} else {
		transport = gemini
	}
	registry := assistant.NewRegistry(transport, assistant.DefaultPersona, cfg.SessionIdleTTL, logger)
	go registry.Run(ctx, cfg.SessionSweepEvery)

	if mode.Remote() {
		go runOrderFlush(ctx, orders, cfg.OrderFlushInterval, logger)
	}

	if !cfg.AdminEnabled() {
		logger.Warn("ADMIN_PASSWORD or JWT_SECRET not set, admin endpoints are disabled")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(metrics.Middleware())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.Readiness(mode.String(), ping))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handlers.RegisterRoutes(router.Group("/api/v1"), handlers.Handlers{
		Products:  handlers.NewProductsHandler(catalog),
		Import:    handlers.NewImportHandler(catalog),
		Orders:    handlers.NewOrdersHandler(orders, logger),
		Documents: handlers.NewDocumentHandler(clients.NewAssetClient(cfg.AssetUploadURL, cfg.AssetClientID), orders, shop),
		Assistant: handlers.NewAssistantHandler(registry, catalog),
		Auth:      handlers.NewAuthHandler(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret, cfg.JWTTTL, logger),
	}, middleware.AdminAuth(cfg.JWTSecret))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Storefront service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down storefront-service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
	if mode.Remote() {
		if n, err := orders.FlushLocal(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Queued orders left for the next start")
		} else if n > 0 {
			logger.WithField("count", n).Info("Flushed queued orders before exit")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error shutting down tracer provider")
	}

	logger.Info("Storefront service stopped")
}

func newRedisClient(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *redis.Client {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Failed to parse Redis URL, using localhost")
		opts = &redis.Options{Addr: "localhost:6379"}
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("Failed to connect to Redis, caching will be disabled")
	} else {
		logger.Info("Redis connected")
	}
	return client
}

func openLocalStore(cfg *config.Config, redisClient *redis.Client) (snapshot.Store, func(), error) {
	if strings.EqualFold(cfg.LocalStore, "redis") {
		return snapshot.NewRedisStore(redisClient, "storefront:local:"), func() {}, nil
	}
	store, err := snapshot.OpenSQLite(cfg.LocalStorePath)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// runOrderFlush periodically delivers orders queued while the remote store
// was down
func runOrderFlush(ctx context.Context, orders *services.OrderQueue, interval time.Duration, logger *logrus.Logger) {
	log := logger.WithField("component", "order-flush")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := orders.FlushLocal(ctx); err != nil {
				log.WithError(err).Debug("Order flush deferred")
			}
		}
	}
}
