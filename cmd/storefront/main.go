package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/example/tg-storefront/internal/api"
	"github.com/example/tg-storefront/internal/apiclient"
	"github.com/example/tg-storefront/internal/auth"
	"github.com/example/tg-storefront/internal/config"
	"github.com/example/tg-storefront/internal/infrastructure/kafka"
	"github.com/example/tg-storefront/internal/infrastructure/store"
	"github.com/example/tg-storefront/internal/metrics"
	"github.com/example/tg-storefront/internal/storefront"
	"github.com/example/tg-storefront/internal/telemetry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if err := telemetry.SetupLogging(cfg.LogLevel); err != nil {
		log.WithError(err).Fatal("invalid log level")
	}
	logger := log.WithField("component", "main")

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.OTLPEndpoint, "tg-storefront")
	if err != nil {
		logger.WithError(err).Fatal("failed to set up tracing")
	}

	blobs, closeBlobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to open blob store")
	}
	defer closeBlobs()

	client := apiclient.New(apiclient.Config{
		BaseURL:         cfg.ShopAPIURL,
		Timeout:         cfg.APITimeout,
		RateLimit:       cfg.APIRateLimit,
		Burst:           cfg.APIBurst,
		BreakerFailures: cfg.BreakerFailures,
		BreakerCooldown: cfg.BreakerCooldown,
	})

	m := metrics.NewStorefrontMetrics()
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	sessionCfg := storefront.Config{
		PageSize: cfg.PageSize,
		IdleTTL:  cfg.SessionIdleTTL,
		Metrics:  m,
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		sessionCfg.Publisher = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, order events are not published")
	}

	registry := storefront.NewRegistry(client, blobs, jwtService, sessionCfg)
	go registry.Run(ctx, time.Minute)

	if cfg.BotToken == "" {
		logger.Warn("BOT_TOKEN not set, every Telegram sign-in will be rejected")
	}
	verifier := auth.NewInitDataVerifier(cfg.BotToken, cfg.InitDataMaxAge)

	handlers := api.NewHandlers(registry, client, m)
	router := api.NewRouter(api.RouterConfig{
		Handlers:       handlers,
		AuthHandlers:   api.NewAuthHandlers(jwtService, verifier, registry, cfg.AdminIDs, cfg.AdminPasswordHash).WithAdminChecker(client),
		AdminHandlers:  api.NewAdminHandlers(client, handlers),
		JWTService:     jwtService,
		Metrics:        m.Middleware,
		MetricsHandler: promhttp.Handler(),
		WebDir:         cfg.WebDir,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(log.Fields{
			"addr":     cfg.HTTPAddr,
			"shop_api": cfg.ShopAPIURL,
			"storage":  cfg.StorageBackend,
		}).Info("storefront started")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("server shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.WithError(err).Warn("tracing shutdown")
	}
}

// openBlobStore returns the cart/session store selected by STORAGE_BACKEND.
func openBlobStore(ctx context.Context, cfg *config.Config) (store.BlobStore, func(), error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		db, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgresBlobStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pg, func() { _ = db.Close() }, nil

	case config.StorageDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, err
		}
		return store.NewDynamoBlobStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable), func() {}, nil

	default:
		return store.NewMemoryBlobStore(), func() {}, nil
	}
}
