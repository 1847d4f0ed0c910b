package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/example/tg-storefront/internal/config"
	"github.com/example/tg-storefront/internal/email"
	"github.com/example/tg-storefront/internal/infrastructure/kafka"
	"github.com/example/tg-storefront/internal/metrics"
	"github.com/example/tg-storefront/internal/notification"
	"github.com/example/tg-storefront/internal/telemetry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadNotifier()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if err := telemetry.SetupLogging(cfg.LogLevel); err != nil {
		log.WithError(err).Fatal("invalid log level")
	}
	logger := log.WithField("component", "notifier")

	if len(cfg.NotifyEmails) == 0 {
		logger.Warn("NOTIFY_EMAILS not set, orders will be consumed without mail")
	}

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPassword)
	handler := notification.NewHandler(emailSvc, cfg.NotifyEmails, metrics.NewStorefrontMetrics())

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup)
	defer consumer.Close()

	// Metrics only; the notifier has no API.
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server error")
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.WithFields(log.Fields{
			"brokers": cfg.KafkaBrokers,
			"topic":   cfg.KafkaTopic,
			"group":   cfg.KafkaGroup,
			"smtp":    cfg.SMTPHost + ":" + cfg.SMTPPort,
		}).Info("notifier started")
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
			logger.WithError(err).Error("consumer stopped")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-done:
	}

	logger.Info("shutting down")
	cancel()
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}
