package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/scailer-io/booking-service/internal/api/router"
	"github.com/scailer-io/booking-service/internal/booking"
	"github.com/scailer-io/booking-service/internal/calendar"
	appconfig "github.com/scailer-io/booking-service/internal/config"
	"github.com/scailer-io/booking-service/internal/http/handlers"
	"github.com/scailer-io/booking-service/internal/notify"
	"github.com/scailer-io/booking-service/internal/observability/metrics"
	"github.com/scailer-io/booking-service/pkg/logging"
)

func main() {
	// Load .env in development; ignored when the file is absent.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := newLogger(cfg)
	logger.Info("starting booking-service API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	bookingMetrics := metrics.NewBookingMetrics(nil)

	slots, err := booking.NewSlotResolver(cfg.EventTimeZone, cfg.SessionDuration)
	if err != nil {
		logger.Error("failed to load event timezone", "error", err, "timezone", cfg.EventTimeZone)
		os.Exit(1)
	}

	// Duplicate-submission guard. Redis when configured, otherwise an
	// in-process fallback that only protects a single instance.
	var idempotency booking.IdempotencyStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		idempotency = booking.NewRedisIdempotencyStore(redisClient, cfg.IdempotencyTTL, otel.Tracer("booking-service"))
		logger.Info("using redis idempotency store", "addr", cfg.RedisAddr)
	} else {
		idempotency = booking.NewMemoryIdempotencyStore(cfg.IdempotencyTTL)
		logger.Info("using in-memory idempotency store")
	}

	creator := calendar.NewGoogleCreator(calendar.GoogleConfig{
		CalendarID:  cfg.GoogleCalendarID,
		ClientEmail: cfg.GoogleClientEmail,
		PrivateKey:  cfg.GooglePrivateKey,
		TimeZone:    cfg.EventTimeZone,
	}, logger)

	sender := buildEmailSender(cfg, logger)
	dispatcher := notify.NewDispatcher(sender, cfg.AdminEmail, bookingMetrics, logger)

	service := booking.NewService(booking.ServiceConfig{
		Slots:       slots,
		Calendar:    creator,
		Emails:      dispatcher,
		Idempotency: idempotency,
		Metrics:     bookingMetrics,
		Logger:      logger,
		CallTimeout: cfg.ExternalCallTimeout,
	})

	r := router.New(&router.Config{
		Logger:             logger,
		Booking:            handlers.NewBookingHandler(service, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSec:    cfg.RateLimitPerSec,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newLogger picks human-readable text output for local development and
// JSON everywhere else.
func newLogger(cfg *appconfig.Config) *logging.Logger {
	if cfg.Env == "development" {
		return logging.NewText(cfg.LogLevel)
	}
	return logging.New(cfg.LogLevel)
}

// buildEmailSender selects the configured delivery provider. Config
// validation has already rejected providers missing their credentials,
// so a nil sender here only happens outside production and falls back
// to the stub.
func buildEmailSender(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "smtp":
		sender := notify.NewSMTPSender(notify.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Secure:    cfg.SMTPSecure,
			Username:  cfg.SMTPUser,
			Password:  cfg.SMTPPass,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender != nil {
			verifyCtx, cancel := context.WithTimeout(context.Background(), cfg.ExternalCallTimeout)
			defer cancel()
			if err := sender.Verify(verifyCtx); err != nil {
				if cfg.IsProduction() {
					logger.Error("smtp verification failed", "error", err, "host", cfg.SMTPHost)
					os.Exit(1)
				}
				logger.Warn("smtp verification failed, continuing", "error", err, "host", cfg.SMTPHost)
			}
			return sender
		}
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger); sender != nil {
			return sender
		}
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		if sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
			ReplyTo:   cfg.AdminEmail,
		}, logger); sender != nil {
			return sender
		}
	}

	logger.Warn("email provider not fully configured, using stub sender", "provider", cfg.EmailProvider)
	return notify.NewStubSender(logger)
}
