// Package router wires the booking API's HTTP routes.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/scailer-io/booking-service/internal/http/handlers"
	httpmiddleware "github.com/scailer-io/booking-service/internal/http/middleware"
	"github.com/scailer-io/booking-service/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Booking            *handlers.BookingHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimitPerSec caps sustained submissions per client IP. Zero
	// disables rate limiting.
	RateLimitPerSec float64
	RateLimitBurst  int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.Booking.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimitPerSec > 0 {
			burst := cfg.RateLimitBurst
			if burst < 1 {
				burst = 1
			}
			api.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSec, burst))
		}
		api.Post("/book-session", cfg.Booking.BookSession)
		api.Post("/calendar", cfg.Booking.CreateEvent)
		api.Post("/send-booking-emails", cfg.Booking.SendEmails)
	})

	return r
}
