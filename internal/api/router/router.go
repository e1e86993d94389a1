// Package router wires the HTTP routes for the intake service.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-intake-platform/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/clinic-intake-platform/internal/http/middleware"
	"github.com/wolfman30/clinic-intake-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	VoiceHandler   *handlers.VoiceWebhookHandler
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.VoiceHandler.HealthCheck)

	r.Route("/webhooks/twilio", func(r chi.Router) {
		r.Post("/voice", cfg.VoiceHandler.HandleVoice)
		r.Post("/status", cfg.VoiceHandler.HandleStatus)
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
