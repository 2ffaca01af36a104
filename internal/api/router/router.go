package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/meeting-assistant/internal/dialogue"
	httpmiddleware "github.com/wolfman30/meeting-assistant/internal/http/middleware"
	"github.com/wolfman30/meeting-assistant/internal/meetings"
	"github.com/wolfman30/meeting-assistant/internal/voicechat"
	"github.com/wolfman30/meeting-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	DialogueHandler    *dialogue.Handler
	MeetingsHandler    *meetings.Handler
	VoiceHandler       *voicechat.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimiter throttles the turn endpoints; nil disables limiting.
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Turn endpoints
	r.Group(func(turns chi.Router) {
		if cfg.RateLimiter != nil {
			turns.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
		}
		if cfg.DialogueHandler != nil {
			turns.Post("/process", cfg.DialogueHandler.Process)
		}
		if cfg.VoiceHandler != nil {
			turns.Get("/voice/ws", cfg.VoiceHandler.HandleWebSocket)
		}
	})

	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		if cfg.DialogueHandler != nil {
			r.Get("/", cfg.DialogueHandler.GetSession)
			r.Delete("/", cfg.DialogueHandler.DeleteSession)
		}
		if cfg.MeetingsHandler != nil {
			r.Get("/meetings", cfg.MeetingsHandler.ListBySession)
		}
	})

	if cfg.MeetingsHandler != nil {
		r.Route("/meetings/{meetingID}", func(r chi.Router) {
			r.Get("/", cfg.MeetingsHandler.Get)
			r.Get("/ics", cfg.MeetingsHandler.ICS)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
