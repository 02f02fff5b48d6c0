package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/voice-memo/backend/internal/api/handlers"
	"github.com/voice-memo/backend/internal/api/middleware"
	"github.com/voice-memo/backend/internal/auth"
	"github.com/voice-memo/backend/internal/config"
	"github.com/voice-memo/backend/internal/db"
	"github.com/voice-memo/backend/internal/pipeline"
)

func NewRouter(database *db.Database, jwtService *auth.JWTService, cfg *config.Config, pipe *pipeline.Pipeline) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.MaxBodySize(1 << 20)) // JSON-only API, nothing legitimate is that big
	r.Use(cors.Handler(middleware.CORSHandler(cfg.CORSOrigins)))

	// Handlers
	authHandler := handlers.NewAuthHandler(database, jwtService)
	recordingsHandler := handlers.NewRecordingsHandler(database, pipe)

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("ok"))
		})

		// Auth (public, rate limited)
		r.With(loginLimiter.Handler).Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(jwtService))

			// Auth
			r.Get("/auth/me", authHandler.Me)

			// Recordings
			r.Get("/recordings", recordingsHandler.List)
			r.Post("/recordings", recordingsHandler.Create)
			r.Get("/recordings/{id}", recordingsHandler.Get)
			r.With(middleware.RequireRole("admin")).Delete("/recordings/{id}", recordingsHandler.Delete)

			// Pipeline
			r.Post("/recordings/{id}/transcribe", recordingsHandler.Transcribe)
			r.Post("/recordings/{id}/summarize", recordingsHandler.Summarize)
			r.Put("/recordings/{id}/summary", recordingsHandler.UpdateSummary)
		})
	})

	return r
}
