package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(apiHandler *APIHandler, chatRateLimit int) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Guest-facing endpoints carry their own rate limit; keyed by IP.
	chatLimiter := httprate.LimitByIP(chatRateLimit, time.Minute)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"AI Interview Agent API is running"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/signup", apiHandler.SignupHandler)
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Creator-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.AuthMiddleware)

			r.Get("/me", apiHandler.MeHandler)

			r.Post("/outlines", apiHandler.CreateOutlineHandler)
			r.Put("/outlines/{outlineID}", apiHandler.UpdateOutlineHandler)
			r.Delete("/outlines/{outlineID}", apiHandler.DeleteOutlineHandler)

			r.Post("/projects", apiHandler.CreateProjectHandler)
			r.Put("/projects/{projectID}", apiHandler.UpdateProjectHandler)
			r.Delete("/projects/{projectID}", apiHandler.DeleteProjectHandler)
		})

		// Outline routes (read side is public for guest clients)
		r.Get("/outlines", apiHandler.ListOutlinesHandler)
		r.Get("/outlines/{outlineID}", apiHandler.GetOutlineHandler)

		// Persona config routes
		r.Post("/ai-configs", apiHandler.CreatePersonaConfigHandler)
		r.Get("/ai-configs", apiHandler.ListPersonaConfigsHandler)
		r.Get("/ai-configs/{configID}", apiHandler.GetPersonaConfigHandler)
		r.Put("/ai-configs/{configID}", apiHandler.UpdatePersonaConfigHandler)
		r.Delete("/ai-configs/{configID}", apiHandler.DeletePersonaConfigHandler)

		// Project routes
		r.Get("/projects", apiHandler.ListProjectsHandler)
		r.Get("/projects/{projectID}", apiHandler.GetProjectHandler)

		// Participant routes
		r.Post("/participants", apiHandler.CreateParticipantHandler)
		r.Get("/participants", apiHandler.ListParticipantsHandler)
		r.Get("/participants/info", apiHandler.GetParticipantInfoHandler)
		r.Put("/participants/access", apiHandler.UpdateParticipantAccessHandler)

		// Session routes
		r.With(chatLimiter).Post("/sessions", apiHandler.CreateSessionHandler)
		r.Get("/sessions", apiHandler.ListSessionsHandler)
		r.Get("/sessions/stats", apiHandler.SessionStatsHandler)
		r.Get("/sessions/export", apiHandler.ExportSessionsHandler)
		r.Delete("/sessions/batch", apiHandler.DeleteSessionsBatchHandler)
		r.Get("/sessions/{sessionID}", apiHandler.GetSessionHandler)
		r.Put("/sessions/{sessionID}/star", apiHandler.StarSessionHandler)
		r.Put("/sessions/{sessionID}/note", apiHandler.SessionNoteHandler)
		r.Put("/sessions/{sessionID}/end", apiHandler.EndSessionHandler)
		r.Delete("/sessions/{sessionID}", apiHandler.DeleteSessionHandler)

		// Chat route
		r.With(chatLimiter).Post("/chat", apiHandler.ChatHandler)

		// Export routes
		r.Post("/export/selected", apiHandler.ExportSelectedHandler)
		r.Get("/export/project/{projectID}", apiHandler.ExportProjectHandler)
		r.Get("/export/session/{sessionID}", apiHandler.ExportSessionHandler)

		// Speech routes
		r.Post("/speech/transcribe", apiHandler.TranscribeHandler)
		r.Post("/speech/synthesize", apiHandler.SynthesizeHandler)

		// Activity feed placeholder; the dashboard polls it.
		r.Get("/activities", func(w http.ResponseWriter, r *http.Request) {
			respondOK(w, "success", []any{})
		})
	})

	return r
}
