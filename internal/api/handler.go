package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"candor.io/interview-agent/internal/auth"
	"candor.io/interview-agent/internal/core"
	"candor.io/interview-agent/internal/speech"
)

type APIHandler struct {
	platform   *core.PlatformService
	interviews *core.InterviewService
	speech     speech.Service
	auth       *auth.Manager
}

func NewAPIHandler(platform *core.PlatformService, interviews *core.InterviewService, sp speech.Service, am *auth.Manager) *APIHandler {
	return &APIHandler{
		platform:   platform,
		interviews: interviews,
		speech:     sp,
		auth:       am,
	}
}

type contextKey string

const userIDKey contextKey = "userID"

// AuthMiddleware guards the creator-facing surface with bearer tokens.
func (h *APIHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeEnvelope(w, http.StatusUnauthorized, http.StatusUnauthorized, "Authorization header is required", nil)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		subject, err := h.auth.ValidateToken(tokenString)
		if err != nil {
			writeEnvelope(w, http.StatusUnauthorized, http.StatusUnauthorized, "Invalid token", nil)
			return
		}

		userID, err := strconv.ParseInt(subject, 10, 64)
		if err != nil {
			writeEnvelope(w, http.StatusUnauthorized, http.StatusUnauthorized, "Invalid token subject", nil)
			return
		}

		user, err := h.platform.GetUser(userID)
		if err != nil {
			writeEnvelope(w, http.StatusUnauthorized, http.StatusUnauthorized, "User not found", nil)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUserID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return defaultValue
}
