package api

import (
	"encoding/json"
	"net/http"

	"candor.io/interview-agent/internal/auth"
)

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to process password: "+err.Error())
		return
	}

	user, err := h.platform.CreateUser(req.Username, req.Email, hashedPassword)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOK(w, "User registered successfully", map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler accepts username or email; at least one is required.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Password == "" {
		respondError(w, http.StatusBadRequest, "Password is required")
		return
	}

	user, err := h.platform.FindUser(req.Username, req.Email)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeEnvelope(w, http.StatusUnauthorized, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := h.auth.GenerateToken(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOK(w, "success", map[string]any{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.platform.GetUser(currentUserID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "success", map[string]any{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"role":       user.Role,
		"avatar_url": user.AvatarURL,
	})
}
