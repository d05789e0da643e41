package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type PersonaConfigRequest struct {
	Name         string         `json:"name"`
	RoleSettings map[string]any `json:"role_settings"`
	Strategy     map[string]any `json:"strategy"`
	OutlineID    *int64         `json:"outline_id,omitempty"`
}

func (h *APIHandler) CreatePersonaConfigHandler(w http.ResponseWriter, r *http.Request) {
	var req PersonaConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cfg, err := h.platform.CreatePersonaConfig(req.Name, req.RoleSettings, req.Strategy, req.OutlineID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "success", map[string]any{"id": cfg.ID})
}

func (h *APIHandler) GetPersonaConfigHandler(w http.ResponseWriter, r *http.Request) {
	configID, err := strconv.ParseInt(chi.URLParam(r, "configID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid config id")
		return
	}

	cfg, err := h.platform.GetPersonaConfig(configID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "success", cfg)
}

func (h *APIHandler) ListPersonaConfigsHandler(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := clampLimit(queryInt(r, "limit", 20))

	var outlineID *int64
	if raw := r.URL.Query().Get("outline_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid outline_id filter")
			return
		}
		outlineID = &id
	}

	configs, err := h.platform.ListPersonaConfigs(outlineID, skip, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "success", configs)
}

func (h *APIHandler) UpdatePersonaConfigHandler(w http.ResponseWriter, r *http.Request) {
	configID, err := strconv.ParseInt(chi.URLParam(r, "configID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid config id")
		return
	}

	var req PersonaConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cfg, err := h.platform.UpdatePersonaConfig(configID, req.Name, req.RoleSettings, req.Strategy, req.OutlineID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "success", cfg)
}

func (h *APIHandler) DeletePersonaConfigHandler(w http.ResponseWriter, r *http.Request) {
	configID, err := strconv.ParseInt(chi.URLParam(r, "configID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid config id")
		return
	}

	if err := h.platform.DeletePersonaConfig(configID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "success", nil)
}
