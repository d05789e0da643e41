package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"candor.io/interview-agent/internal/store"
)

type OutlineRequest struct {
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	Modules     []store.Module `json:"modules"`
}

func (h *APIHandler) CreateOutlineHandler(w http.ResponseWriter, r *http.Request) {
	var req OutlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	outline, err := h.platform.CreateOutline(req.Title, req.Description, currentUserID(r), req.Modules)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "Outline created successfully", outline)
}

func (h *APIHandler) ListOutlinesHandler(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := clampLimit(queryInt(r, "limit", 20))

	outlines, total, err := h.platform.ListOutlines(skip, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "success", newPaginated(outlines, total, skip, limit))
}

// GetOutlineHandler returns the outline with its linked persona config, if
// one exists.
func (h *APIHandler) GetOutlineHandler(w http.ResponseWriter, r *http.Request) {
	outlineID, err := strconv.ParseInt(chi.URLParam(r, "outlineID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid outline id")
		return
	}

	outline, err := h.platform.GetOutline(r.Context(), outlineID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	persona, err := h.platform.OutlinePersona(outlineID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOK(w, "success", map[string]any{
		"id":          outline.ID,
		"title":       outline.Title,
		"description": outline.Description,
		"created_at":  outline.CreatedAt,
		"modules":     outline.Modules,
		"ai_config":   persona,
	})
}

func (h *APIHandler) UpdateOutlineHandler(w http.ResponseWriter, r *http.Request) {
	outlineID, err := strconv.ParseInt(chi.URLParam(r, "outlineID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid outline id")
		return
	}

	var req OutlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	outline, err := h.platform.UpdateOutline(r.Context(), outlineID, req.Title, req.Description, req.Modules)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "Outline updated successfully", outline)
}

func (h *APIHandler) DeleteOutlineHandler(w http.ResponseWriter, r *http.Request) {
	outlineID, err := strconv.ParseInt(chi.URLParam(r, "outlineID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid outline id")
		return
	}

	if err := h.platform.DeleteOutline(r.Context(), outlineID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "Outline deleted successfully", nil)
}
