package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type CreateProjectRequest struct {
	Name      string `json:"name"`
	OutlineID int64  `json:"outline_id"`
	PersonaID int64  `json:"ai_config_id"`
	Status    string `json:"status"`
}

// guestLink is the participant-facing interview URL handed back to creators
// when a project is published.
func guestLink(projectID string) string {
	return fmt.Sprintf("P-GUEST_INTERVIEW.html?projectId=%s", projectID)
}

func (h *APIHandler) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	project, err := h.platform.CreateProject(r.Context(), req.Name, req.OutlineID, req.PersonaID, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOK(w, "Project published successfully", map[string]any{
		"id":           project.ID,
		"name":         project.Name,
		"guest_link":   guestLink(project.ID),
		"outline_id":   project.OutlineID,
		"ai_config_id": project.PersonaID,
		"status":       project.Status,
	})
}

func (h *APIHandler) ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
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

	projects, total, err := h.platform.ListProjects(outlineID, skip, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "success", newPaginated(projects, total, skip, limit))
}

func (h *APIHandler) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	project, err := h.platform.GetProject(r.Context(), projectID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "success", project)
}

type UpdateProjectRequest struct {
	Status    *string `json:"status,omitempty"`
	PersonaID *int64  `json:"ai_config_id,omitempty"`
}

func (h *APIHandler) UpdateProjectHandler(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	project, err := h.platform.UpdateProject(r.Context(), projectID, req.Status, req.PersonaID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOK(w, "Project updated successfully", map[string]any{
		"id":           project.ID,
		"guest_link":   guestLink(project.ID),
		"outline_id":   project.OutlineID,
		"ai_config_id": project.PersonaID,
		"status":       project.Status,
	})
}

func (h *APIHandler) DeleteProjectHandler(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	if err := h.platform.DeleteProject(r.Context(), projectID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "Project deleted successfully", nil)
}
