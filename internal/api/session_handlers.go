package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type CreateSessionRequest struct {
	ProjectID       string         `json:"project_id"`
	ParticipantID   *string        `json:"participant_id,omitempty"`
	IntervieweeInfo map[string]any `json:"interviewee_info"`
}

func (h *APIHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.interviews.CreateSession(req.ProjectID, req.ParticipantID, req.IntervieweeInfo)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOK(w, "Session started", map[string]any{
		"session_id": session.ID,
		"project_id": session.ProjectID,
	})
}

func (h *APIHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := clampLimit(queryInt(r, "limit", 20))

	var projectID *string
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		projectID = &raw
	}

	sessions, total, err := h.interviews.ListSessions(projectID, skip, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "success", newPaginated(sessions, total, skip, limit))
}

func (h *APIHandler) SessionStatsHandler(w http.ResponseWriter, r *http.Request) {
	total, err := h.interviews.CountSessions()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "success", map[string]any{"total": total})
}

func (h *APIHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.interviews.GetSession(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "success", session)
}

type StarRequest struct {
	IsStarred bool `json:"is_starred"`
}

func (h *APIHandler) StarSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req StarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.interviews.StarSession(sessionID, req.IsStarred); err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "Star status updated", map[string]any{"is_starred": req.IsStarred})
}

type NoteRequest struct {
	Note string `json:"note"`
}

func (h *APIHandler) SessionNoteHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.interviews.SetSessionNote(sessionID, req.Note); err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "Note updated", map[string]any{"note": req.Note})
}

func (h *APIHandler) EndSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	endTime, err := h.interviews.EndSession(sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "Session ended", map[string]any{
		"session_id": sessionID,
		"end_time":   endTime,
	})
}

func (h *APIHandler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.interviews.DeleteSession(sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "Session deleted", map[string]any{"id": sessionID})
}

type DeleteSessionsBatchRequest struct {
	IDs []string `json:"ids"`
}

func (h *APIHandler) DeleteSessionsBatchHandler(w http.ResponseWriter, r *http.Request) {
	var req DeleteSessionsBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "No session IDs provided")
		return
	}

	deleted, err := h.interviews.DeleteSessions(req.IDs)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "Sessions deleted", map[string]any{"deleted_count": deleted})
}
