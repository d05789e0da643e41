package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"candor.io/interview-agent/internal/export"
	"candor.io/interview-agent/internal/store"
)

// streamWorkbook writes the sessions as an xlsx attachment.
func streamWorkbook(w http.ResponseWriter, sessions []store.Session, filename string) {
	f, err := export.BuildWorkbook(sessions)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		log.Printf("Failed to stream export %s: %v", filename, err)
	}
}

func exportFilename(prefix string) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().UTC().Format("20060102_150405"))
}

// ExportSessionsHandler serves GET /api/sessions/export. It accepts either a
// project_id or a comma-separated ids list; an empty result answers with a
// JSON envelope instead of an empty workbook.
func (h *APIHandler) ExportSessionsHandler(w http.ResponseWriter, r *http.Request) {
	var projectID *string
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		projectID = &raw
	}
	var ids []string
	if raw := r.URL.Query().Get("ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	if projectID == nil && len(ids) == 0 {
		respondError(w, http.StatusBadRequest, "Either project_id or ids must be provided")
		return
	}

	sessions, err := h.interviews.SessionsForExport(projectID, ids)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if len(sessions) == 0 {
		respondError(w, http.StatusNotFound, "No sessions found")
		return
	}

	streamWorkbook(w, sessions, exportFilename("interview_sessions"))
}

type ExportSelectedRequest struct {
	SessionIDs []string `json:"session_ids"`
}

func (h *APIHandler) ExportSelectedHandler(w http.ResponseWriter, r *http.Request) {
	var req ExportSelectedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.SessionIDs) == 0 {
		respondError(w, http.StatusBadRequest, "No session IDs provided")
		return
	}

	sessions, err := h.interviews.SessionsForExport(nil, req.SessionIDs)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if len(sessions) == 0 {
		respondError(w, http.StatusNotFound, "No sessions found")
		return
	}

	streamWorkbook(w, sessions, exportFilename("selected_sessions"))
}

func (h *APIHandler) ExportProjectHandler(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	summary, err := h.platform.GetProject(r.Context(), projectID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	sessions, err := h.interviews.SessionsForExport(&projectID, nil)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	prefix := export.CleanSheetName(summary.Name)
	streamWorkbook(w, sessions, exportFilename(prefix))
}

func (h *APIHandler) ExportSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.interviews.GetSession(sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	streamWorkbook(w, []store.Session{*session}, exportFilename("session_"+session.ID))
}
