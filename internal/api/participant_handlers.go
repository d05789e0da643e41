package api

import (
	"encoding/json"
	"net/http"
)

type CreateParticipantRequest struct {
	ProjectID string         `json:"project_id"`
	Metadata  map[string]any `json:"participant_metadata"`
}

func (h *APIHandler) CreateParticipantHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	participant, err := h.platform.CreateParticipant(req.ProjectID, req.Metadata)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOK(w, "Participant created successfully", map[string]any{
		"participant_id": participant.ID,
		"project_id":     participant.ProjectID,
		"created_at":     participant.CreatedAt,
	})
}

func (h *APIHandler) GetParticipantInfoHandler(w http.ResponseWriter, r *http.Request) {
	participantID := r.URL.Query().Get("participant_id")
	if participantID == "" {
		respondError(w, http.StatusBadRequest, "participant_id is required")
		return
	}

	participant, err := h.platform.GetParticipant(participantID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "success", participant)
}

// UpdateParticipantAccessHandler refreshes last_accessed_at.
func (h *APIHandler) UpdateParticipantAccessHandler(w http.ResponseWriter, r *http.Request) {
	participantID := r.URL.Query().Get("participant_id")
	if participantID == "" {
		respondError(w, http.StatusBadRequest, "participant_id is required")
		return
	}

	participant, err := h.platform.TouchParticipant(participantID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOK(w, "Access time updated successfully", map[string]any{
		"participant_id":   participant.ID,
		"last_accessed_at": participant.LastAccessedAt,
	})
}

func (h *APIHandler) ListParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := clampLimit(queryInt(r, "limit", 20))

	var projectID *string
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		projectID = &raw
	}

	participants, total, err := h.platform.ListParticipants(projectID, skip, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, "success", newPaginated(participants, total, skip, limit))
}
