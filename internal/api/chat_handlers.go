package api

import (
	"encoding/json"
	"log"
	"net/http"
)

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatHandler runs one interview turn. Unlike the rest of the API, this
// endpoint mirrors the envelope code into the transport status so guest
// clients can react to expiry without parsing the body.
func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, http.StatusBadRequest, "Invalid request body: "+err.Error(), nil)
		return
	}
	if req.SessionID == "" || req.Message == "" {
		writeEnvelope(w, http.StatusBadRequest, http.StatusBadRequest, "session_id and message are required", nil)
		return
	}

	reply, err := h.interviews.SubmitTurn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		code := envelopeCode(err)
		message := err.Error()
		if code == http.StatusInternalServerError {
			log.Printf("Chat turn failed for session %s: %v", req.SessionID, err)
			message = "Failed to generate a reply"
		}
		writeEnvelope(w, code, code, message, nil)
		return
	}

	respondOK(w, "success", map[string]any{
		"session_id": req.SessionID,
		"reply":      reply,
	})
}
