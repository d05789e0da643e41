package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"candor.io/interview-agent/internal/core"
)

// apiResponse is the envelope every non-export endpoint answers with. The
// embedded code is authoritative; most endpoints keep the transport status
// at 200 even for business errors (the chat endpoint mirrors the code into
// the status as well).
type apiResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeEnvelope(w http.ResponseWriter, httpStatus, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(apiResponse{Code: code, Message: message, Data: data}); err != nil {
		log.Printf("Failed to encode response envelope: %v", err)
	}
}

func respondOK(w http.ResponseWriter, message string, data any) {
	writeEnvelope(w, http.StatusOK, http.StatusOK, message, data)
}

// respondError keeps the transport status at 200 and signals through the
// envelope code.
func respondError(w http.ResponseWriter, code int, message string) {
	writeEnvelope(w, http.StatusOK, code, message, nil)
}

// envelopeCode maps the service error taxonomy onto envelope codes.
func envelopeCode(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, core.ErrExpired):
		return http.StatusGone
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError converts a service error into the envelope, hiding
// internals behind a generic message for unclassified errors.
func respondServiceError(w http.ResponseWriter, err error) {
	code := envelopeCode(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		message = "Internal Server Error"
	}
	respondError(w, code, message)
}

// paginated is the shared list payload shape.
type paginated struct {
	Items   any  `json:"items"`
	Total   int  `json:"total"`
	Skip    int  `json:"skip"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}

func newPaginated(items any, total, skip, limit int) paginated {
	return paginated{Items: items, Total: total, Skip: skip, Limit: limit, HasMore: skip+limit < total}
}

// clampLimit applies the list defaults: 20 when unset, capped at 100.
func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
