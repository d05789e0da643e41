package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

type TranscribeRequest struct {
	Audio  string `json:"audio"` // base64 encoded
	Format string `json:"format"`
}

func (h *APIHandler) TranscribeHandler(w http.ResponseWriter, r *http.Request) {
	var req TranscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Audio payload is not valid base64")
		return
	}
	if req.Format == "" {
		req.Format = "wav"
	}

	result, err := h.speech.Transcribe(r.Context(), audio, req.Format)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(w, "success", result)
}

type SynthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

func (h *APIHandler) SynthesizeHandler(w http.ResponseWriter, r *http.Request) {
	var req SynthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Voice == "" {
		req.Voice = "default"
	}

	audio, err := h.speech.Synthesize(r.Context(), req.Text, req.Voice)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondOK(w, "success", map[string]any{
		"audio": base64.StdEncoding.EncodeToString(audio),
		"voice": req.Voice,
	})
}
