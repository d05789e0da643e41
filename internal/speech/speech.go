// Package speech is the speech-to-text / text-to-speech collaborator. The
// shipped implementation is a mock; a real provider slots in behind Service
// once one is configured.
package speech

import (
	"context"
	"fmt"
	"time"
)

type TranscriptionResult struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration_seconds"`
}

type Service interface {
	Transcribe(ctx context.Context, audio []byte, format string) (*TranscriptionResult, error)
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

type MockService struct{}

func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) Transcribe(_ context.Context, audio []byte, format string) (*TranscriptionResult, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio payload")
	}
	return &TranscriptionResult{
		Text:     fmt.Sprintf("[mock transcription of %d bytes of %s audio]", len(audio), format),
		Duration: float64(len(audio)) / 16000.0,
	}, nil
}

func (m *MockService) Synthesize(_ context.Context, text, voice string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}
	// A stand-in payload; real audio arrives when a provider is configured.
	payload := fmt.Sprintf("MOCKAUDIO|voice=%s|generated=%s|%s", voice, time.Now().UTC().Format(time.RFC3339), text)
	return []byte(payload), nil
}
