package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"candor.io/interview-agent/internal/llm"
	"candor.io/interview-agent/internal/store"
)

// sessionTTL is the sliding expiry window: set at creation and renewed on
// every successful chat turn.
const sessionTTL = time.Hour

// InterviewService owns the session lifecycle: creation, sliding expiry,
// transcript growth and termination, plus assembling the context for each
// AI turn.
type InterviewService struct {
	dbStore   *store.SQLiteStore
	generator llm.Generator
}

func NewInterviewService(db *store.SQLiteStore, generator llm.Generator) *InterviewService {
	return &InterviewService{
		dbStore:   db,
		generator: generator,
	}
}

// CreateSession starts a new interview under a project. The participant is
// optional; when given it must exist.
func (s *InterviewService) CreateSession(projectID string, participantID *string, intervieweeInfo map[string]any) (*store.Session, error) {
	project, err := s.dbStore.GetProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}

	if participantID != nil {
		participant, err := s.dbStore.GetParticipant(*participantID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify participant: %w", err)
		}
		if participant == nil {
			return nil, fmt.Errorf("participant %s: %w", *participantID, ErrNotFound)
		}
	}

	return s.dbStore.CreateSession(projectID, participantID, intervieweeInfo, sessionTTL)
}

// sessionContext is everything needed to generate the next AI turn.
type sessionContext struct {
	Session     *store.Session
	Project     *store.Project
	Outline     *store.Outline
	Persona     *store.PersonaConfig
	Participant *store.Participant
}

// resolveContext walks session -> project -> outline/persona. Missing links
// are data-integrity violations (project creation guarantees them), so they
// surface as NotFound rather than panicking downstream.
func (s *InterviewService) resolveContext(sessionID string) (*sessionContext, error) {
	session, err := s.dbStore.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}

	project, err := s.dbStore.GetProject(session.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project for session %s: %w", sessionID, ErrNotFound)
	}

	outline, err := s.dbStore.GetOutline(project.OutlineID)
	if err != nil {
		return nil, fmt.Errorf("failed to load outline: %w", err)
	}
	if outline == nil {
		return nil, fmt.Errorf("interview outline for session %s: %w", sessionID, ErrNotFound)
	}

	persona, err := s.dbStore.GetPersonaConfig(project.PersonaID)
	if err != nil {
		return nil, fmt.Errorf("failed to load persona config: %w", err)
	}
	if persona == nil {
		return nil, fmt.Errorf("persona config for session %s: %w", sessionID, ErrNotFound)
	}

	ctx := &sessionContext{Session: session, Project: project, Outline: outline, Persona: persona}
	if session.ParticipantID != nil {
		// Best effort; the participant may have been removed.
		ctx.Participant, err = s.dbStore.GetParticipant(*session.ParticipantID)
		if err != nil {
			return nil, fmt.Errorf("failed to load participant: %w", err)
		}
	}
	return ctx, nil
}

// SubmitTurn runs one chat turn: expiry check, sliding-window renewal, user
// message persisted, context resolved, AI reply generated and persisted.
//
// The user message stays persisted even when generation fails; there is no
// retry and no rollback. Two concurrent turns on one session may interleave
// (no per-session lock; expiry is checked before either append).
func (s *InterviewService) SubmitTurn(ctx context.Context, sessionID, userMessage string) (string, error) {
	session, err := s.dbStore.GetSession(sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return "", fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}

	now := time.Now().UTC()
	if session.ExpiresAt.Before(now) {
		return "", fmt.Errorf("session %s expired at %s: %w", sessionID, session.ExpiresAt.Format(time.RFC3339), ErrExpired)
	}

	if err := s.dbStore.ExtendSessionExpiry(sessionID, now.Add(sessionTTL)); err != nil {
		return "", err
	}

	userEntry := store.TranscriptEntry{Role: store.RoleUser, Content: userMessage, Timestamp: now}
	if err := s.dbStore.AppendTranscript(sessionID, userEntry); err != nil {
		return "", err
	}

	// Re-resolve after the append so the history window sees the new entry.
	sc, err := s.resolveContext(sessionID)
	if err != nil {
		return "", err
	}

	messages := buildMessages(sc.Persona, sc.Outline, sc.Session.Transcript, userMessage)
	reply, err := s.generator.Generate(ctx, messages)
	if err != nil {
		// The user entry above is deliberately left in place.
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	aiEntry := store.TranscriptEntry{Role: store.RoleAI, Content: reply, Timestamp: time.Now().UTC()}
	if err := s.dbStore.AppendTranscript(sessionID, aiEntry); err != nil {
		return "", err
	}

	log.Printf("Generated reply for session %s (%d chars)", sessionID, len(reply))
	return reply, nil
}

func (s *InterviewService) GetSession(sessionID string) (*store.Session, error) {
	session, err := s.dbStore.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return session, nil
}

func (s *InterviewService) ListSessions(projectID *string, skip, limit int) ([]store.Session, int, error) {
	return s.dbStore.ListSessions(projectID, skip, limit)
}

func (s *InterviewService) CountSessions() (int, error) {
	return s.dbStore.CountSessions()
}

func (s *InterviewService) SessionsForExport(projectID *string, ids []string) ([]store.Session, error) {
	if projectID != nil {
		sessions, _, err := s.dbStore.ListSessions(projectID, 0, 10000)
		return sessions, err
	}
	return s.dbStore.GetSessionsByIDs(ids)
}

func (s *InterviewService) StarSession(sessionID string, starred bool) error {
	found, err := s.dbStore.SetSessionStarred(sessionID, starred)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return nil
}

func (s *InterviewService) SetSessionNote(sessionID, note string) error {
	found, err := s.dbStore.SetSessionNote(sessionID, note)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return nil
}

// EndSession stamps end_time = now. It does not block further turns.
func (s *InterviewService) EndSession(sessionID string) (time.Time, error) {
	now := time.Now().UTC()
	found, err := s.dbStore.EndSession(sessionID, now)
	if err != nil {
		return time.Time{}, err
	}
	if !found {
		return time.Time{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return now, nil
}

func (s *InterviewService) DeleteSession(sessionID string) error {
	found, err := s.dbStore.DeleteSession(sessionID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return nil
}

func (s *InterviewService) DeleteSessions(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("no session ids provided: %w", ErrValidation)
	}
	return s.dbStore.DeleteSessions(ids)
}
