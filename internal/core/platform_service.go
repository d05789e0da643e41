package core

import (
	"context"
	"fmt"

	"candor.io/interview-agent/internal/cache"
	"candor.io/interview-agent/internal/store"
)

// PlatformService covers the creator-facing surface: users, outlines,
// persona configs, projects and participants. Sessions live in
// InterviewService.
type PlatformService struct {
	dbStore *store.SQLiteStore
	cache   *cache.Cache // nil disables caching
}

func NewPlatformService(db *store.SQLiteStore, c *cache.Cache) *PlatformService {
	return &PlatformService{dbStore: db, cache: c}
}

func outlineCacheKey(id int64) string  { return fmt.Sprintf("outline:%d", id) }
func projectCacheKey(id string) string { return fmt.Sprintf("project:%s", id) }

// --- Users ---

func (s *PlatformService) CreateUser(username, email, passwordHash string) (*store.User, error) {
	user, err := s.dbStore.CreateUser(username, email, passwordHash)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("username or email already registered: %w", ErrConflict)
		}
		return nil, err
	}
	return user, nil
}

// FindUser looks a user up by username or email; at least one is required.
func (s *PlatformService) FindUser(username, email string) (*store.User, error) {
	if username == "" && email == "" {
		return nil, fmt.Errorf("either username or email must be provided: %w", ErrValidation)
	}
	if username != "" {
		return s.dbStore.GetUserByUsername(username)
	}
	return s.dbStore.GetUserByEmail(email)
}

func (s *PlatformService) GetUser(id int64) (*store.User, error) {
	user, err := s.dbStore.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return user, nil
}

// --- Outlines ---

func (s *PlatformService) CreateOutline(title string, description *string, creatorID int64, modules []store.Module) (*store.Outline, error) {
	if title == "" {
		return nil, fmt.Errorf("outline title is required: %w", ErrValidation)
	}
	return s.dbStore.CreateOutline(title, description, creatorID, modules)
}

func (s *PlatformService) GetOutline(ctx context.Context, outlineID int64) (*store.Outline, error) {
	var cached store.Outline
	if s.cache.Get(ctx, outlineCacheKey(outlineID), &cached) {
		return &cached, nil
	}

	outline, err := s.dbStore.GetOutline(outlineID)
	if err != nil {
		return nil, err
	}
	if outline == nil {
		return nil, fmt.Errorf("outline %d: %w", outlineID, ErrNotFound)
	}
	s.cache.Set(ctx, outlineCacheKey(outlineID), outline)
	return outline, nil
}

// OutlinePersona returns the persona bound to an outline, or nil.
func (s *PlatformService) OutlinePersona(outlineID int64) (*store.PersonaConfig, error) {
	return s.dbStore.GetPersonaConfigByOutline(outlineID)
}

func (s *PlatformService) ListOutlines(skip, limit int) ([]store.Outline, int, error) {
	return s.dbStore.ListOutlines(skip, limit)
}

func (s *PlatformService) UpdateOutline(ctx context.Context, outlineID int64, title string, description *string, modules []store.Module) (*store.Outline, error) {
	outline, err := s.dbStore.UpdateOutline(outlineID, title, description, modules)
	if err != nil {
		return nil, err
	}
	if outline == nil {
		return nil, fmt.Errorf("outline %d: %w", outlineID, ErrNotFound)
	}
	s.cache.Delete(ctx, outlineCacheKey(outlineID))
	return outline, nil
}

// DeleteOutline cascades modules/questions and any dependent project, and
// detaches (never deletes) a persona config referencing the outline.
func (s *PlatformService) DeleteOutline(ctx context.Context, outlineID int64) error {
	if _, err := s.dbStore.DeleteOutline(outlineID); err != nil {
		return err
	}
	// Deleting a missing outline counts as success.
	s.cache.Delete(ctx, outlineCacheKey(outlineID))
	return nil
}

// --- Persona configs ---

func (s *PlatformService) CreatePersonaConfig(name string, roleSettings, strategy map[string]any, outlineID *int64) (*store.PersonaConfig, error) {
	if name == "" {
		return nil, fmt.Errorf("persona name is required: %w", ErrValidation)
	}
	cfg, err := s.dbStore.CreatePersonaConfig(name, roleSettings, strategy, outlineID)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("outline already has a persona config: %w", ErrConflict)
		}
		return nil, err
	}
	return cfg, nil
}

func (s *PlatformService) GetPersonaConfig(configID int64) (*store.PersonaConfig, error) {
	cfg, err := s.dbStore.GetPersonaConfig(configID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("persona config %d: %w", configID, ErrNotFound)
	}
	return cfg, nil
}

func (s *PlatformService) ListPersonaConfigs(outlineID *int64, skip, limit int) ([]store.PersonaConfig, error) {
	return s.dbStore.ListPersonaConfigs(outlineID, skip, limit)
}

func (s *PlatformService) UpdatePersonaConfig(configID int64, name string, roleSettings, strategy map[string]any, outlineID *int64) (*store.PersonaConfig, error) {
	cfg, err := s.dbStore.UpdatePersonaConfig(configID, name, roleSettings, strategy, outlineID)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("outline already has a persona config: %w", ErrConflict)
		}
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("persona config %d: %w", configID, ErrNotFound)
	}
	return cfg, nil
}

func (s *PlatformService) DeletePersonaConfig(configID int64) error {
	found, err := s.dbStore.DeletePersonaConfig(configID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("persona config %d: %w", configID, ErrNotFound)
	}
	return nil
}

// --- Projects ---

// CreateProject validates both references exist before inserting; the unique
// constraints turn a double-binding into Conflict.
func (s *PlatformService) CreateProject(ctx context.Context, name string, outlineID, personaID int64, status string) (*store.Project, error) {
	outline, err := s.dbStore.GetOutline(outlineID)
	if err != nil {
		return nil, err
	}
	if outline == nil {
		return nil, fmt.Errorf("outline %d: %w", outlineID, ErrNotFound)
	}

	persona, err := s.dbStore.GetPersonaConfig(personaID)
	if err != nil {
		return nil, err
	}
	if persona == nil {
		return nil, fmt.Errorf("persona config %d: %w", personaID, ErrNotFound)
	}

	if status == "" {
		status = "active"
	}
	project, err := s.dbStore.CreateProject(name, outlineID, personaID, status)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("outline or persona config is already bound to another project: %w", ErrConflict)
		}
		return nil, err
	}
	return project, nil
}

func (s *PlatformService) GetProject(ctx context.Context, projectID string) (*store.ProjectSummary, error) {
	var cached store.ProjectSummary
	if s.cache.Get(ctx, projectCacheKey(projectID), &cached) {
		return &cached, nil
	}

	project, err := s.dbStore.GetProjectSummary(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	s.cache.Set(ctx, projectCacheKey(projectID), project)
	return project, nil
}

func (s *PlatformService) ListProjects(outlineID *int64, skip, limit int) ([]store.ProjectSummary, int, error) {
	return s.dbStore.ListProjects(outlineID, skip, limit)
}

func (s *PlatformService) UpdateProject(ctx context.Context, projectID string, status *string, personaID *int64) (*store.Project, error) {
	project, err := s.dbStore.UpdateProject(projectID, status, personaID)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("persona config is already bound to another project: %w", ErrConflict)
		}
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	s.cache.Delete(ctx, projectCacheKey(projectID))
	return project, nil
}

func (s *PlatformService) DeleteProject(ctx context.Context, projectID string) error {
	found, err := s.dbStore.DeleteProject(projectID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	s.cache.Delete(ctx, projectCacheKey(projectID))
	return nil
}

// --- Participants ---

func (s *PlatformService) CreateParticipant(projectID string, metadata map[string]any) (*store.Participant, error) {
	project, err := s.dbStore.GetProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return s.dbStore.CreateParticipant(projectID, metadata)
}

func (s *PlatformService) GetParticipant(participantID string) (*store.Participant, error) {
	participant, err := s.dbStore.GetParticipant(participantID)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, fmt.Errorf("participant %s: %w", participantID, ErrNotFound)
	}
	return participant, nil
}

func (s *PlatformService) TouchParticipant(participantID string) (*store.Participant, error) {
	participant, err := s.dbStore.TouchParticipant(participantID)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, fmt.Errorf("participant %s: %w", participantID, ErrNotFound)
	}
	return participant, nil
}

func (s *PlatformService) ListParticipants(projectID *string, skip, limit int) ([]store.Participant, int, error) {
	return s.dbStore.ListParticipants(projectID, skip, limit)
}
