package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateProject binds one outline and one persona config into a publishable
// unit. The unique constraints on outline_id and persona_id enforce the
// 1:1:1 triangle; a violation surfaces through IsUniqueViolation.
func (s *SQLiteStore) CreateProject(name string, outlineID, personaID int64, status string) (*Project, error) {
	projectID := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.db.Exec("INSERT INTO projects (id, name, outline_id, persona_id, status, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		projectID, name, outlineID, personaID, status, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}
	return &Project{ID: projectID, Name: name, OutlineID: outlineID, PersonaID: personaID, Status: status, CreatedAt: now}, nil
}

func (s *SQLiteStore) GetProject(projectID string) (*Project, error) {
	var p Project
	err := s.db.QueryRow("SELECT id, name, outline_id, persona_id, status, created_at FROM projects WHERE id = ?", projectID).
		Scan(&p.ID, &p.Name, &p.OutlineID, &p.PersonaID, &p.Status, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// GetProjectSummary joins the outline title for detail views.
func (s *SQLiteStore) GetProjectSummary(projectID string) (*ProjectSummary, error) {
	var p ProjectSummary
	err := s.db.QueryRow(`
        SELECT p.id, p.name, p.outline_id, p.persona_id, p.status, p.created_at, o.title
        FROM projects p JOIN outlines o ON p.outline_id = o.id
        WHERE p.id = ?`, projectID).
		Scan(&p.ID, &p.Name, &p.OutlineID, &p.PersonaID, &p.Status, &p.CreatedAt, &p.OutlineTitle)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get project summary: %w", err)
	}
	return &p, nil
}

func (s *SQLiteStore) ListProjects(outlineID *int64, skip, limit int) ([]ProjectSummary, int, error) {
	countQuery := "SELECT COUNT(p.id) FROM projects p"
	listQuery := `
        SELECT p.id, p.name, p.outline_id, p.persona_id, p.status, p.created_at, o.title
        FROM projects p JOIN outlines o ON p.outline_id = o.id`
	countArgs := []any{}
	listArgs := []any{}
	if outlineID != nil {
		countQuery += " WHERE p.outline_id = ?"
		listQuery += " WHERE p.outline_id = ?"
		countArgs = append(countArgs, *outlineID)
		listArgs = append(listArgs, *outlineID)
	}
	listQuery += " ORDER BY p.created_at DESC LIMIT ? OFFSET ?"
	listArgs = append(listArgs, limit, skip)

	var total int
	if err := s.db.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	rows, err := s.db.Query(listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []ProjectSummary{}
	for rows.Next() {
		var p ProjectSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.OutlineID, &p.PersonaID, &p.Status, &p.CreatedAt, &p.OutlineTitle); err != nil {
			return nil, 0, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, total, rows.Err()
}

// UpdateProject updates the provided fields only; nil means keep the current
// value. Returns (nil, nil) if the project does not exist.
func (s *SQLiteStore) UpdateProject(projectID string, status *string, personaID *int64) (*Project, error) {
	existing, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil // Not found
	}

	if status != nil {
		existing.Status = *status
	}
	if personaID != nil {
		existing.PersonaID = *personaID
	}

	_, err = s.db.Exec("UPDATE projects SET status = ?, persona_id = ? WHERE id = ?",
		existing.Status, existing.PersonaID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return existing, nil
}

// DeleteProject removes the project; participants and sessions cascade.
func (s *SQLiteStore) DeleteProject(projectID string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM projects WHERE id = ?", projectID)
	if err != nil {
		return false, fmt.Errorf("failed to delete project: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}
