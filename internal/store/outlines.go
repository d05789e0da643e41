package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// CreateOutline inserts an outline together with its whole module/question
// subtree in one transaction. Positions record insertion order.
func (s *SQLiteStore) CreateOutline(title string, description *string, creatorID int64, modules []Module) (*Outline, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin outline insert: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.Exec("INSERT INTO outlines (title, description, creator_id, created_at) VALUES (?, ?, ?, ?)",
		title, description, creatorID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert outline: %w", err)
	}
	outlineID, _ := res.LastInsertId()

	if err := insertModules(tx, outlineID, modules); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit outline insert: %w", err)
	}

	return s.GetOutline(outlineID)
}

func insertModules(tx *sql.Tx, outlineID int64, modules []Module) error {
	moduleStmt, err := tx.Prepare("INSERT INTO modules (outline_id, title, position) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare module insert: %w", err)
	}
	defer moduleStmt.Close()

	questionStmt, err := tx.Prepare("INSERT INTO questions (module_id, content, is_key_question, follow_up_directions, position) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare question insert: %w", err)
	}
	defer questionStmt.Close()

	for mi, m := range modules {
		res, err := moduleStmt.Exec(outlineID, m.Title, mi)
		if err != nil {
			return fmt.Errorf("failed to insert module %q: %w", m.Title, err)
		}
		moduleID, _ := res.LastInsertId()

		for qi, q := range m.Questions {
			directions := q.FollowUpDirections
			if directions == nil {
				directions = []string{}
			}
			directionsJSON, err := json.Marshal(directions)
			if err != nil {
				return fmt.Errorf("failed to marshal follow-up directions: %w", err)
			}
			if _, err := questionStmt.Exec(moduleID, q.Content, q.IsKeyQuestion, string(directionsJSON), qi); err != nil {
				return fmt.Errorf("failed to insert question: %w", err)
			}
		}
	}
	return nil
}

func (s *SQLiteStore) GetOutline(outlineID int64) (*Outline, error) {
	var outline Outline
	var description sql.NullString
	err := s.db.QueryRow("SELECT id, title, description, creator_id, created_at FROM outlines WHERE id = ?", outlineID).
		Scan(&outline.ID, &outline.Title, &description, &outline.CreatorID, &outline.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get outline: %w", err)
	}
	if description.Valid {
		outline.Description = &description.String
	}

	modules, err := s.loadModules(outlineID)
	if err != nil {
		return nil, err
	}
	outline.Modules = modules
	return &outline, nil
}

// loadModules reads the module/question subtree in position order.
func (s *SQLiteStore) loadModules(outlineID int64) ([]Module, error) {
	rows, err := s.db.Query("SELECT id, title FROM modules WHERE outline_id = ? ORDER BY position ASC", outlineID)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	var modules []Module
	var moduleIDs []int64
	for rows.Next() {
		var id int64
		var m Module
		if err := rows.Scan(&id, &m.Title); err != nil {
			return nil, fmt.Errorf("failed to scan module row: %w", err)
		}
		m.Questions = []Question{}
		modules = append(modules, m)
		moduleIDs = append(moduleIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate module rows: %w", err)
	}

	for i, moduleID := range moduleIDs {
		questions, err := s.loadQuestions(moduleID)
		if err != nil {
			return nil, err
		}
		modules[i].Questions = questions
	}
	if modules == nil {
		modules = []Module{}
	}
	return modules, nil
}

func (s *SQLiteStore) loadQuestions(moduleID int64) ([]Question, error) {
	rows, err := s.db.Query("SELECT content, is_key_question, follow_up_directions FROM questions WHERE module_id = ? ORDER BY position ASC", moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	questions := []Question{}
	for rows.Next() {
		var q Question
		var directionsJSON string
		if err := rows.Scan(&q.Content, &q.IsKeyQuestion, &directionsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		if err := json.Unmarshal([]byte(directionsJSON), &q.FollowUpDirections); err != nil {
			log.Printf("Warning: malformed follow_up_directions for module %d: %v", moduleID, err)
			q.FollowUpDirections = []string{}
		}
		if q.FollowUpDirections == nil {
			q.FollowUpDirections = []string{}
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *SQLiteStore) ListOutlines(skip, limit int) ([]Outline, int, error) {
	var total int
	if err := s.db.QueryRow("SELECT COUNT(id) FROM outlines").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count outlines: %w", err)
	}

	rows, err := s.db.Query("SELECT id FROM outlines ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query outlines: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, 0, fmt.Errorf("failed to scan outline row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate outline rows: %w", err)
	}

	outlines := []Outline{}
	for _, id := range ids {
		o, err := s.GetOutline(id)
		if err != nil {
			return nil, 0, err
		}
		if o != nil {
			outlines = append(outlines, *o)
		}
	}
	return outlines, total, nil
}

// UpdateOutline replaces the outline's title, description and its entire
// module/question subtree. Returns (nil, nil) if the outline does not exist.
func (s *SQLiteStore) UpdateOutline(outlineID int64, title string, description *string, modules []Module) (*Outline, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin outline update: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("UPDATE outlines SET title = ?, description = ? WHERE id = ?", title, description, outlineID)
	if err != nil {
		return nil, fmt.Errorf("failed to update outline: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, nil // Not found
	}

	// Questions cascade with their modules.
	if _, err := tx.Exec("DELETE FROM modules WHERE outline_id = ?", outlineID); err != nil {
		return nil, fmt.Errorf("failed to clear outline modules: %w", err)
	}
	if err := insertModules(tx, outlineID, modules); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit outline update: %w", err)
	}
	return s.GetOutline(outlineID)
}

// DeleteOutline removes the outline and its subtree. Any persona config
// referencing the outline is detached (outline_id set to NULL), never deleted.
func (s *SQLiteStore) DeleteOutline(outlineID int64) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin outline delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE persona_configs SET outline_id = NULL WHERE outline_id = ?", outlineID); err != nil {
		return false, fmt.Errorf("failed to detach persona config: %w", err)
	}

	res, err := tx.Exec("DELETE FROM outlines WHERE id = ?", outlineID)
	if err != nil {
		return false, fmt.Errorf("failed to delete outline: %w", err)
	}
	affected, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit outline delete: %w", err)
	}
	return affected > 0, nil
}
