package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *SQLiteStore) CreateParticipant(projectID string, metadata map[string]any) (*Participant, error) {
	metadataJSON, err := marshalJSON(metadata)
	if err != nil {
		return nil, err
	}

	participantID := uuid.NewString()
	now := time.Now().UTC()
	_, err = s.db.Exec("INSERT INTO participants (id, project_id, created_at, last_accessed_at, metadata) VALUES (?, ?, ?, ?, ?)",
		participantID, projectID, now, now, metadataJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to insert participant: %w", err)
	}
	return s.GetParticipant(participantID)
}

func (s *SQLiteStore) GetParticipant(participantID string) (*Participant, error) {
	var p Participant
	var metadataJSON string
	err := s.db.QueryRow("SELECT id, project_id, created_at, last_accessed_at, metadata FROM participants WHERE id = ?", participantID).
		Scan(&p.ID, &p.ProjectID, &p.CreatedAt, &p.LastAccessedAt, &metadataJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	p.Metadata = unmarshalMap(metadataJSON)
	return &p, nil
}

// TouchParticipant refreshes last_accessed_at. Returns (nil, nil) if the
// participant does not exist.
func (s *SQLiteStore) TouchParticipant(participantID string) (*Participant, error) {
	res, err := s.db.Exec("UPDATE participants SET last_accessed_at = ? WHERE id = ?", time.Now().UTC(), participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to update participant access time: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, nil // Not found
	}
	return s.GetParticipant(participantID)
}

func (s *SQLiteStore) ListParticipants(projectID *string, skip, limit int) ([]Participant, int, error) {
	countQuery := "SELECT COUNT(id) FROM participants"
	listQuery := "SELECT id, project_id, created_at, last_accessed_at, metadata FROM participants"
	countArgs := []any{}
	listArgs := []any{}
	if projectID != nil {
		countQuery += " WHERE project_id = ?"
		listQuery += " WHERE project_id = ?"
		countArgs = append(countArgs, *projectID)
		listArgs = append(listArgs, *projectID)
	}
	listQuery += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	listArgs = append(listArgs, limit, skip)

	var total int
	if err := s.db.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count participants: %w", err)
	}

	rows, err := s.db.Query(listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := []Participant{}
	for rows.Next() {
		var p Participant
		var metadataJSON string
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.CreatedAt, &p.LastAccessedAt, &metadataJSON); err != nil {
			return nil, 0, fmt.Errorf("failed to scan participant row: %w", err)
		}
		p.Metadata = unmarshalMap(metadataJSON)
		participants = append(participants, p)
	}
	return participants, total, rows.Err()
}
