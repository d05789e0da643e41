package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateSession allocates a new session with an empty transcript and a
// one-hour expiry window starting at the current time.
func (s *SQLiteStore) CreateSession(projectID string, participantID *string, intervieweeInfo map[string]any, ttl time.Duration) (*Session, error) {
	infoJSON, err := marshalJSON(intervieweeInfo)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	now := time.Now().UTC()
	_, err = s.db.Exec(`INSERT INTO sessions (id, project_id, participant_id, interviewee_info, transcript, start_time, expires_at)
        VALUES (?, ?, ?, ?, '[]', ?, ?)`,
		sessionID, projectID, participantID, infoJSON, now, now.Add(ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}
	return s.GetSession(sessionID)
}

func (s *SQLiteStore) GetSession(sessionID string) (*Session, error) {
	row := s.db.QueryRow(`SELECT id, project_id, participant_id, interviewee_info, transcript,
        start_time, end_time, expires_at, is_starred, note FROM sessions WHERE id = ?`, sessionID)
	sess, err := scanSession(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

type scanFunc func(dest ...any) error

func scanSession(scan scanFunc) (*Session, error) {
	var sess Session
	var participantID, note sql.NullString
	var endTime sql.NullTime
	var infoJSON, transcriptJSON string
	err := scan(&sess.ID, &sess.ProjectID, &participantID, &infoJSON, &transcriptJSON,
		&sess.StartTime, &endTime, &sess.ExpiresAt, &sess.IsStarred, &note)
	if err != nil {
		return nil, err
	}
	if participantID.Valid {
		sess.ParticipantID = &participantID.String
	}
	if note.Valid {
		sess.Note = &note.String
	}
	if endTime.Valid {
		t := endTime.Time
		sess.EndTime = &t
	}
	sess.IntervieweeInfo = unmarshalMap(infoJSON)
	sess.Transcript = unmarshalTranscript(sess.ID, transcriptJSON)
	return &sess, nil
}

// unmarshalTranscript parses the transcript blob. A malformed blob is logged
// and treated as empty rather than failing the read.
func unmarshalTranscript(sessionID, raw string) []TranscriptEntry {
	transcript := []TranscriptEntry{}
	if raw == "" {
		return transcript
	}
	if err := json.Unmarshal([]byte(raw), &transcript); err != nil {
		log.Printf("Warning: malformed transcript for session %s: %v", sessionID, err)
		return []TranscriptEntry{}
	}
	return transcript
}

// ExtendSessionExpiry moves expires_at forward to the given time.
func (s *SQLiteStore) ExtendSessionExpiry(sessionID string, expiresAt time.Time) error {
	res, err := s.db.Exec("UPDATE sessions SET expires_at = ? WHERE id = ?", expiresAt, sessionID)
	if err != nil {
		return fmt.Errorf("failed to extend session expiry: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("session not found, expiry not extended")
	}
	return nil
}

// AppendTranscript appends one entry to the session transcript. The blob is
// read, extended and written back; each append is a single UPDATE, but two
// concurrent appends to one session may interleave in either order.
func (s *SQLiteStore) AppendTranscript(sessionID string, entry TranscriptEntry) error {
	var transcriptJSON string
	err := s.db.QueryRow("SELECT transcript FROM sessions WHERE id = ?", sessionID).Scan(&transcriptJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("session not found, transcript not updated")
		}
		return fmt.Errorf("failed to read transcript: %w", err)
	}

	transcript := unmarshalTranscript(sessionID, transcriptJSON)
	transcript = append(transcript, entry)
	updated, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	if _, err := s.db.Exec("UPDATE sessions SET transcript = ? WHERE id = ?", string(updated), sessionID); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetSessionStarred(sessionID string, starred bool) (bool, error) {
	res, err := s.db.Exec("UPDATE sessions SET is_starred = ? WHERE id = ?", starred, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to update star status: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (s *SQLiteStore) SetSessionNote(sessionID string, note string) (bool, error) {
	res, err := s.db.Exec("UPDATE sessions SET note = ? WHERE id = ?", note, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to update note: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// EndSession stamps end_time. Idempotent: re-ending overwrites the timestamp.
// Ending does not gate further turns; expiry is the sole gate.
func (s *SQLiteStore) EndSession(sessionID string, endTime time.Time) (bool, error) {
	res, err := s.db.Exec("UPDATE sessions SET end_time = ? WHERE id = ?", endTime, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to end session: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (s *SQLiteStore) ListSessions(projectID *string, skip, limit int) ([]Session, int, error) {
	countQuery := "SELECT COUNT(id) FROM sessions"
	listQuery := `SELECT id, project_id, participant_id, interviewee_info, transcript,
        start_time, end_time, expires_at, is_starred, note FROM sessions`
	countArgs := []any{}
	listArgs := []any{}
	if projectID != nil {
		countQuery += " WHERE project_id = ?"
		listQuery += " WHERE project_id = ?"
		countArgs = append(countArgs, *projectID)
		listArgs = append(listArgs, *projectID)
	}
	listQuery += " ORDER BY start_time DESC LIMIT ? OFFSET ?"
	listArgs = append(listArgs, limit, skip)

	var total int
	if err := s.db.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	rows, err := s.db.Query(listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	return sessions, total, rows.Err()
}

// GetSessionsByIDs returns the sessions that exist among the given ids, in
// start-time order. Missing ids are silently omitted.
func (s *SQLiteStore) GetSessionsByIDs(ids []string) ([]Session, error) {
	if len(ids) == 0 {
		return []Session{}, nil
	}
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.Query(`SELECT id, project_id, participant_id, interviewee_info, transcript,
        start_time, end_time, expires_at, is_starred, note FROM sessions
        WHERE id IN (`+placeholders+`) ORDER BY start_time ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions by ids: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) CountSessions() (int, error) {
	var total int
	if err := s.db.QueryRow("SELECT COUNT(id) FROM sessions").Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return total, nil
}

func (s *SQLiteStore) DeleteSession(sessionID string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// DeleteSessions removes the given sessions and reports how many rows went.
func (s *SQLiteStore) DeleteSessions(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := s.db.Exec("DELETE FROM sessions WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("failed to batch delete sessions: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
