package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendTranscriptAccumulates(t *testing.T) {
	s := newTestStore(t)
	project := seedProject(t, s)

	session, err := s.CreateSession(project.ID, nil, nil, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, session.Transcript)

	now := time.Now().UTC()
	require.NoError(t, s.AppendTranscript(session.ID, TranscriptEntry{Role: RoleUser, Content: "Hello", Timestamp: now}))
	require.NoError(t, s.AppendTranscript(session.ID, TranscriptEntry{Role: RoleAI, Content: "Welcome!", Timestamp: now}))

	loaded, err := s.GetSession(session.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Transcript, 2)
	assert.Equal(t, RoleUser, loaded.Transcript[0].Role)
	assert.Equal(t, "Hello", loaded.Transcript[0].Content)
	assert.Equal(t, RoleAI, loaded.Transcript[1].Role)
}

func TestTranscriptsDoNotIntermix(t *testing.T) {
	s := newTestStore(t)
	project := seedProject(t, s)

	first, err := s.CreateSession(project.ID, nil, nil, time.Hour)
	require.NoError(t, err)
	second, err := s.CreateSession(project.ID, nil, nil, time.Hour)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, s.AppendTranscript(first.ID, TranscriptEntry{Role: RoleUser, Content: "only in first", Timestamp: now}))

	loaded, err := s.GetSession(second.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Transcript)
}

func TestExtendSessionExpiry(t *testing.T) {
	s := newTestStore(t)
	project := seedProject(t, s)

	session, err := s.CreateSession(project.ID, nil, nil, time.Hour)
	require.NoError(t, err)

	newExpiry := time.Now().UTC().Add(2 * time.Hour)
	require.NoError(t, s.ExtendSessionExpiry(session.ID, newExpiry))

	loaded, err := s.GetSession(session.ID)
	require.NoError(t, err)
	require.WithinDuration(t, newExpiry, loaded.ExpiresAt, time.Second)
}

func TestSessionFlags(t *testing.T) {
	s := newTestStore(t)
	project := seedProject(t, s)

	session, err := s.CreateSession(project.ID, nil, nil, time.Hour)
	require.NoError(t, err)

	found, err := s.SetSessionStarred(session.ID, true)
	require.NoError(t, err)
	require.True(t, found)

	found, err = s.SetSessionNote(session.ID, "promising participant")
	require.NoError(t, err)
	require.True(t, found)

	endTime := time.Now().UTC()
	found, err = s.EndSession(session.ID, endTime)
	require.NoError(t, err)
	require.True(t, found)

	loaded, err := s.GetSession(session.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsStarred)
	require.NotNil(t, loaded.Note)
	assert.Equal(t, "promising participant", *loaded.Note)
	require.NotNil(t, loaded.EndTime)
	require.WithinDuration(t, endTime, *loaded.EndTime, time.Second)

	found, err = s.SetSessionStarred("no-such-session", true)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListSessionsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	project := seedProject(t, s)

	older, err := s.CreateSession(project.ID, nil, nil, time.Hour)
	require.NoError(t, err)
	// Force a distinct start_time ordering.
	_, err = s.db.Exec(`UPDATE sessions SET start_time = ? WHERE id = ?`,
		time.Now().UTC().Add(-time.Hour), older.ID)
	require.NoError(t, err)

	newer, err := s.CreateSession(project.ID, nil, nil, time.Hour)
	require.NoError(t, err)

	sessions, total, err := s.ListSessions(&project.ID, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer.ID, sessions[0].ID)
	assert.Equal(t, older.ID, sessions[1].ID)
}

func TestGetSessionsByIDs(t *testing.T) {
	s := newTestStore(t)
	project := seedProject(t, s)

	first, err := s.CreateSession(project.ID, nil, nil, time.Hour)
	require.NoError(t, err)
	_, err = s.CreateSession(project.ID, nil, nil, time.Hour)
	require.NoError(t, err)

	sessions, err := s.GetSessionsByIDs([]string{first.ID, "missing-id"})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, first.ID, sessions[0].ID)

	sessions, err = s.GetSessionsByIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestDeleteSessions(t *testing.T) {
	s := newTestStore(t)
	project := seedProject(t, s)

	first, err := s.CreateSession(project.ID, nil, nil, time.Hour)
	require.NoError(t, err)
	second, err := s.CreateSession(project.ID, nil, nil, time.Hour)
	require.NoError(t, err)

	deleted, err := s.DeleteSessions([]string{first.ID, second.ID, "missing-id"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	count, err := s.CountSessions()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMalformedTranscriptDegradesToEmpty(t *testing.T) {
	s := newTestStore(t)
	project := seedProject(t, s)

	session, err := s.CreateSession(project.ID, nil, nil, time.Hour)
	require.NoError(t, err)

	_, err = s.db.Exec(`UPDATE sessions SET transcript = ? WHERE id = ?`, "{not json", session.ID)
	require.NoError(t, err)

	loaded, err := s.GetSession(session.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Empty(t, loaded.Transcript)
}
