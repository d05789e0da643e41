package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// seedProject creates the user -> outline -> persona -> project chain most
// tests need.
func seedProject(t *testing.T, s *SQLiteStore) *Project {
	t.Helper()

	user, err := s.CreateUser("researcher", "researcher@example.com", "hash")
	require.NoError(t, err)

	outline, err := s.CreateOutline("Onboarding study", nil, user.ID, []Module{
		{Title: "Background", Questions: []Question{
			{Content: "Tell me about your role."},
			{Content: "How long have you used the product?", IsKeyQuestion: true},
		}},
	})
	require.NoError(t, err)

	persona, err := s.CreatePersonaConfig("Friendly researcher",
		map[string]any{"tone": "warm"}, map[string]any{}, &outline.ID)
	require.NoError(t, err)

	project, err := s.CreateProject("Q3 onboarding interviews", outline.ID, persona.ID, "published")
	require.NoError(t, err)
	return project
}

func TestUniqueViolationDetection(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateUser("alice", "alice@example.com", "hash")
	require.NoError(t, err)

	_, err = s.CreateUser("alice", "other@example.com", "hash")
	require.Error(t, err)
	require.True(t, IsUniqueViolation(err))
}

func TestSessionTimestampsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	project := seedProject(t, s)

	created, err := s.CreateSession(project.ID, nil, map[string]any{"name": "Sam"}, time.Hour)
	require.NoError(t, err)

	loaded, err := s.GetSession(created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.WithinDuration(t, created.StartTime, loaded.StartTime, time.Second)
	require.WithinDuration(t, created.ExpiresAt, loaded.ExpiresAt, time.Second)
}
