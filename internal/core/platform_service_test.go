package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candor.io/interview-agent/internal/store"
)

// newTestPlatformService runs with caching disabled; the cache wrapper is
// nil-safe by contract.
func newTestPlatformService(t *testing.T) (*PlatformService, *store.SQLiteStore) {
	t.Helper()
	dbStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbStore.Close() })
	return NewPlatformService(dbStore, nil), dbStore
}

func TestCreateUserConflict(t *testing.T) {
	svc, _ := newTestPlatformService(t)

	_, err := svc.CreateUser("alice", "alice@example.com", "hash")
	require.NoError(t, err)

	_, err = svc.CreateUser("alice", "different@example.com", "hash")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestFindUserRequiresIdentifier(t *testing.T) {
	svc, _ := newTestPlatformService(t)

	_, err := svc.FindUser("", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCreateOutlineRequiresTitle(t *testing.T) {
	svc, _ := newTestPlatformService(t)

	_, err := svc.CreateOutline("", nil, 1, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestDeleteOutlineMissingIsSuccess(t *testing.T) {
	svc, _ := newTestPlatformService(t)

	require.NoError(t, svc.DeleteOutline(context.Background(), 9999))
}

func TestSecondPersonaOnOutlineConflicts(t *testing.T) {
	svc, dbStore := newTestPlatformService(t)

	user, err := dbStore.CreateUser("creator", "creator@example.com", "hash")
	require.NoError(t, err)
	outline, err := dbStore.CreateOutline("Study", nil, user.ID, nil)
	require.NoError(t, err)

	_, err = svc.CreatePersonaConfig("First", nil, nil, &outline.ID)
	require.NoError(t, err)

	_, err = svc.CreatePersonaConfig("Second", nil, nil, &outline.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestCreateProjectValidatesReferences(t *testing.T) {
	svc, dbStore := newTestPlatformService(t)
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, "Project", 9999, 9999, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	user, err := dbStore.CreateUser("creator", "creator@example.com", "hash")
	require.NoError(t, err)
	outline, err := dbStore.CreateOutline("Study", nil, user.ID, nil)
	require.NoError(t, err)
	persona, err := dbStore.CreatePersonaConfig("Persona", nil, nil, nil)
	require.NoError(t, err)

	project, err := svc.CreateProject(ctx, "Project", outline.ID, persona.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "active", project.Status)

	// Both references are single-use.
	_, err = svc.CreateProject(ctx, "Duplicate", outline.ID, persona.ID, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestCreateParticipantRequiresProject(t *testing.T) {
	svc, _ := newTestPlatformService(t)

	_, err := svc.CreateParticipant("no-such-project", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}
