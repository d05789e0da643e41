package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutlinePreservesOrder(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("creator", "creator@example.com", "hash")
	require.NoError(t, err)

	modules := []Module{
		{Title: "Warmup", Questions: []Question{
			{Content: "First question"},
			{Content: "Second question", FollowUpDirections: []string{"dig into timeline"}},
		}},
		{Title: "Deep dive", Questions: []Question{
			{Content: "Third question", IsKeyQuestion: true},
		}},
		{Title: "Closing", Questions: nil},
	}

	created, err := s.CreateOutline("Churn interviews", nil, user.ID, modules)
	require.NoError(t, err)

	loaded, err := s.GetOutline(created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Modules, 3)
	assert.Equal(t, "Warmup", loaded.Modules[0].Title)
	assert.Equal(t, "Deep dive", loaded.Modules[1].Title)
	assert.Equal(t, "Closing", loaded.Modules[2].Title)
	require.Len(t, loaded.Modules[0].Questions, 2)
	assert.Equal(t, "First question", loaded.Modules[0].Questions[0].Content)
	assert.Equal(t, []string{"dig into timeline"}, loaded.Modules[0].Questions[1].FollowUpDirections)
	assert.True(t, loaded.Modules[1].Questions[0].IsKeyQuestion)
}

func TestUpdateOutlineReplacesModules(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("creator", "creator@example.com", "hash")
	require.NoError(t, err)

	created, err := s.CreateOutline("Old title", nil, user.ID, []Module{
		{Title: "Original", Questions: []Question{{Content: "Old question"}}},
	})
	require.NoError(t, err)

	desc := "revised"
	updated, err := s.UpdateOutline(created.ID, "New title", &desc, []Module{
		{Title: "Replaced", Questions: []Question{{Content: "New question"}}},
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "New title", updated.Title)
	require.Len(t, updated.Modules, 1)
	assert.Equal(t, "Replaced", updated.Modules[0].Title)

	loaded, err := s.GetOutline(created.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Modules, 1)
	assert.Equal(t, "New question", loaded.Modules[0].Questions[0].Content)
}

func TestUpdateOutlineMissing(t *testing.T) {
	s := newTestStore(t)

	updated, err := s.UpdateOutline(9999, "Title", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestDeleteOutlineDetachesPersona(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("creator", "creator@example.com", "hash")
	require.NoError(t, err)

	outline, err := s.CreateOutline("Doomed", nil, user.ID, nil)
	require.NoError(t, err)

	persona, err := s.CreatePersonaConfig("Linked persona", map[string]any{}, map[string]any{}, &outline.ID)
	require.NoError(t, err)

	found, err := s.DeleteOutline(outline.ID)
	require.NoError(t, err)
	require.True(t, found)

	gone, err := s.GetOutline(outline.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// The persona survives with its outline reference cleared.
	reloaded, err := s.GetPersonaConfig(persona.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Nil(t, reloaded.OutlineID)
}
