package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candor.io/interview-agent/internal/llm"
	"candor.io/interview-agent/internal/store"
)

func testPersona() *store.PersonaConfig {
	return &store.PersonaConfig{
		Name: "Maya",
		RoleSettings: map[string]any{
			SettingProfession: "UX researcher",
			SettingTone:       "curious",
		},
	}
}

func testOutline() *store.Outline {
	return &store.Outline{
		Title: "Checkout friction",
		Modules: []store.Module{
			{Title: "Habits", Questions: []store.Question{
				{Content: "How often do you shop online?", FollowUpDirections: []string{"frequency", "devices"}},
			}},
		},
	}
}

func TestSystemPromptUsesPersonaSettings(t *testing.T) {
	prompt := buildSystemPrompt(testPersona(), testOutline())

	assert.Contains(t, prompt, "Identity: Maya")
	assert.Contains(t, prompt, "UX researcher")
	assert.Contains(t, prompt, "curious")
	assert.Contains(t, prompt, "Checkout friction")
	assert.Contains(t, prompt, "How often do you shop online?")
	assert.Contains(t, prompt, "frequency, devices")
	assert.Contains(t, prompt, endMarker)
}

func TestSystemPromptDefaults(t *testing.T) {
	persona := &store.PersonaConfig{Name: "Blank", RoleSettings: map[string]any{}}
	prompt := buildSystemPrompt(persona, testOutline())

	assert.Contains(t, prompt, defaultProfession)
	assert.Contains(t, prompt, defaultTone)
	assert.Contains(t, prompt, defaultClosingText)
}

func TestBuildMessagesWindowAndOrder(t *testing.T) {
	transcript := make([]store.TranscriptEntry, 0, 25)
	for i := 0; i < 25; i++ {
		role := store.RoleUser
		if i%2 == 1 {
			role = store.RoleAI
		}
		transcript = append(transcript, store.TranscriptEntry{Role: role, Content: fmt.Sprintf("entry %d", i)})
	}

	messages := buildMessages(testPersona(), testOutline(), transcript, "latest answer")

	// system + capped history + the new user message
	require.Len(t, messages, 1+historyWindow+1)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, "entry 15", messages[1].Content)
	last := messages[len(messages)-1]
	assert.Equal(t, llm.RoleUser, last.Role)
	assert.Equal(t, "latest answer", last.Content)
}

func TestBuildMessagesRoleMapping(t *testing.T) {
	transcript := []store.TranscriptEntry{
		{Role: store.RoleUser, Content: "me"},
		{Role: store.RoleAI, Content: "agent"},
		{Role: "system", Content: "legacy entry"},
	}

	messages := buildMessages(testPersona(), testOutline(), transcript, "next")

	require.Len(t, messages, 5)
	assert.Equal(t, llm.RoleUser, messages[1].Role)
	assert.Equal(t, llm.RoleAssistant, messages[2].Role)
	// Anything that is not "user" speaks for the interviewer.
	assert.Equal(t, llm.RoleAssistant, messages[3].Role)
}

func TestBuildMessagesStripsEndMarker(t *testing.T) {
	transcript := []store.TranscriptEntry{
		{Role: store.RoleAI, Content: "Thank you for your time. " + endMarker},
	}

	messages := buildMessages(testPersona(), testOutline(), transcript, "one more thing")

	assert.NotContains(t, messages[1].Content, endMarker)
	assert.Contains(t, messages[1].Content, "Thank you for your time.")
}
