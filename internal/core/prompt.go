package core

import (
	"fmt"
	"strings"

	"candor.io/interview-agent/internal/llm"
	"candor.io/interview-agent/internal/store"
)

// Persona role_settings keys the prompt builder reads. Everything else in
// the map is ignored here; this is the documented sub-contract between
// persona authors and the reply generator.
const (
	SettingProfession  = "profession"
	SettingTone        = "tone"
	SettingClosingText = "closing_text"

	defaultProfession  = "expert"
	defaultTone        = "calm and professional"
	defaultClosingText = "Thank you for your time."

	// endMarker is what the model appends after the closing text. It is
	// stripped from history before being fed back to the model.
	endMarker = "[END]"
)

// historyWindow caps how many prior transcript entries are carried into the
// generation request.
const historyWindow = 10

func settingString(settings map[string]any, key, fallback string) string {
	if v, ok := settings[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// renderOutline flattens the outline into an ordered textual brief for the
// system prompt.
func renderOutline(outline *store.Outline) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interview topic: %s\n", outline.Title)
	for _, m := range outline.Modules {
		fmt.Fprintf(&b, "- Module: %s\n", m.Title)
		for _, q := range m.Questions {
			fmt.Fprintf(&b, "  - Question: %s\n", q.Content)
			if len(q.FollowUpDirections) > 0 {
				fmt.Fprintf(&b, "    (follow-up directions: %s)\n", strings.Join(q.FollowUpDirections, ", "))
			}
		}
	}
	return b.String()
}

// buildSystemPrompt assembles the interviewer persona and the outline brief.
func buildSystemPrompt(persona *store.PersonaConfig, outline *store.Outline) string {
	profession := settingString(persona.RoleSettings, SettingProfession, defaultProfession)
	tone := settingString(persona.RoleSettings, SettingTone, defaultTone)
	closing := settingString(persona.RoleSettings, SettingClosingText, defaultClosingText)

	var b strings.Builder
	b.WriteString("You are a professional interviewer.\n")
	fmt.Fprintf(&b, "Identity: %s\n", persona.Name)
	fmt.Fprintf(&b, "Background: %s\n", profession)
	fmt.Fprintf(&b, "Tone: %s\n\n", tone)
	b.WriteString("Task: conduct an interview with the user following this outline.\n")
	b.WriteString(renderOutline(outline))
	b.WriteString("\nRules:\n")
	b.WriteString("1. Even with the full outline in hand, never ask all questions at once. Converse naturally and ask one question at a time, building on the user's answer.\n")
	b.WriteString("2. If an answer is brief, probe further along the follow-up directions.\n")
	b.WriteString("3. When a module is exhausted, transition naturally to the next one.\n")
	fmt.Fprintf(&b, "4. Keep a %s tone throughout.\n", tone)
	b.WriteString("5. Do not repeat your opening; go straight to the next question.\n\n")
	fmt.Fprintf(&b, "Ending: once every question has been covered, deliver the closing line (%q) and then output the marker %s.\n", closing, endMarker)
	return b.String()
}

// buildMessages translates the session transcript into the two-party scheme
// the generator expects: "user" stays user, everything else becomes the
// assistant. Only the last historyWindow entries are carried, and the new
// user message always goes last.
func buildMessages(persona *store.PersonaConfig, outline *store.Outline, transcript []store.TranscriptEntry, userMessage string) []llm.Message {
	messages := []llm.Message{{Role: llm.RoleSystem, Content: buildSystemPrompt(persona, outline)}}

	history := transcript
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, entry := range history {
		role := llm.RoleAssistant
		if entry.Role == store.RoleUser {
			role = llm.RoleUser
		}
		messages = append(messages, llm.Message{
			Role:    role,
			Content: strings.ReplaceAll(entry.Content, endMarker, ""),
		})
	}

	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})
	return messages
}
