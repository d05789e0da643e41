package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Generator produces the next AI utterance from an assembled conversation.
// Implementations are stateless from the caller's perspective.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}
