package llm

import "context"

// Role identifies the author of a turn in a conversation history.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Turn is one entry of the history handed to a responder. Turns are
// ordered oldest first.
type Turn struct {
	Role Role
	Text string
}

// Responder produces the AI side of a conversation. Implementations
// wrap an external model endpoint and must honor ctx cancellation.
type Responder interface {
	Respond(ctx context.Context, prompt string, history []Turn) (string, error)
}
