package responder

import (
	"context"
	"fmt"

	"chat-api/internal/domain/llm"
)

// Stub is a canned responder for local development and smoke tests.
type Stub struct{}

// NewStub creates a stub responder.
func NewStub() *Stub {
	return &Stub{}
}

// Respond echoes the prompt with a canned framing.
func (s *Stub) Respond(_ context.Context, prompt string, history []llm.Turn) (string, error) {
	return fmt.Sprintf("Stub reply to %q (history length %d)", prompt, len(history)), nil
}

// Ensure interface compliance.
var _ llm.Responder = (*Stub)(nil)
