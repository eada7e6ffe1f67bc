package responder

import (
	"fmt"

	"github.com/rs/zerolog"

	"chat-api/internal/config"
	"chat-api/internal/domain/llm"
)

// New builds the responder selected by RESPONDER_PROVIDER.
func New(cfg *config.Config, log zerolog.Logger) (llm.Responder, error) {
	switch cfg.ResponderProvider {
	case config.ResponderProviderHTTP:
		return NewHTTPClient(cfg.ResponderBaseURL, cfg.ResponderAPIKey, cfg.ResponderModel, cfg.ResponderTimeout), nil
	case config.ResponderProviderOpenAI:
		return NewOpenAIClient(cfg.ResponderBaseURL, cfg.ResponderAPIKey, cfg.ResponderModel), nil
	case config.ResponderProviderStub:
		log.Warn().Msg("using stub responder, replies are canned")
		return NewStub(), nil
	default:
		return nil, fmt.Errorf("unknown responder provider %q", cfg.ResponderProvider)
	}
}

// roleFor maps a history role onto the chat-completion wire role.
func roleFor(role llm.Role) string {
	if role == llm.RoleAI {
		return "assistant"
	}
	return "user"
}

// chatTurns normalizes the history handed to a provider. The prompt is
// normally already the last history entry; when the history is empty
// or ends elsewhere, the prompt is appended as a user turn.
func chatTurns(prompt string, history []llm.Turn) []llm.Turn {
	if len(history) == 0 || history[len(history)-1].Text != prompt {
		return append(append([]llm.Turn{}, history...), llm.Turn{Role: llm.RoleUser, Text: prompt})
	}
	return history
}
