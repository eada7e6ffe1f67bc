package handlers

import (
	"github.com/rs/zerolog"

	"chat-api/internal/domain/conversation"
	"chat-api/internal/domain/message"
)

// Provider bundles the HTTP handlers for route registration.
type Provider struct {
	Conversation *ConversationHandler
	Message      *MessageHandler
}

// NewProvider wires the handlers with their domain services.
func NewProvider(conversations conversation.Service, messages message.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Conversation: NewConversationHandler(conversations, messages, log),
		Message:      NewMessageHandler(conversations, messages, log),
	}
}
