package responses

import (
	"time"

	"chat-api/internal/domain/message"
)

// MessagePayload is returned to clients.
type MessagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Content        string    `json:"content"`
	IsFromAI       bool      `json:"is_from_ai"`
	Sequence       int       `json:"sequence"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FromMessage maps the domain message to DTO. The parent conversation
// public ID is supplied by the handler; messages only carry the
// internal key.
func FromMessage(conversationPublicID string, m *message.Message) MessagePayload {
	return MessagePayload{
		ID:             m.PublicID,
		ConversationID: conversationPublicID,
		Content:        m.Content,
		IsFromAI:       m.IsFromAI,
		Sequence:       m.SequenceNumber,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromMessageList maps a list of domain messages.
func FromMessageList(conversationPublicID string, msgs []*message.Message) []MessagePayload {
	out := make([]MessagePayload, len(msgs))
	for i, m := range msgs {
		out[i] = FromMessage(conversationPublicID, m)
	}
	return out
}

// MessageListResponse wraps message lists.
type MessageListResponse struct {
	Data []MessagePayload `json:"data"`
}
