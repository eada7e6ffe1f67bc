package message

import (
	"context"

	"chat-api/internal/domain/llm"
	"chat-api/internal/utils/platformerrors"
)

// HistoryBuilder assembles the ordered transcript handed to a
// responder. It reads whatever currently exists for the conversation;
// a missing or empty conversation yields an empty history, never an
// error.
type HistoryBuilder struct {
	messages Repository
}

// NewHistoryBuilder creates a history builder over the message store.
func NewHistoryBuilder(messages Repository) *HistoryBuilder {
	return &HistoryBuilder{messages: messages}
}

// Build returns the conversation transcript as labeled turns, ordered
// by sequence number. When untilSequence is positive the result is the
// prefix up to and including that sequence; otherwise the full
// transcript is returned.
func (b *HistoryBuilder) Build(ctx context.Context, conversationID uint, untilSequence int) ([]llm.Turn, error) {
	msgs, err := b.messages.FindByConversationOrdered(ctx, conversationID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return []llm.Turn{}, nil
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "load conversation history")
	}

	turns := make([]llm.Turn, 0, len(msgs))
	for _, msg := range msgs {
		if untilSequence > 0 && msg.SequenceNumber > untilSequence {
			break
		}
		role := llm.RoleUser
		if msg.IsFromAI {
			role = llm.RoleAI
		}
		turns = append(turns, llm.Turn{Role: role, Text: msg.Content})
	}
	return turns, nil
}
