package message

import (
	"context"
	"time"
)

// Message is a single turn in a conversation. SequenceNumber is the
// causal position within the conversation, assigned at write time and
// strictly increasing per conversation. CreatedAt is display metadata
// only and plays no role in ordering.
type Message struct {
	ID             uint
	PublicID       string
	ConversationID uint
	Content        string
	IsFromAI       bool
	SequenceNumber int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Repository defines persistence operations for messages.
type Repository interface {
	// Create inserts the message. A zero SequenceNumber is assigned the
	// next free position of the conversation (MAX+1, so deleted
	// positions are never reused) within the insert's transaction; a
	// racing insert on the same position yields a Conflict error.
	Create(ctx context.Context, msg *Message) error
	FindByID(ctx context.Context, id uint) (*Message, error)
	FindByPublicID(ctx context.Context, publicID string) (*Message, error)
	FindByConversationOrdered(ctx context.Context, conversationID uint) ([]*Message, error)
	// FindByConversationAfter returns the messages strictly after the
	// given sequence number, excluding excludeID. This is the downstream
	// set of an edited message.
	FindByConversationAfter(ctx context.Context, conversationID uint, afterSequence int, excludeID uint) ([]*Message, error)
	Update(ctx context.Context, msg *Message) error
	Delete(ctx context.Context, id uint) error
	// ReplaceDownstream deletes the downstream set of the message at
	// afterSequence and inserts reply in its place, as one transaction.
	ReplaceDownstream(ctx context.Context, conversationID uint, afterSequence int, excludeID uint, reply *Message) error
	SearchInConversation(ctx context.Context, conversationID uint, keyword string) ([]*Message, error)
}

// Conversations is the narrow view of the conversation store the
// exchange engine needs: existence checks and activity bumps.
type Conversations interface {
	Exists(ctx context.Context, conversationID uint) error
	Touch(ctx context.Context, conversationID uint) error
}
