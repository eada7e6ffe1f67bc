package entities

import (
	"time"

	"chat-api/internal/domain/message"
)

// Message represents the database schema for messages
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID       string `gorm:"type:varchar(50);uniqueIndex;not null"`
	ConversationID uint   `gorm:"uniqueIndex:idx_message_conversation_sequence;not null"`
	Content        string `gorm:"type:text;not null"`
	IsFromAI       bool   `gorm:"column:is_from_ai;not null;default:false"`
	SequenceNumber int    `gorm:"uniqueIndex:idx_message_conversation_sequence;not null"`
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// EtoD converts database entity to domain model
func (m *Message) EtoD() *message.Message {
	return &message.Message{
		ID:             m.ID,
		PublicID:       m.PublicID,
		ConversationID: m.ConversationID,
		Content:        m.Content,
		IsFromAI:       m.IsFromAI,
		SequenceNumber: m.SequenceNumber,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// NewSchemaMessage creates a database entity from domain model
func NewSchemaMessage(m *message.Message) *Message {
	return &Message{
		ID:             m.ID,
		PublicID:       m.PublicID,
		ConversationID: m.ConversationID,
		Content:        m.Content,
		IsFromAI:       m.IsFromAI,
		SequenceNumber: m.SequenceNumber,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
