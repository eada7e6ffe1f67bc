package entities

import (
	"time"

	"chat-api/internal/domain/conversation"
)

// Conversation represents the database schema for conversations
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID       string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	OwnerID        string     `gorm:"type:varchar(64);index:idx_conversation_owner;not null"`
	Name           string     `gorm:"type:varchar(256);not null"`
	IsPublic       bool       `gorm:"not null;default:false"`
	ShareLink      *string    `gorm:"type:varchar(64);uniqueIndex"`
	ShareExpiresAt *time.Time `gorm:"type:timestamp"`
	SharedFrom     *string    `gorm:"type:varchar(50);index"`

	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// EtoD converts database entity to domain model
func (c *Conversation) EtoD() *conversation.Conversation {
	return &conversation.Conversation{
		ID:             c.ID,
		PublicID:       c.PublicID,
		OwnerID:        c.OwnerID,
		Name:           c.Name,
		IsPublic:       c.IsPublic,
		ShareLink:      c.ShareLink,
		ShareExpiresAt: c.ShareExpiresAt,
		SharedFrom:     c.SharedFrom,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// NewSchemaConversation creates a database entity from domain model
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	return &Conversation{
		ID:             c.ID,
		PublicID:       c.PublicID,
		OwnerID:        c.OwnerID,
		Name:           c.Name,
		IsPublic:       c.IsPublic,
		ShareLink:      c.ShareLink,
		ShareExpiresAt: c.ShareExpiresAt,
		SharedFrom:     c.SharedFrom,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
