package conversation

import (
	"context"
	"time"
)

// Conversation is a thread of messages owned by a single user.
// OwnerID is an opaque identifier issued by the external identity
// provider; the service never interprets it.
type Conversation struct {
	ID             uint
	PublicID       string
	OwnerID        string
	Name           string
	IsPublic       bool
	ShareLink      *string
	ShareExpiresAt *time.Time
	SharedFrom     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsShared reports whether the conversation currently carries a share link.
func (c *Conversation) IsShared() bool {
	return c.ShareLink != nil && *c.ShareLink != ""
}

// ShareExpired reports whether the share link has lapsed at the given
// instant. A nil expiry means the link never expires.
func (c *Conversation) ShareExpired(now time.Time) bool {
	if c.ShareExpiresAt == nil {
		return false
	}
	return !now.Before(*c.ShareExpiresAt)
}

// IsOwnedBy reports whether ownerID owns the conversation.
func (c *Conversation) IsOwnedBy(ownerID string) bool {
	return c.OwnerID == ownerID
}

// Repository defines persistence operations for conversations.
type Repository interface {
	Create(ctx context.Context, conv *Conversation) error
	FindByID(ctx context.Context, id uint) (*Conversation, error)
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*Conversation, error)
	FindForkedByOwner(ctx context.Context, ownerID string) ([]*Conversation, error)
	FindByShareLink(ctx context.Context, token string) (*Conversation, error)
	SearchByNameOrContent(ctx context.Context, ownerID, keyword string) ([]*Conversation, error)
	Update(ctx context.Context, conv *Conversation) error
	Delete(ctx context.Context, id uint) error
}

// MessageCopier duplicates the full transcript of one conversation into
// another. It is the narrow view of the message store the fork flow
// needs; the copies get fresh identifiers and sequence numbers.
type MessageCopier interface {
	CopyAll(ctx context.Context, sourceConversationID, targetConversationID uint) (int, error)
}
