package requests

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs struct-tag validation on a request payload.
func Validate(s any) error {
	return validate.Struct(s)
}

// CreateConversationRequest starts a new conversation.
type CreateConversationRequest struct {
	Name     string `json:"name" validate:"required,max=256"`
	IsPublic bool   `json:"is_public"`
}

// UpdateConversationRequest mutates conversation metadata. Omitted
// fields are left unchanged.
type UpdateConversationRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=256"`
	IsPublic *bool   `json:"is_public"`
}

// ShareConversationRequest configures a share link. A nil expiry keeps
// the link valid indefinitely.
type ShareConversationRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

// ForkSharedConversationRequest saves a shared conversation into the
// caller's account. ConversationID must match the conversation behind
// the share token.
type ForkSharedConversationRequest struct {
	ConversationID string  `json:"conversation_id" validate:"required"`
	NewName        *string `json:"new_name" validate:"omitempty,min=1,max=256"`
}

// AppendMessageRequest appends a message to a conversation.
type AppendMessageRequest struct {
	Content  string `json:"content" validate:"required"`
	IsFromAI bool   `json:"is_from_ai"`
}

// EditMessageRequest rewrites a user message, optionally regenerating
// everything after it.
type EditMessageRequest struct {
	Content    string `json:"content" validate:"required"`
	Regenerate bool   `json:"regenerate"`
}

// SearchRequest carries a keyword query parameter.
type SearchRequest struct {
	Keyword string `form:"keyword" validate:"required,min=1"`
}
