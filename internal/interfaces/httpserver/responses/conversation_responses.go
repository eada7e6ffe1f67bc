package responses

import (
	"time"

	"chat-api/internal/domain/conversation"
	"chat-api/internal/domain/message"
)

// ConversationPayload is returned to clients.
type ConversationPayload struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	OwnerID        string     `json:"owner_id"`
	IsPublic       bool       `json:"is_public"`
	ShareLink      *string    `json:"share_link,omitempty"`
	ShareExpiresAt *time.Time `json:"share_expires_at,omitempty"`
	SharedFrom     *string    `json:"shared_from,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FromConversation maps the domain conversation to DTO.
func FromConversation(c *conversation.Conversation) ConversationPayload {
	return ConversationPayload{
		ID:             c.PublicID,
		Name:           c.Name,
		OwnerID:        c.OwnerID,
		IsPublic:       c.IsPublic,
		ShareLink:      c.ShareLink,
		ShareExpiresAt: c.ShareExpiresAt,
		SharedFrom:     c.SharedFrom,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// FromConversationList maps a list of domain conversations.
func FromConversationList(convs []*conversation.Conversation) []ConversationPayload {
	out := make([]ConversationPayload, len(convs))
	for i, c := range convs {
		out[i] = FromConversation(c)
	}
	return out
}

// ConversationListResponse wraps conversation lists.
type ConversationListResponse struct {
	Data []ConversationPayload `json:"data"`
}

// ShareLinkResponse carries a minted or current share token.
type ShareLinkResponse struct {
	ShareLink string `json:"share_link"`
}

// SharedConversationResponse is the public view of a shared
// conversation: the conversation plus its full transcript.
type SharedConversationResponse struct {
	Conversation ConversationPayload `json:"conversation"`
	Messages     []MessagePayload    `json:"messages"`
}

// FromSharedConversation maps a resolved share to its public view.
func FromSharedConversation(c *conversation.Conversation, msgs []*message.Message) SharedConversationResponse {
	return SharedConversationResponse{
		Conversation: FromConversation(c),
		Messages:     FromMessageList(c.PublicID, msgs),
	}
}
