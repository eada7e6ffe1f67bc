package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"chat-api/internal/domain/conversation"
	"chat-api/internal/domain/message"
	"chat-api/internal/utils/platformerrors"
)

func ownedConversation() *conversation.Conversation {
	return &conversation.Conversation{ID: 7, PublicID: "conv_abc", OwnerID: "user-1", Name: "Trip planning"}
}

func TestMessageHandler_Append(t *testing.T) {
	convs := &MockConversationService{
		GetOwnedFunc: func(_ context.Context, callerID, publicID string) (*conversation.Conversation, error) {
			assert.Equal(t, "user-1", callerID)
			assert.Equal(t, "conv_abc", publicID)
			return ownedConversation(), nil
		},
	}
	msgs := &MockMessageService{
		AppendFunc: func(_ context.Context, input message.AppendInput) (*message.Message, error) {
			assert.Equal(t, uint(7), input.ConversationID)
			assert.Equal(t, "Hello", input.Content)
			return &message.Message{ID: 1, PublicID: "msg_1", ConversationID: 7, Content: input.Content, SequenceNumber: 1}, nil
		},
	}
	engine, provider := setupRouter(convs, msgs)
	engine.POST("/v1/conversations/:id/messages", provider.Message.Append)

	rec := doJSON(t, engine, http.MethodPost, "/v1/conversations/conv_abc/messages", gin.H{"content": "Hello"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "msg_1")
}

func TestMessageHandler_AppendMissingContent(t *testing.T) {
	engine, provider := setupRouter(&MockConversationService{}, &MockMessageService{})
	engine.POST("/v1/conversations/:id/messages", provider.Message.Append)

	rec := doJSON(t, engine, http.MethodPost, "/v1/conversations/conv_abc/messages", gin.H{"is_from_ai": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessageHandler_AppendNotOwner(t *testing.T) {
	convs := &MockConversationService{
		GetOwnedFunc: func(ctx context.Context, _, _ string) (*conversation.Conversation, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "caller does not own this conversation", nil, "")
		},
	}
	engine, provider := setupRouter(convs, &MockMessageService{})
	engine.POST("/v1/conversations/:id/messages", provider.Message.Append)

	rec := doJSON(t, engine, http.MethodPost, "/v1/conversations/conv_abc/messages", gin.H{"content": "Hello"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMessageHandler_EditAIMessageRejected(t *testing.T) {
	convs := &MockConversationService{
		GetOwnedByIDFunc: func(_ context.Context, _ string, _ uint) (*conversation.Conversation, error) {
			return ownedConversation(), nil
		},
	}
	msgs := &MockMessageService{
		GetMessageFunc: func(_ context.Context, publicID string) (*message.Message, error) {
			return &message.Message{ID: 2, PublicID: publicID, ConversationID: 7, Content: "Hi", IsFromAI: true, SequenceNumber: 2}, nil
		},
		EditFunc: func(ctx context.Context, _ message.EditInput) (*message.Message, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "only user messages can be edited", nil, "")
		},
	}
	engine, provider := setupRouter(convs, msgs)
	engine.PATCH("/v1/messages/:id", provider.Message.Edit)

	rec := doJSON(t, engine, http.MethodPatch, "/v1/messages/msg_2", gin.H{"content": "rewrite", "regenerate": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMessageHandler_SearchMissingKeyword(t *testing.T) {
	engine, provider := setupRouter(&MockConversationService{}, &MockMessageService{})
	engine.GET("/v1/conversations/:id/messages/search", provider.Message.Search)

	rec := doJSON(t, engine, http.MethodGet, "/v1/conversations/conv_abc/messages/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessageHandler_Delete(t *testing.T) {
	convs := &MockConversationService{
		GetOwnedByIDFunc: func(_ context.Context, _ string, id uint) (*conversation.Conversation, error) {
			assert.Equal(t, uint(7), id)
			return ownedConversation(), nil
		},
	}
	deleted := false
	msgs := &MockMessageService{
		GetMessageFunc: func(_ context.Context, publicID string) (*message.Message, error) {
			return &message.Message{ID: 3, PublicID: publicID, ConversationID: 7, Content: "bye", SequenceNumber: 3}, nil
		},
		DeleteMessageFunc: func(_ context.Context, id uint) error {
			assert.Equal(t, uint(3), id)
			deleted = true
			return nil
		},
	}
	engine, provider := setupRouter(convs, msgs)
	engine.DELETE("/v1/messages/:id", provider.Message.Delete)

	rec := doJSON(t, engine, http.MethodDelete, "/v1/messages/msg_3", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, deleted)
}
