package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-api/internal/domain/conversation"
	"chat-api/internal/domain/message"
	"chat-api/internal/infrastructure/auth"
	"chat-api/internal/interfaces/httpserver/requests"
	"chat-api/internal/interfaces/httpserver/responses"
	"chat-api/internal/utils/platformerrors"
)

// MessageHandler serves the message exchange endpoints.
type MessageHandler struct {
	conversations conversation.Service
	messages      message.Service
	log           zerolog.Logger
}

// NewMessageHandler builds the message handler.
func NewMessageHandler(conversations conversation.Service, messages message.Service, log zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		conversations: conversations,
		messages:      messages,
		log:           log.With().Str("handler", "message").Logger(),
	}
}

// Append godoc
// @Summary Append a message to a conversation
// @Description A user-authored append also produces an AI reply; the response body is the appended message.
// @Tags messages
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param request body requests.AppendMessageRequest true "Message"
// @Success 201 {object} responses.MessagePayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{id}/messages [post]
func (h *MessageHandler) Append(c *gin.Context) {
	var req requests.AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "e5a8d3b6-2c19-4f7e-9d0a-4b6c8e1f3a01")
		return
	}
	if err := requests.Validate(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "e5a8d3b6-2c19-4f7e-9d0a-4b6c8e1f3a02")
		return
	}

	ctx := c.Request.Context()
	conv, err := h.conversations.GetOwned(ctx, c.GetString(auth.UserIDKey), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to append message")
		return
	}

	msg, err := h.messages.Append(ctx, message.AppendInput{
		ConversationID: conv.ID,
		Content:        req.Content,
		FromAI:         req.IsFromAI,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to append message")
		return
	}

	c.JSON(http.StatusCreated, responses.FromMessage(conv.PublicID, msg))
}

// List godoc
// @Summary List a conversation's messages in transcript order
// @Tags messages
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} responses.MessageListResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{id}/messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	conv, err := h.conversations.GetReadable(ctx, c.GetString(auth.UserIDKey), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to list messages")
		return
	}

	msgs, err := h.messages.Transcript(ctx, conv.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to list messages")
		return
	}

	c.JSON(http.StatusOK, responses.MessageListResponse{Data: responses.FromMessageList(conv.PublicID, msgs)})
}

// Search godoc
// @Summary Search a conversation's messages
// @Tags messages
// @Produce json
// @Param id path string true "Conversation ID"
// @Param keyword query string true "Search keyword"
// @Success 200 {object} responses.MessageListResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /v1/conversations/{id}/messages/search [get]
func (h *MessageHandler) Search(c *gin.Context) {
	var req requests.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid query", "e5a8d3b6-2c19-4f7e-9d0a-4b6c8e1f3a03")
		return
	}
	if err := requests.Validate(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "keyword is required", "e5a8d3b6-2c19-4f7e-9d0a-4b6c8e1f3a04")
		return
	}

	ctx := c.Request.Context()
	conv, err := h.conversations.GetReadable(ctx, c.GetString(auth.UserIDKey), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to search messages")
		return
	}

	msgs, err := h.messages.Search(ctx, conv.ID, req.Keyword)
	if err != nil {
		responses.HandleError(c, err, "failed to search messages")
		return
	}

	c.JSON(http.StatusOK, responses.MessageListResponse{Data: responses.FromMessageList(conv.PublicID, msgs)})
}

// Get godoc
// @Summary Fetch a single message
// @Tags messages
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {object} responses.MessagePayload
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/messages/{id} [get]
func (h *MessageHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	msg, err := h.messages.GetMessage(ctx, c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to fetch message")
		return
	}

	conv, err := h.conversations.GetReadableByID(ctx, c.GetString(auth.UserIDKey), msg.ConversationID)
	if err != nil {
		responses.HandleError(c, err, "failed to fetch message")
		return
	}

	c.JSON(http.StatusOK, responses.FromMessage(conv.PublicID, msg))
}

// Edit godoc
// @Summary Edit a user message, optionally regenerating downstream
// @Description With regenerate set, every message after the edited one is replaced by a fresh AI reply.
// @Tags messages
// @Accept json
// @Produce json
// @Param id path string true "Message ID"
// @Param request body requests.EditMessageRequest true "Edit"
// @Success 200 {object} responses.MessagePayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/messages/{id} [patch]
func (h *MessageHandler) Edit(c *gin.Context) {
	var req requests.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "e5a8d3b6-2c19-4f7e-9d0a-4b6c8e1f3a05")
		return
	}
	if err := requests.Validate(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "e5a8d3b6-2c19-4f7e-9d0a-4b6c8e1f3a06")
		return
	}

	ctx := c.Request.Context()
	msg, err := h.messages.GetMessage(ctx, c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to edit message")
		return
	}

	conv, err := h.conversations.GetOwnedByID(ctx, c.GetString(auth.UserIDKey), msg.ConversationID)
	if err != nil {
		responses.HandleError(c, err, "failed to edit message")
		return
	}

	edited, err := h.messages.Edit(ctx, message.EditInput{
		PublicID:   msg.PublicID,
		Content:    req.Content,
		Regenerate: req.Regenerate,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to edit message")
		return
	}

	c.JSON(http.StatusOK, responses.FromMessage(conv.PublicID, edited))
}

// Delete godoc
// @Summary Delete a single message
// @Tags messages
// @Param id path string true "Message ID"
// @Success 204
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/messages/{id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	msg, err := h.messages.GetMessage(ctx, c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to delete message")
		return
	}

	if _, err := h.conversations.GetOwnedByID(ctx, c.GetString(auth.UserIDKey), msg.ConversationID); err != nil {
		responses.HandleError(c, err, "failed to delete message")
		return
	}

	if err := h.messages.DeleteMessage(ctx, msg.ID); err != nil {
		responses.HandleError(c, err, "failed to delete message")
		return
	}

	c.Status(http.StatusNoContent)
}
