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

// ConversationHandler serves the conversation lifecycle endpoints.
type ConversationHandler struct {
	conversations conversation.Service
	messages      message.Service
	log           zerolog.Logger
}

// NewConversationHandler builds the conversation handler.
func NewConversationHandler(conversations conversation.Service, messages message.Service, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		messages:      messages,
		log:           log.With().Str("handler", "conversation").Logger(),
	}
}

// Create godoc
// @Summary Create a conversation
// @Tags conversations
// @Accept json
// @Produce json
// @Param request body requests.CreateConversationRequest true "Conversation"
// @Success 201 {object} responses.ConversationPayload
// @Failure 400 {object} responses.ErrorResponse
// @Router /v1/conversations [post]
func (h *ConversationHandler) Create(c *gin.Context) {
	var req requests.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "b2e7c1d4-9a35-4f60-8b1c-7d2e5f8a0c01")
		return
	}
	if err := requests.Validate(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "b2e7c1d4-9a35-4f60-8b1c-7d2e5f8a0c02")
		return
	}

	conv, err := h.conversations.Create(c.Request.Context(), conversation.CreateInput{
		OwnerID:  c.GetString(auth.UserIDKey),
		Name:     req.Name,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to create conversation")
		return
	}

	c.JSON(http.StatusCreated, responses.FromConversation(conv))
}

// List godoc
// @Summary List the caller's conversations
// @Tags conversations
// @Produce json
// @Success 200 {object} responses.ConversationListResponse
// @Router /v1/conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	convs, err := h.conversations.List(c.Request.Context(), c.GetString(auth.UserIDKey))
	if err != nil {
		responses.HandleError(c, err, "failed to list conversations")
		return
	}

	c.JSON(http.StatusOK, responses.ConversationListResponse{Data: responses.FromConversationList(convs)})
}

// ListForks godoc
// @Summary List the caller's forked conversations
// @Tags conversations
// @Produce json
// @Success 200 {object} responses.ConversationListResponse
// @Router /v1/conversations/forks [get]
func (h *ConversationHandler) ListForks(c *gin.Context) {
	convs, err := h.conversations.ListForked(c.Request.Context(), c.GetString(auth.UserIDKey))
	if err != nil {
		responses.HandleError(c, err, "failed to list forked conversations")
		return
	}

	c.JSON(http.StatusOK, responses.ConversationListResponse{Data: responses.FromConversationList(convs)})
}

// Search godoc
// @Summary Search conversations by name or message content
// @Tags conversations
// @Produce json
// @Param keyword query string true "Search keyword"
// @Success 200 {object} responses.ConversationListResponse
// @Failure 400 {object} responses.ErrorResponse
// @Router /v1/conversations/search [get]
func (h *ConversationHandler) Search(c *gin.Context) {
	var req requests.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid query", "b2e7c1d4-9a35-4f60-8b1c-7d2e5f8a0c03")
		return
	}
	if err := requests.Validate(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "keyword is required", "b2e7c1d4-9a35-4f60-8b1c-7d2e5f8a0c04")
		return
	}

	convs, err := h.conversations.Search(c.Request.Context(), c.GetString(auth.UserIDKey), req.Keyword)
	if err != nil {
		responses.HandleError(c, err, "failed to search conversations")
		return
	}

	c.JSON(http.StatusOK, responses.ConversationListResponse{Data: responses.FromConversationList(convs)})
}

// Get godoc
// @Summary Fetch a conversation
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} responses.ConversationPayload
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{id} [get]
func (h *ConversationHandler) Get(c *gin.Context) {
	conv, err := h.conversations.GetReadable(c.Request.Context(), c.GetString(auth.UserIDKey), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to fetch conversation")
		return
	}

	c.JSON(http.StatusOK, responses.FromConversation(conv))
}

// Update godoc
// @Summary Update conversation metadata
// @Tags conversations
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param request body requests.UpdateConversationRequest true "Fields to update"
// @Success 200 {object} responses.ConversationPayload
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{id} [patch]
func (h *ConversationHandler) Update(c *gin.Context) {
	var req requests.UpdateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "b2e7c1d4-9a35-4f60-8b1c-7d2e5f8a0c05")
		return
	}
	if err := requests.Validate(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "b2e7c1d4-9a35-4f60-8b1c-7d2e5f8a0c06")
		return
	}

	conv, err := h.conversations.Update(c.Request.Context(), c.GetString(auth.UserIDKey), c.Param("id"), conversation.UpdateInput{
		Name:     req.Name,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to update conversation")
		return
	}

	c.JSON(http.StatusOK, responses.FromConversation(conv))
}

// Delete godoc
// @Summary Delete a conversation and its messages
// @Tags conversations
// @Param id path string true "Conversation ID"
// @Success 204
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{id} [delete]
func (h *ConversationHandler) Delete(c *gin.Context) {
	if err := h.conversations.Delete(c.Request.Context(), c.GetString(auth.UserIDKey), c.Param("id")); err != nil {
		responses.HandleError(c, err, "failed to delete conversation")
		return
	}

	c.Status(http.StatusNoContent)
}

// Share godoc
// @Summary Mint or refresh a share link
// @Tags sharing
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param request body requests.ShareConversationRequest false "Share options"
// @Success 200 {object} responses.ShareLinkResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /v1/conversations/{id}/share [post]
func (h *ConversationHandler) Share(c *gin.Context) {
	var req requests.ShareConversationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "b2e7c1d4-9a35-4f60-8b1c-7d2e5f8a0c07")
			return
		}
	}

	token, err := h.conversations.Share(c.Request.Context(), c.GetString(auth.UserIDKey), c.Param("id"), conversation.ShareInput{
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to share conversation")
		return
	}

	c.JSON(http.StatusOK, responses.ShareLinkResponse{ShareLink: token})
}

// RevokeShare godoc
// @Summary Revoke a share link
// @Tags sharing
// @Param id path string true "Conversation ID"
// @Success 204
// @Failure 403 {object} responses.ErrorResponse
// @Router /v1/conversations/{id}/share [delete]
func (h *ConversationHandler) RevokeShare(c *gin.Context) {
	if err := h.conversations.RevokeShare(c.Request.Context(), c.GetString(auth.UserIDKey), c.Param("id")); err != nil {
		responses.HandleError(c, err, "failed to revoke share link")
		return
	}

	c.Status(http.StatusNoContent)
}

// ResolveShared godoc
// @Summary Resolve a share link to its conversation and transcript
// @Tags sharing
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} responses.SharedConversationResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 410 {object} responses.ErrorResponse
// @Router /v1/shared/{token} [get]
func (h *ConversationHandler) ResolveShared(c *gin.Context) {
	ctx := c.Request.Context()

	conv, err := h.conversations.ResolveShareLink(ctx, c.Param("token"))
	if err != nil {
		responses.HandleError(c, err, "failed to resolve share link")
		return
	}

	msgs, err := h.messages.Transcript(ctx, conv.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to load shared transcript")
		return
	}

	c.JSON(http.StatusOK, responses.FromSharedConversation(conv, msgs))
}

// Fork godoc
// @Summary Fork a shared conversation into the caller's account
// @Tags sharing
// @Accept json
// @Produce json
// @Param token path string true "Share token"
// @Param request body requests.ForkSharedConversationRequest true "Fork options"
// @Success 201 {object} responses.ConversationPayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 410 {object} responses.ErrorResponse
// @Router /v1/shared/{token}/fork [post]
func (h *ConversationHandler) Fork(c *gin.Context) {
	var req requests.ForkSharedConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "b2e7c1d4-9a35-4f60-8b1c-7d2e5f8a0c08")
		return
	}
	if err := requests.Validate(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "b2e7c1d4-9a35-4f60-8b1c-7d2e5f8a0c09")
		return
	}

	fork, err := h.conversations.Fork(c.Request.Context(), conversation.ForkInput{
		OwnerID:        c.GetString(auth.UserIDKey),
		Token:          c.Param("token"),
		ConversationID: req.ConversationID,
		NewName:        req.NewName,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to fork conversation")
		return
	}

	c.JSON(http.StatusCreated, responses.FromConversation(fork))
}
