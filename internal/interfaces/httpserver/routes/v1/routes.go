package v1

import (
	"github.com/gin-gonic/gin"

	"chat-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes builds the v1 route registrar.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		handlers: handlerProvider,
	}
}

// Register attaches the authenticated v1 routes under /v1.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/v1")
	registerConversationRoutes(group, r.handlers.Conversation)
	registerMessageRoutes(group, r.handlers.Message)

	// Forking requires a caller identity, so it sits behind auth even
	// though it is keyed by a share token.
	group.POST("/shared/:token/fork", r.handlers.Conversation.Fork)
}

// RegisterPublic attaches the v1 routes that work without a caller
// identity. Share links are capability tokens; holding one grants read
// access.
func (r *Routes) RegisterPublic(engine *gin.Engine) {
	group := engine.Group("/v1")
	group.GET("/shared/:token", r.handlers.Conversation.ResolveShared)
}
