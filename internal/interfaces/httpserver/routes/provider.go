package routes

import (
	"github.com/gin-gonic/gin"

	"chat-api/internal/interfaces/httpserver/handlers"
	v1 "chat-api/internal/interfaces/httpserver/routes/v1"
)

// Provider coordinates all route registrations.
type Provider struct {
	V1 *v1.Routes
}

// NewProvider constructs the route provider.
func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{
		V1: v1.NewRoutes(handlerProvider),
	}
}

// Register attaches the authenticated routes to the gin engine.
func (p *Provider) Register(engine *gin.Engine) {
	p.V1.Register(engine)
}

// RegisterPublic attaches the unauthenticated routes; they must be
// registered before the auth middleware is applied.
func (p *Provider) RegisterPublic(engine *gin.Engine) {
	p.V1.RegisterPublic(engine)
}
