package v1

import (
	"github.com/gin-gonic/gin"

	"chat-api/internal/interfaces/httpserver/handlers"
)

func registerMessageRoutes(router gin.IRoutes, handler *handlers.MessageHandler) {
	// Message routes nested under conversations
	router.POST("/conversations/:id/messages", handler.Append)
	router.GET("/conversations/:id/messages", handler.List)
	router.GET("/conversations/:id/messages/search", handler.Search)

	// Single message routes
	router.GET("/messages/:id", handler.Get)
	router.PATCH("/messages/:id", handler.Edit)
	router.DELETE("/messages/:id", handler.Delete)
}
