package v1

import (
	"github.com/gin-gonic/gin"

	"chat-api/internal/interfaces/httpserver/handlers"
)

func registerConversationRoutes(router gin.IRoutes, handler *handlers.ConversationHandler) {
	router.POST("/conversations", handler.Create)
	router.GET("/conversations", handler.List)
	router.GET("/conversations/search", handler.Search)
	router.GET("/conversations/forks", handler.ListForks)
	router.GET("/conversations/:id", handler.Get)
	router.PATCH("/conversations/:id", handler.Update)
	router.DELETE("/conversations/:id", handler.Delete)

	// Share lifecycle
	router.POST("/conversations/:id/share", handler.Share)
	router.DELETE("/conversations/:id/share", handler.RevokeShare)
}
