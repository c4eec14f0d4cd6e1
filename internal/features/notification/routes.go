package notification

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches inbox endpoints behind authenticated.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authenticated gin.HandlerFunc) {
	notifications := router.Group("/notifications", authenticated)
	{
		notifications.GET("", handler.List)
		notifications.GET("/unread-count", handler.UnreadCount)
		notifications.PUT("/read-all", handler.MarkAllRead)
		notifications.DELETE("/clear-read", handler.ClearRead)
		notifications.PUT("/:id/read", handler.MarkRead)
		notifications.DELETE("/:id", handler.Delete)
	}
}
