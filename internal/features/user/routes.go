package user

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches self-service account endpoints. authenticated must
// resolve the caller before these handlers run.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authenticated gin.HandlerFunc) {
	users := router.Group("/users", authenticated)
	{
		users.POST("/request-provider", handler.RequestProvider)
		users.DELETE("/account", handler.DeleteAccount)
	}
}
