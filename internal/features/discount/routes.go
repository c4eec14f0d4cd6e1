package discount

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches the public code check and provider discount management.
// validateLimit throttles the public preview endpoint.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, provider []gin.HandlerFunc, validateLimit gin.HandlerFunc) {
	discounts := router.Group("/discounts")

	discounts.POST("/validate", validateLimit, handler.Validate)

	discounts.GET("", append(provider, handler.List)...)
	discounts.POST("", append(provider, handler.Create)...)
	discounts.GET("/:id", append(provider, handler.GetByID)...)
	discounts.PUT("/:id", append(provider, handler.Update)...)
	discounts.DELETE("/:id", append(provider, handler.Delete)...)
	discounts.PATCH("/:id/toggle", append(provider, handler.Toggle)...)
}
