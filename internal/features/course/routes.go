package course

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches course catalog and provider management endpoints.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, optionalAuth gin.HandlerFunc, provider []gin.HandlerFunc) {
	courses := router.Group("/courses")

	courses.GET("", handler.List)
	courses.GET("/provider/my-courses", append(provider, handler.MyCourses)...)
	courses.GET("/:id", optionalAuth, handler.GetByID)

	courses.POST("", append(provider, handler.Create)...)
	courses.PUT("/:id", append(provider, handler.Update)...)
	courses.DELETE("/:id", append(provider, handler.Delete)...)
}
