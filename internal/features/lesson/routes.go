package lesson

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches lesson endpoints. Reads are public; writes require provider.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, provider []gin.HandlerFunc) {
	lessons := router.Group("/lessons")
	{
		lessons.GET("/course/:courseId", handler.ListByCourse)
		lessons.GET("/:id", handler.GetByID)

		lessons.POST("", append(provider, handler.Create)...)
		lessons.PUT("/reorder", append(provider, handler.Reorder)...)
		lessons.PUT("/:id", append(provider, handler.Update)...)
		lessons.DELETE("/:id", append(provider, handler.Delete)...)
	}
}
