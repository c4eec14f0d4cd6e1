package progress

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches progress endpoints; all require authentication.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authenticated gin.HandlerFunc) {
	progress := router.Group("/progress", authenticated)

	progress.GET("/course/:courseId", handler.CourseProgress)
	progress.GET("/lesson/:lessonId", handler.LessonProgress)
	progress.POST("/lesson/:lessonId/access", handler.MarkAccessed)
	progress.POST("/lesson/:lessonId/complete", handler.MarkCompleted)
}
