package admin

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the admin console. admin must authenticate and require the admin role.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, admin []gin.HandlerFunc) {
	group := router.Group("/admin", admin...)

	group.GET("/users", handler.ListUsers)
	group.PUT("/users/:id", handler.UpdateUser)
	group.PUT("/users/:id/toggle-status", handler.ToggleUserStatus)

	group.GET("/pending-providers", handler.PendingProviders)
	group.PUT("/approve-provider/:id", handler.ApproveProvider)
	group.PUT("/reject-provider/:id", handler.RejectProvider)

	group.GET("/courses", handler.ListCourses)
	group.GET("/pending-courses", handler.PendingCourses)
	group.PUT("/approve-course/:id", handler.ApproveCourse)
	group.PUT("/reject-course/:id", handler.RejectCourse)

	group.GET("/stats", handler.Stats)
	group.GET("/system", handler.System)
	group.GET("/logs", handler.Logs)
	group.POST("/logs/clear", handler.ClearLogs)
}
