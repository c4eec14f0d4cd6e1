package enrollment

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches enrollment endpoints under /courses.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, customer []gin.HandlerFunc) {
	courses := router.Group("/courses")

	courses.GET("/customer/enrolled", append(customer, handler.Enrolled)...)
	courses.POST("/:id/enroll", append(customer, handler.Enroll)...)
}
