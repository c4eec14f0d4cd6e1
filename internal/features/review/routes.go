package review

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches review endpoints. customer gates review creation.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authenticated gin.HandlerFunc, customer []gin.HandlerFunc) {
	reviews := router.Group("/reviews")

	reviews.GET("/course/:courseId", handler.ListByCourse)
	reviews.GET("/my-review/:courseId", authenticated, handler.MyReview)

	reviews.POST("", append(customer, handler.Create)...)
	reviews.PUT("/:id", authenticated, handler.Update)
	reviews.DELETE("/:id", authenticated, handler.Delete)
}
