package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches authentication endpoints. limit throttles the
// credential endpoints; authenticated guards the session endpoints.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authenticated, limit gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", limit, handler.Register)
		auth.POST("/login", limit, handler.Login)
		auth.POST("/refresh-token", limit, handler.RefreshToken)
		auth.POST("/forgot-password", limit, handler.ForgotPassword)
		auth.POST("/verify-otp", limit, handler.VerifyOTP)
		auth.POST("/reset-password", limit, handler.ResetPassword)

		auth.POST("/logout", authenticated, handler.Logout)
		auth.GET("/me", authenticated, handler.Me)
		auth.PUT("/profile", authenticated, handler.UpdateProfile)
	}
}
