package auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursemarket-server-go/pkg/response"
)

// Handler processes authentication HTTP requests.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs an auth handler instance.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a customer account.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid registration payload", err)
		return
	}

	session, err := h.service.Register(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		h.respondError(c, err, "registration failed")
		return
	}

	response.Created(c, session, "User registered successfully")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and returns JWT tokens.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid login payload", err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err, "login failed")
		return
	}

	response.Success(c, http.StatusOK, session, "Login successful", nil)
}

// RefreshToken rotates the token pair.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Refresh token is required", err)
		return
	}

	session, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.respondError(c, err, "token refresh failed")
		return
	}

	response.Success(c, http.StatusOK, session.TokenPair, "", nil)
}

// Logout revokes the caller's refresh token.
func (h *Handler) Logout(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.service.Logout(c.Request.Context(), actor); err != nil {
		h.respondError(c, err, "logout failed")
		return
	}

	response.Success(c, http.StatusOK, true, "Logout successful", nil)
}

// ForgotPassword mails a reset code. The answer is the same whether or not the email exists.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Email is required", err)
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err, "failed to process password reset")
		return
	}

	response.Success(c, http.StatusOK, true, "If the email exists in our system, a reset code has been sent.", nil)
}

// VerifyOTP checks a reset code and returns a reset token.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Please provide email and OTP", err)
		return
	}

	token, err := h.service.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		h.respondError(c, err, "failed to verify OTP")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"resetToken": token}, "OTP verified", nil)
}

// ResetPassword sets a new password using a reset token.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Please provide reset token and new password", err)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.respondError(c, err, "password reset failed")
		return
	}

	response.Success(c, http.StatusOK, true, "Password reset successful. Please login with your new password.", nil)
}

// Me returns the authenticated account.
func (h *Handler) Me(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	response.SuccessNoCache(c, actor)
}

type profileRequest struct {
	FullName  *string `json:"fullName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	AvatarURL *string `json:"avatarUrl"`
}

// UpdateProfile edits the caller's own account.
func (h *Handler) UpdateProfile(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid profile payload", err)
		return
	}

	updated, err := h.service.UpdateProfile(c.Request.Context(), actor, ProfileInput(req))
	if err != nil {
		h.respondError(c, err, "failed to update profile")
		return
	}

	response.Success(c, http.StatusOK, updated, "Profile updated successfully", nil)
}

func (h *Handler) actor(c *gin.Context) (user.User, bool) {
	actor, ok := user.FromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Not authorized", nil)
	}
	return actor, ok
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	if appErr, ok := apperrors.As(err); ok {
		response.AppError(h.logger, c, appErr)
		return
	}
	response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, fallback, err)
}
