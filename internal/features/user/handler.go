package user

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursemarket-server-go/pkg/response"
)

// Handler processes self-service account requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a user handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// RequestProvider submits the caller for provider approval.
func (h *Handler) RequestProvider(c *gin.Context) {
	actor, ok := FromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Not authorized", nil)
		return
	}

	updated, err := RequestProvider(h.db.WithContext(c.Request.Context()), actor)
	if err != nil {
		h.respondError(c, err, "failed to submit provider request")
		return
	}

	response.Success(c, http.StatusOK, updated,
		"Request to become a provider submitted successfully. Waiting for admin approval.", nil)
}

// DeleteAccount deactivates the caller's account.
func (h *Handler) DeleteAccount(c *gin.Context) {
	actor, ok := FromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Not authorized", nil)
		return
	}

	if err := DeactivateAccount(h.db.WithContext(c.Request.Context()), actor); err != nil {
		h.respondError(c, err, "failed to deactivate account")
		return
	}

	response.Success(c, http.StatusOK, nil, "Account has been deactivated successfully", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	if appErr, ok := apperrors.As(err); ok {
		response.AppError(h.logger, c, appErr)
		return
	}
	response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, fallback, err)
}
