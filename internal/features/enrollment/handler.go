package enrollment

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursemarket-server-go/pkg/request"
	"github.com/mo-amir99/coursemarket-server-go/pkg/response"
)

// Handler processes enrollment HTTP requests.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs an enrollment handler instance.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type enrollRequest struct {
	DiscountCode string `json:"discountCode"`
}

// Enroll enrolls the caller in a course, optionally with a discount code.
func (h *Handler) Enroll(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	courseID, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid enrollment payload", err)
		return
	}

	created, err := h.service.Enroll(c.Request.Context(), actor, courseID, req.DiscountCode)
	if err != nil {
		h.respondError(c, err, "failed to enroll in course")
		return
	}

	response.Created(c, created, "Successfully enrolled in the course")
}

// Enrolled lists the caller's enrollments.
func (h *Handler) Enrolled(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	enrollments, err := h.service.Enrolled(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err, "failed to list enrollments")
		return
	}

	response.List(c, enrollments, len(enrollments), nil)
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
