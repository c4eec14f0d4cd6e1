package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/course"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursemarket-server-go/pkg/pagination"
	"github.com/mo-amir99/coursemarket-server-go/pkg/request"
	"github.com/mo-amir99/coursemarket-server-go/pkg/response"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

// Handler serves the admin console endpoints.
type Handler struct {
	service *Service
	db      *gorm.DB
	logDir  string
	logger  *slog.Logger
}

// NewHandler constructs an admin handler. logDir is where the application log files live.
func NewHandler(service *Service, db *gorm.DB, logDir string, logger *slog.Logger) *Handler {
	return &Handler{service: service, db: db, logDir: logDir, logger: logger}
}

// ListUsers returns accounts filtered by role, status and search keyword.
func (h *Handler) ListUsers(c *gin.Context) {
	params := pagination.Extract(c)
	filters := user.ListFilters{
		Role:    types.Role(c.Query("role")),
		Status:  types.UserStatus(c.Query("status")),
		Keyword: c.Query("search"),
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), filters, params)
	if err != nil {
		h.respondError(c, err, "failed to list users")
		return
	}

	response.List(c, users, len(users), params.Meta(total))
}

type updateUserRequest struct {
	FullName  *string           `json:"fullName"`
	Email     *string           `json:"email"`
	AvatarURL *string           `json:"avatarUrl"`
	Role      *types.Role       `json:"role"`
	Status    *types.UserStatus `json:"status"`
}

// UpdateUser edits an account on behalf of an administrator.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user payload", err)
		return
	}

	updated, err := h.service.UpdateUser(c.Request.Context(), id, user.UpdateInput{
		FullName:  req.FullName,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
		Role:      req.Role,
		Status:    req.Status,
	})
	if err != nil {
		h.respondError(c, err, "failed to update user")
		return
	}

	response.Success(c, http.StatusOK, updated, "User updated successfully", nil)
}

// ToggleUserStatus activates or deactivates an account.
func (h *Handler) ToggleUserStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	updated, err := h.service.ToggleUserStatus(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err, "failed to toggle user status")
		return
	}

	state := "deactivated"
	if updated.Status == types.UserStatusActive {
		state = "activated"
	}
	response.Success(c, http.StatusOK, updated, fmt.Sprintf("User account %s successfully", state), nil)
}

// PendingProviders lists provider requests awaiting a decision.
func (h *Handler) PendingProviders(c *gin.Context) {
	users, err := h.service.PendingProviders(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "failed to list pending providers")
		return
	}
	response.List(c, users, len(users), nil)
}

// ApproveProvider grants the provider role.
func (h *Handler) ApproveProvider(c *gin.Context) {
	h.resolveProvider(c, h.service.ApproveProvider, "Provider request approved successfully")
}

// RejectProvider declines a provider request.
func (h *Handler) RejectProvider(c *gin.Context) {
	h.resolveProvider(c, h.service.RejectProvider, "Provider request rejected")
}

func (h *Handler) resolveProvider(c *gin.Context, decide func(ctx context.Context, id uuid.UUID) (user.User, error), message string) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	updated, err := decide(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to resolve provider request")
		return
	}

	response.Success(c, http.StatusOK, updated, message, nil)
}

// ListCourses returns courses in every moderation state.
func (h *Handler) ListCourses(c *gin.Context) {
	params := pagination.Extract(c)
	filters := course.ListFilters{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	if raw := c.Query("status"); raw != "" {
		status := types.CourseStatus(raw)
		if !status.Valid() {
			response.Error(c, http.StatusBadRequest, "Invalid status", nil)
			return
		}
		filters.Status = &status
	}

	courses, total, err := h.service.ListCourses(c.Request.Context(), filters, params)
	if err != nil {
		h.respondError(c, err, "failed to list courses")
		return
	}

	response.List(c, courses, len(courses), params.Meta(total))
}

// PendingCourses lists courses awaiting moderation.
func (h *Handler) PendingCourses(c *gin.Context) {
	courses, err := h.service.PendingCourses(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "failed to list pending courses")
		return
	}
	response.List(c, courses, len(courses), nil)
}

// ApproveCourse publishes a pending or rejected course.
func (h *Handler) ApproveCourse(c *gin.Context) {
	h.moderateCourse(c, h.service.ApproveCourse, "Course approved successfully")
}

// RejectCourse rejects a course.
func (h *Handler) RejectCourse(c *gin.Context) {
	h.moderateCourse(c, h.service.RejectCourse, "Course rejected")
}

func (h *Handler) moderateCourse(c *gin.Context, decide func(ctx context.Context, id uuid.UUID) (course.Course, error), message string) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	updated, err := decide(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to moderate course")
		return
	}

	response.Success(c, http.StatusOK, updated, message, nil)
}

// Stats returns the platform overview.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "failed to load statistics")
		return
	}
	response.Success(c, http.StatusOK, stats, "", nil)
}

// System reports process, disk and connection pool figures.
func (h *Handler) System(c *gin.Context) {
	response.Success(c, http.StatusOK, CollectSystemStats(h.db), "", nil)
}

// Logs returns the tail of the info or error log.
// GET /admin/logs?type=info|error&lines=100
func (h *Handler) Logs(c *gin.Context) {
	lines, _ := strconv.Atoi(c.Query("lines"))

	tail, err := TailLog(h.logDir, c.DefaultQuery("type", "info"), lines)
	if err != nil {
		h.respondError(c, err, "Failed to read log file")
		return
	}
	response.Success(c, http.StatusOK, tail, "", nil)
}

// ClearLogs truncates the log files.
func (h *Handler) ClearLogs(c *gin.Context) {
	cleared, err := ClearLogs(h.logDir)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok {
			response.AppError(h.logger, c, appErr)
			return
		}
		h.logger.Warn("some log files could not be cleared", slog.String("error", err.Error()))
	}
	response.Success(c, http.StatusOK, gin.H{"cleared": cleared}, fmt.Sprintf("Cleared %d log files.", cleared), nil)
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
