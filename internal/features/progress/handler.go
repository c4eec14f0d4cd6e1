package progress

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursemarket-server-go/pkg/request"
	"github.com/mo-amir99/coursemarket-server-go/pkg/response"
)

// Handler processes learning progress requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a progress handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// CourseProgress returns the caller's progress through a course.
func (h *Handler) CourseProgress(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	courseID, err := request.UUIDParam(c, "courseId")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	summary, err := CourseProgress(h.db.WithContext(c.Request.Context()), actor, courseID)
	if err != nil {
		h.respondError(c, err, "failed to load course progress")
		return
	}

	response.Success(c, http.StatusOK, summary, "", nil)
}

// LessonProgress returns a lesson with the caller's progress on it.
func (h *Handler) LessonProgress(c *gin.Context) {
	actor, lessonID, ok := h.lessonRequest(c)
	if !ok {
		return
	}

	view, err := LessonProgress(h.db.WithContext(c.Request.Context()), actor, lessonID)
	if err != nil {
		h.respondError(c, err, "failed to load lesson progress")
		return
	}

	response.Success(c, http.StatusOK, view, "", nil)
}

// MarkAccessed records that the caller opened a lesson.
func (h *Handler) MarkAccessed(c *gin.Context) {
	actor, lessonID, ok := h.lessonRequest(c)
	if !ok {
		return
	}

	p, err := MarkAccessed(c.Request.Context(), h.db, actor, lessonID)
	if err != nil {
		h.respondError(c, err, "failed to record lesson access")
		return
	}

	response.Success(c, http.StatusOK, p, "Lesson access recorded", nil)
}

// MarkCompleted completes a lesson for the caller.
func (h *Handler) MarkCompleted(c *gin.Context) {
	actor, lessonID, ok := h.lessonRequest(c)
	if !ok {
		return
	}

	result, err := MarkCompleted(c.Request.Context(), h.db, actor, lessonID)
	if err != nil {
		h.respondError(c, err, "failed to complete lesson")
		return
	}

	response.Success(c, http.StatusOK, result, "Lesson marked as completed", nil)
}

func (h *Handler) lessonRequest(c *gin.Context) (user.User, uuid.UUID, bool) {
	actor, ok := h.actor(c)
	if !ok {
		return actor, uuid.Nil, false
	}

	lessonID, err := request.UUIDParam(c, "lessonId")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return actor, lessonID, false
	}
	return actor, lessonID, true
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
