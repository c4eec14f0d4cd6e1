package lesson

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

// Handler processes lesson HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a lesson handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// ListByCourse returns a course's lessons in order.
func (h *Handler) ListByCourse(c *gin.Context) {
	courseID, err := request.UUIDParam(c, "courseId")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	lessons, err := ListByCourse(h.db.WithContext(c.Request.Context()), courseID)
	if err != nil {
		h.respondError(c, err, "failed to list lessons")
		return
	}

	response.List(c, lessons, len(lessons), nil)
}

// GetByID returns a single lesson.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	l, err := Get(h.db.WithContext(c.Request.Context()), id)
	if err != nil {
		h.respondError(c, err, "failed to load lesson")
		return
	}

	response.Success(c, http.StatusOK, l, "", nil)
}

type createRequest struct {
	CourseID    string     `json:"courseId" binding:"required"`
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=1000"`
	VideoURL    string     `json:"videoUrl" binding:"required"`
	Duration    int        `json:"duration" binding:"min=0"`
	Content     string     `json:"content"`
	Resources   []Resource `json:"resources"`
	IsFree      bool       `json:"isFree"`
}

// Create adds a lesson to one of the caller's courses.
func (h *Handler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson payload", err)
		return
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	l, err := CreateForProvider(h.db.WithContext(c.Request.Context()), actor, CreateInput{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Duration:    req.Duration,
		Content:     req.Content,
		Resources:   req.Resources,
		IsFree:      req.IsFree,
	})
	if err != nil {
		h.respondError(c, err, "failed to create lesson")
		return
	}

	response.Created(c, l, "Lesson created successfully")
}

type updateRequest struct {
	Title       *string     `json:"title" binding:"omitempty,max=200"`
	Description *string     `json:"description" binding:"omitempty,max=1000"`
	VideoURL    *string     `json:"videoUrl"`
	Duration    *int        `json:"duration" binding:"omitempty,min=0"`
	Content     *string     `json:"content"`
	Order       *int        `json:"order"`
	Resources   *[]Resource `json:"resources"`
	IsFree      *bool       `json:"isFree"`
}

// Update edits a lesson of one of the caller's courses.
func (h *Handler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson payload", err)
		return
	}

	l, err := UpdateForProvider(h.db.WithContext(c.Request.Context()), actor, id, UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Duration:    req.Duration,
		Content:     req.Content,
		Order:       req.Order,
		Resources:   req.Resources,
		IsFree:      req.IsFree,
	})
	if err != nil {
		h.respondError(c, err, "failed to update lesson")
		return
	}

	response.Success(c, http.StatusOK, l, "Lesson updated successfully", nil)
}

// Delete removes a lesson of one of the caller's courses.
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	if err := DeleteForProvider(h.db.WithContext(c.Request.Context()), actor, id); err != nil {
		h.respondError(c, err, "failed to delete lesson")
		return
	}

	response.Success(c, http.StatusOK, nil, "Lesson deleted successfully", nil)
}

type reorderRequest struct {
	CourseID     string `json:"courseId" binding:"required"`
	LessonOrders []struct {
		LessonID string `json:"lessonId" binding:"required"`
		Order    int    `json:"order"`
	} `json:"lessonOrders" binding:"required,dive"`
}

// Reorder changes lesson positions within a course.
func (h *Handler) Reorder(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid reorder payload", err)
		return
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	changes := make([]OrderChange, 0, len(req.LessonOrders))
	for _, item := range req.LessonOrders {
		lessonID, err := uuid.Parse(item.LessonID)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
			return
		}
		changes = append(changes, OrderChange{LessonID: lessonID, Order: item.Order})
	}

	if err := ReorderForProvider(h.db.WithContext(c.Request.Context()), actor, courseID, changes); err != nil {
		h.respondError(c, err, "failed to reorder lessons")
		return
	}

	response.Success(c, http.StatusOK, nil, "Lessons reordered successfully", nil)
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
