package course

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursemarket-server-go/pkg/pagination"
	"github.com/mo-amir99/coursemarket-server-go/pkg/request"
	"github.com/mo-amir99/coursemarket-server-go/pkg/response"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

const catalogCacheSeconds = 30

// Handler processes course HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a course handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns the public catalog of approved courses.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)
	approved := types.CourseStatusApproved

	filters := ListFilters{
		Status:   &approved,
		Category: c.Query("category"),
		Search:   c.Query("search"),
		MinPrice: request.QueryMoney(c, "minPrice"),
		MaxPrice: request.QueryMoney(c, "maxPrice"),
		Sort:     c.Query("sort"),
	}

	courses, total, err := List(h.db.WithContext(c.Request.Context()), filters, params)
	if err != nil {
		h.respondError(c, err, "failed to list courses")
		return
	}

	response.ListWithCache(c, courses, len(courses), params.Meta(total), catalogCacheSeconds)
}

// GetByID returns a course with provider and lessons.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	var actor *user.User
	if u, ok := user.FromContext(c); ok {
		actor = &u
	}

	result, err := GetVisible(h.db.WithContext(c.Request.Context()), actor, id)
	if err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	response.Success(c, http.StatusOK, result, "", nil)
}

type createRequest struct {
	Title        string       `json:"title" binding:"required,max=200"`
	Description  string       `json:"description" binding:"required,max=2000"`
	Price        *types.Money `json:"price"`
	ThumbnailURL string       `json:"thumbnailUrl" binding:"required"`
	Category     string       `json:"category" binding:"required"`
}

// Create adds a pending course owned by the caller.
func (h *Handler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Please provide all required fields", err)
		return
	}

	price := types.NewMoneyFromInt(0)
	if req.Price != nil {
		price = *req.Price
	}

	created, err := CreateForProvider(h.db.WithContext(c.Request.Context()), actor, CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        price,
		ThumbnailURL: req.ThumbnailURL,
		Category:     req.Category,
	})
	if err != nil {
		h.respondError(c, err, "failed to create course")
		return
	}

	response.Created(c, created, "Course created successfully. Waiting for admin approval.")
}

type updateRequest struct {
	Title        *string      `json:"title" binding:"omitempty,max=200"`
	Description  *string      `json:"description" binding:"omitempty,max=2000"`
	Price        *types.Money `json:"price"`
	ThumbnailURL *string      `json:"thumbnailUrl"`
	Category     *string      `json:"category"`
}

// Update edits one of the caller's courses.
func (h *Handler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course payload", err)
		return
	}

	updated, err := UpdateForProvider(h.db.WithContext(c.Request.Context()), actor, id, UpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		ThumbnailURL: req.ThumbnailURL,
		Category:     req.Category,
	})
	if err != nil {
		h.respondError(c, err, "failed to update course")
		return
	}

	response.Success(c, http.StatusOK, updated, "Course updated successfully", nil)
}

// Delete removes one of the caller's courses.
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	if err := DeleteForProvider(h.db.WithContext(c.Request.Context()), actor, id); err != nil {
		h.respondError(c, err, "failed to delete course")
		return
	}

	response.Success(c, http.StatusOK, nil, "Course deleted successfully", nil)
}

// MyCourses lists every course the caller provides, in any status.
func (h *Handler) MyCourses(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	params := pagination.Extract(c)
	courses, total, err := List(h.db.WithContext(c.Request.Context()), ListFilters{ProviderID: &actor.ID}, params)
	if err != nil {
		h.respondError(c, err, "failed to list courses")
		return
	}

	response.List(c, courses, len(courses), params.Meta(total))
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
