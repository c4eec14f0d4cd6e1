package review

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursemarket-server-go/pkg/request"
	"github.com/mo-amir99/coursemarket-server-go/pkg/response"
)

// Handler processes review HTTP requests.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a review handler instance.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// ListByCourse returns the public reviews of a course.
func (h *Handler) ListByCourse(c *gin.Context) {
	courseID, err := request.UUIDParam(c, "courseId")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	reviews, err := h.service.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		h.respondError(c, err, "failed to list reviews")
		return
	}

	response.List(c, reviews, len(reviews), nil)
}

// MyReview returns the caller's review of a course, or null.
func (h *Handler) MyReview(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	courseID, err := request.UUIDParam(c, "courseId")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	r, err := h.service.MyReview(c.Request.Context(), actor, courseID)
	if err != nil {
		h.respondError(c, err, "failed to load review")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": r})
}

type createRequest struct {
	CourseID uuid.UUID `json:"courseId"`
	Rating   int       `json:"rating"`
	Comment  string    `json:"comment"`
}

// Create posts a review for a course the caller is enrolled in.
func (h *Handler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Please provide course ID, rating, and comment", err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), actor, CreateInput{
		CourseID: req.CourseID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		h.respondError(c, err, "failed to create review")
		return
	}

	response.Created(c, created, "Review created successfully")
}

type updateRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// Update edits the caller's review.
func (h *Handler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid review id", err)
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid review payload", err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), actor, id, UpdateInput{Rating: req.Rating, Comment: req.Comment})
	if err != nil {
		h.respondError(c, err, "failed to update review")
		return
	}

	response.Success(c, http.StatusOK, updated, "Review updated successfully", nil)
}

// Delete removes a review; admins may remove any review.
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid review id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		h.respondError(c, err, "failed to delete review")
		return
	}

	response.Success(c, http.StatusOK, nil, "Review deleted successfully", nil)
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
