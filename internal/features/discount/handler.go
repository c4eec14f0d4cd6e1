package discount

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursemarket-server-go/pkg/database"
	"github.com/mo-amir99/coursemarket-server-go/pkg/request"
	"github.com/mo-amir99/coursemarket-server-go/pkg/response"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

// Handler processes discount HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a discount handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

type validateRequest struct {
	Code     string    `json:"code" binding:"required"`
	CourseID uuid.UUID `json:"courseId" binding:"required"`
}

// Validate previews a discount code against a course without consuming it.
func (h *Handler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Please provide discount code and course ID", err)
		return
	}

	quote, err := Preview(h.db.WithContext(c.Request.Context()), req.Code, req.CourseID, time.Now())
	if err != nil {
		if appErr, ok := apperrors.As(err); ok && appErr.StatusCode() == http.StatusNotFound {
			response.ErrorWithData(c, http.StatusNotFound, appErr.Message(), gin.H{"valid": false})
			return
		}
		h.respondError(c, err, "failed to validate discount")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"valid": true, "discount": quote}, "Discount code is valid", nil)
}

// List returns the caller's discounts, optionally narrowed by course and active flag.
func (h *Handler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	courseID, err := request.QueryUUID(c, "courseId")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	discounts, err := List(h.db.WithContext(c.Request.Context()), ListFilters{
		ProviderID: actor.ID,
		CourseID:   courseID,
		Active:     request.QueryBool(c, "active"),
	})
	if err != nil {
		h.respondError(c, err, "failed to list discounts")
		return
	}

	response.List(c, discounts, len(discounts), nil)
}

// GetByID returns one of the caller's discounts.
func (h *Handler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid discount id", err)
		return
	}

	d, err := GetOwned(h.db.WithContext(c.Request.Context()), actor, id)
	if err != nil {
		h.respondError(c, err, "failed to load discount")
		return
	}

	response.Success(c, http.StatusOK, d, "", nil)
}

// Create adds a discount to one of the caller's courses.
func (h *Handler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var input CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid discount payload", err)
		return
	}

	created, err := CreateForProvider(h.db.WithContext(c.Request.Context()), actor, input)
	if err != nil {
		h.respondError(c, err, "failed to create discount")
		return
	}

	response.Created(c, created, "Discount created successfully")
}

// optionalInt tells an explicit JSON null apart from an absent field.
type optionalInt struct {
	Set   bool
	Value *int
}

func (o *optionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

type updateRequest struct {
	Type        *types.DiscountType `json:"type"`
	Value       *types.Money        `json:"value"`
	MaxUses     optionalInt         `json:"maxUses"`
	StartDate   *time.Time          `json:"startDate"`
	EndDate     *time.Time          `json:"endDate"`
	Description *string             `json:"description"`
	Active      *bool               `json:"active"`
}

// Update edits the terms of one of the caller's discounts.
func (h *Handler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid discount id", err)
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid discount payload", err)
		return
	}

	updated, err := UpdateOwned(h.db.WithContext(c.Request.Context()), actor, id, UpdateInput{
		Type:         req.Type,
		Value:        req.Value,
		MaxUses:      req.MaxUses.Value,
		ClearMaxUses: req.MaxUses.Set && req.MaxUses.Value == nil,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Description:  req.Description,
		Active:       req.Active,
	})
	if err != nil {
		h.respondError(c, err, "failed to update discount")
		return
	}

	response.Success(c, http.StatusOK, updated, "Discount updated successfully", nil)
}

// Delete removes one of the caller's discounts.
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid discount id", err)
		return
	}

	if err := DeleteOwned(h.db.WithContext(c.Request.Context()), actor, id); err != nil {
		h.respondError(c, err, "failed to delete discount")
		return
	}

	response.Success(c, http.StatusOK, nil, "Discount deleted successfully", nil)
}

// Toggle flips the active flag of one of the caller's discounts.
func (h *Handler) Toggle(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid discount id", err)
		return
	}

	toggled, err := ToggleOwned(h.db.WithContext(c.Request.Context()), actor, id)
	if err != nil {
		h.respondError(c, err, "failed to toggle discount")
		return
	}

	message := "Discount deactivated"
	if toggled.Active {
		message = "Discount activated"
	}
	response.Success(c, http.StatusOK, toggled, message, nil)
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
	if database.IsCheckViolation(err) {
		response.ErrorWithLog(h.logger, c, ErrConstraint.StatusCode(), ErrConstraint.Message(), err)
		return
	}
	response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, fallback, err)
}
