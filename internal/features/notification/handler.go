package notification

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
)

// Handler serves the caller's notification inbox.
type Handler struct {
	db         *gorm.DB
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewHandler constructs a notification handler.
func NewHandler(db *gorm.DB, dispatcher *Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{db: db, dispatcher: dispatcher, logger: logger}
}

type listResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unreadCount"`
}

// List returns the caller's notifications with the current unread count.
func (h *Handler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	params := pagination.Extract(c)
	unreadOnly := false
	if flag := request.QueryBool(c, "unreadOnly"); flag != nil {
		unreadOnly = *flag
	}

	items, total, err := List(h.db.WithContext(c.Request.Context()), actor.ID, unreadOnly, params)
	if err != nil {
		h.respondError(c, err, "failed to list notifications")
		return
	}

	unread, err := h.dispatcher.UnreadCount(c.Request.Context(), actor.ID)
	if err != nil {
		h.respondError(c, err, "failed to count notifications")
		return
	}

	response.Success(c, http.StatusOK, listResponse{Notifications: items, UnreadCount: unread}, "", params.Meta(total))
}

// UnreadCount returns only the unread count.
func (h *Handler) UnreadCount(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	count, err := h.dispatcher.UnreadCount(c.Request.Context(), actor.ID)
	if err != nil {
		h.respondError(c, err, "failed to count notifications")
		return
	}

	response.SuccessNoCache(c, gin.H{"count": count})
}

// MarkRead marks one notification as read.
func (h *Handler) MarkRead(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid notification id", err)
		return
	}

	n, err := MarkRead(h.db.WithContext(c.Request.Context()), id, actor.ID)
	if err != nil {
		h.respondError(c, err, "failed to update notification")
		return
	}
	h.dispatcher.Invalidate(c.Request.Context(), actor.ID)

	response.Success(c, http.StatusOK, n, "Notification marked as read", nil)
}

// MarkAllRead marks the caller's whole inbox as read.
func (h *Handler) MarkAllRead(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	updated, err := MarkAllRead(h.db.WithContext(c.Request.Context()), actor.ID)
	if err != nil {
		h.respondError(c, err, "failed to update notifications")
		return
	}
	h.dispatcher.Invalidate(c.Request.Context(), actor.ID)

	response.Success(c, http.StatusOK, gin.H{"updatedCount": updated}, "All notifications marked as read", nil)
}

// Delete removes one notification.
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid notification id", err)
		return
	}

	if err := Delete(h.db.WithContext(c.Request.Context()), id, actor.ID); err != nil {
		h.respondError(c, err, "failed to delete notification")
		return
	}
	h.dispatcher.Invalidate(c.Request.Context(), actor.ID)

	response.Success(c, http.StatusOK, nil, "Notification deleted", nil)
}

// ClearRead deletes every read notification of the caller.
func (h *Handler) ClearRead(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	deleted, err := ClearRead(h.db.WithContext(c.Request.Context()), actor.ID)
	if err != nil {
		h.respondError(c, err, "failed to clear notifications")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deletedCount": deleted}, "Read notifications cleared", nil)
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
