package notification

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/pkg/cache"
	"github.com/mo-amir99/coursemarket-server-go/pkg/metrics"
)

const unreadCountTTL = 5 * time.Minute

// Publisher pushes a freshly created notification to connected clients.
type Publisher interface {
	PublishNotification(ctx context.Context, n Notification) error
}

// Dispatcher creates notifications on behalf of business operations. Its
// failures are logged and counted, never returned.
type Dispatcher struct {
	db        *gorm.DB
	cache     cache.Client
	publisher Publisher
	logger    *slog.Logger
}

// NewDispatcher builds a Dispatcher. cache and publisher may be nil.
func NewDispatcher(db *gorm.DB, c cache.Client, publisher Publisher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{db: db, cache: c, publisher: publisher, logger: logger}
}

// Notify creates a notification and pushes it in realtime. It reports whether
// the row was stored.
func (d *Dispatcher) Notify(ctx context.Context, input CreateInput) bool {
	n, err := Create(d.db.WithContext(ctx), input)
	if err != nil {
		metrics.RecordNotification(string(input.Type), "dropped")
		d.logger.Error("notification dropped",
			slog.String("type", string(input.Type)),
			slog.String("user_id", input.UserID.String()),
			slog.String("error", err.Error()),
		)
		return false
	}
	metrics.RecordNotification(string(input.Type), "created")

	d.Invalidate(ctx, input.UserID)

	if d.publisher != nil {
		if err := d.publisher.PublishNotification(ctx, n); err != nil {
			d.logger.Warn("notification push failed",
				slog.String("notification_id", n.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}
	return true
}

// UnreadCount returns the unread count, served from cache when possible.
func (d *Dispatcher) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	key := unreadKey(userID)
	if d.cache != nil {
		raw, err := d.cache.Get(ctx, key)
		if err == nil {
			if count, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil {
				return count, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			d.logger.Warn("unread count cache read failed", slog.String("error", err.Error()))
		}
	}

	count, err := CountUnread(d.db.WithContext(ctx), userID)
	if err != nil {
		return 0, err
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, key, strconv.FormatInt(count, 10), unreadCountTTL); err != nil {
			d.logger.Warn("unread count cache write failed", slog.String("error", err.Error()))
		}
	}
	return count, nil
}

// Invalidate drops the cached unread count for userID.
func (d *Dispatcher) Invalidate(ctx context.Context, userID uuid.UUID) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Delete(ctx, unreadKey(userID)); err != nil {
		d.logger.Warn("unread count cache invalidation failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func unreadKey(userID uuid.UUID) string {
	return "notifications:unread:" + userID.String()
}
