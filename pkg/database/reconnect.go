package database

import (
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/pkg/metrics"
)

// ReconnectPlugin watches statement errors and re-establishes the pool after connection loss.
type ReconnectPlugin struct {
	logger         *slog.Logger
	maxRetries     int
	retryDelay     time.Duration
	reconnectCount atomic.Int64
}

// NewReconnectPlugin creates a new reconnect plugin.
func NewReconnectPlugin(logger *slog.Logger) *ReconnectPlugin {
	return &ReconnectPlugin{
		logger:     logger,
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
	}
}

// Name returns the plugin name.
func (p *ReconnectPlugin) Name() string {
	return "reconnect_plugin"
}

// Initialize registers after-callbacks on every statement kind.
func (p *ReconnectPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		name     string
		register func(string, func(*gorm.DB)) error
	}{
		{"reconnect:after_query", cb.Query().After("gorm:query").Register},
		{"reconnect:after_create", cb.Create().After("gorm:create").Register},
		{"reconnect:after_update", cb.Update().After("gorm:update").Register},
		{"reconnect:after_delete", cb.Delete().After("gorm:delete").Register},
		{"reconnect:after_row", cb.Row().After("gorm:row").Register},
		{"reconnect:after_raw", cb.Raw().After("gorm:raw").Register},
	}
	for _, hook := range hooks {
		if err := hook.register(hook.name, p.afterStatement); err != nil {
			return err
		}
	}
	return nil
}

func (p *ReconnectPlugin) afterStatement(db *gorm.DB) {
	if !isConnectionError(db.Error) {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	p.logger.Warn("database connection lost, attempting to reconnect", slog.String("error", db.Error.Error()))
	if !p.attemptReconnect(sqlDB) {
		p.logger.Error("database reconnection failed after retries")
	}
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrConnDone) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"bad connection",
		"closed network connection",
		"server closed",
		"unexpected eof",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func (p *ReconnectPlugin) attemptReconnect(sqlDB *sql.DB) bool {
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		time.Sleep(p.retryDelay * time.Duration(attempt))

		if err := sqlDB.Ping(); err == nil {
			total := p.reconnectCount.Add(1)
			metrics.RecordDBReconnect()
			p.logger.Info("database reconnection successful",
				slog.Int("attempt", attempt),
				slog.Int64("total_reconnects", total),
			)
			return true
		}
	}
	return false
}
