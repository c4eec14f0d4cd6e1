package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is where New writes its log files.
const DefaultDir = "logs"

// New creates a structured logger writing text to stdout, JSON to logs/info.log,
// and errors additionally to logs/error.log.
func New(level string) (*slog.Logger, error) {
	return NewInDir(level, DefaultDir)
}

// NewInDir is New with a custom log directory.
func NewInDir(level, dir string) (*slog.Logger, error) {
	handlerLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	errorFile, err := os.OpenFile(filepath.Join(dir, "error.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	infoFile, err := os.OpenFile(filepath.Join(dir, "info.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		_ = errorFile.Close()
		return nil, err
	}

	handler := NewMultiLevelHandler(
		handlerLevel,
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: handlerLevel}),
		slog.NewJSONHandler(infoFile, &slog.HandlerOptions{Level: handlerLevel}),
		slog.NewJSONHandler(errorFile, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	return slog.New(handler), nil
}

// Discard returns a logger that drops everything. Used by tests and scripts.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MultiLevelHandler fans records out to console and file handlers.
type MultiLevelHandler struct {
	console   slog.Handler
	infoFile  slog.Handler
	errorFile slog.Handler
	level     slog.Leveler
}

func NewMultiLevelHandler(level slog.Leveler, console, infoFile, errorFile slog.Handler) *MultiLevelHandler {
	return &MultiLevelHandler{
		console:   console,
		infoFile:  infoFile,
		errorFile: errorFile,
		level:     level,
	}
}

func (h *MultiLevelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *MultiLevelHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	if err := h.console.Handle(ctx, r); err != nil {
		errs = append(errs, err)
	}
	if err := h.infoFile.Handle(ctx, r); err != nil {
		errs = append(errs, err)
	}
	if r.Level >= slog.LevelError {
		if err := h.errorFile.Handle(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *MultiLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MultiLevelHandler{
		console:   h.console.WithAttrs(attrs),
		infoFile:  h.infoFile.WithAttrs(attrs),
		errorFile: h.errorFile.WithAttrs(attrs),
		level:     h.level,
	}
}

func (h *MultiLevelHandler) WithGroup(name string) slog.Handler {
	return &MultiLevelHandler{
		console:   h.console.WithGroup(name),
		infoFile:  h.infoFile.WithGroup(name),
		errorFile: h.errorFile.WithGroup(name),
		level:     h.level,
	}
}

func parseLevel(level string) (slog.Leveler, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return nil, errors.New("invalid log level")
	}
}
