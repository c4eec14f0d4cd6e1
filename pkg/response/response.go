package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"
)

// Envelope represents the standard API response shape.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Count      *int        `json:"count,omitempty"`
	Error      interface{} `json:"error,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
}

// Success writes a success response with optional message and data.
func Success(c *gin.Context, status int, data interface{}, message string, pagination interface{}) {
	c.JSON(status, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// List writes a collection response carrying the item count.
func List(c *gin.Context, data interface{}, count int, pagination interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Data:       data,
		Count:      &count,
		Pagination: pagination,
	})
}

// Created is a convenience helper for POST 201 responses.
func Created(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusCreated, data, message, nil)
}

// Error writes an error response capturing the message and optional error payload.
func Error(c *gin.Context, status int, message string, err interface{}) {
	c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Error:   err,
	})
}

// ErrorWithLog writes an error response and logs the error via slog.
// Raw error text is only exposed to clients outside release mode.
func ErrorWithLog(logger *slog.Logger, c *gin.Context, status int, message string, err error) {
	if logger != nil && err != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, message, slog.Int("status", status), slog.String("error", err.Error()))
	}

	Error(c, status, message, detail(err))
}

// AppError writes the envelope for an application error, including field errors when present.
func AppError(logger *slog.Logger, c *gin.Context, appErr *apperrors.AppError) {
	if fields := appErr.Fields(); len(fields) > 0 {
		Error(c, appErr.StatusCode(), appErr.Message(), fields)
		return
	}
	ErrorWithLog(logger, c, appErr.StatusCode(), appErr.Message(), appErr.Unwrap())
}

// ErrorWithData writes an error response that also carries a data payload.
func ErrorWithData(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Data:    data,
	})
}

func detail(err error) interface{} {
	if err == nil || gin.Mode() == gin.ReleaseMode {
		return nil
	}
	return err.Error()
}
