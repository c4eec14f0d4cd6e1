package request

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursemarket-server-go/pkg/database"
	"github.com/mo-amir99/coursemarket-server-go/pkg/response"
)

// Handler returns a middleware that renders errors attached with c.Error into the standard envelope.
func Handler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := errors.Join(errorsFromContext(c.Errors)...)
		if err == nil {
			return
		}

		if appErr, ok := apperrors.As(err); ok {
			response.AppError(logger, c, appErr)
			return
		}

		status, message := classify(err)
		response.ErrorWithLog(logger, c, status, message, err)
	}
}

func errorsFromContext(errs []*gin.Error) []error {
	list := make([]error, 0, len(errs))
	for _, item := range errs {
		if item != nil && item.Err != nil {
			list = append(list, item.Err)
		}
	}
	return list
}

// classify maps storage and parsing failures that escaped a feature's own
// sentinels onto the error taxonomy.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "Resource not found"
	case database.IsUniqueViolation(err):
		return http.StatusBadRequest, "Duplicate value violates a uniqueness rule"
	case database.IsCheckViolation(err):
		return http.StatusBadRequest, "Value violates a data constraint"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out"
	}

	msg := err.Error()
	if strings.Contains(msg, "invalid input syntax for type uuid") || strings.Contains(msg, "invalid UUID") {
		return http.StatusBadRequest, "Invalid ID format"
	}

	return http.StatusInternalServerError, "Internal server error"
}
