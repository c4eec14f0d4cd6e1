package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCarryStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		code   ErrorCode
	}{
		{"validation", Validation("bad"), http.StatusBadRequest, ErrValidation},
		{"conflict", Conflict("dup"), http.StatusBadRequest, ErrConflict},
		{"domain", DomainRule("nope"), http.StatusBadRequest, ErrDomainRule},
		{"not found", NotFound("gone"), http.StatusNotFound, ErrNotFound},
		{"unauthorized", Unauthorized("who"), http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("no"), http.StatusForbidden, ErrForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.err.StatusCode())
			assert.Equal(t, tc.code, tc.err.Code())
		})
	}
}

func TestWrapKeepsExistingAppError(t *testing.T) {
	sentinel := Conflict("already there")
	wrapped := fmt.Errorf("create: %w", sentinel)

	got := Wrap(wrapped, "ignored", http.StatusInternalServerError, ErrInternal)
	assert.Same(t, sentinel, got)
	assert.True(t, Is(wrapped, ErrConflict))
	assert.True(t, errors.Is(wrapped, sentinel))

	plain := Wrap(errors.New("boom"), "failed", http.StatusInternalServerError, ErrInternal)
	assert.Equal(t, "failed: boom", plain.Error())
	assert.Nil(t, Wrap(nil, "x", 500, ErrInternal))
}

func TestWithFieldsCopies(t *testing.T) {
	base := Validation("invalid")
	withFields := base.WithFields(map[string]string{"code": "required"})

	assert.Nil(t, base.Fields())
	assert.Equal(t, "required", withFields.Fields()["code"])
}
