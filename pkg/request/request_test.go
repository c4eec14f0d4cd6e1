package request

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandlerRendersAttachedErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"app error", apperrors.Forbidden("not yours"), http.StatusForbidden},
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"bad uuid", errors.New("invalid UUID length: 3"), http.StatusBadRequest},
		{"duplicate key", gorm.ErrDuplicatedKey, http.StatusBadRequest},
		{"check constraint", gorm.ErrCheckConstraintViolated, http.StatusBadRequest},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Handler(nil))
			router.GET("/", func(c *gin.Context) { _ = c.Error(tc.err) })

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestQueryHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/?unreadOnly=true&minPrice=10.5&bad=x&courseId=nope", nil)

	flag := QueryBool(c, "unreadOnly")
	require.NotNil(t, flag)
	assert.True(t, *flag)
	assert.Nil(t, QueryBool(c, "bad"))

	price := QueryMoney(c, "minPrice")
	require.NotNil(t, price)
	assert.Equal(t, "10.5", price.String())
	assert.Nil(t, QueryMoney(c, "maxPrice"))

	_, err := QueryUUID(c, "courseId")
	assert.Error(t, err)
	id, err := QueryUUID(c, "missing")
	assert.NoError(t, err)
	assert.Nil(t, id)
}
