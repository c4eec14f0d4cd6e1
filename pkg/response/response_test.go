package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestListIncludesCount(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	List(c, []string{"a", "b"}, 2, nil)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["count"])
	assert.NotContains(t, body, "pagination")
}

func TestAppErrorWritesFields(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	AppError(nil, c, apperrors.Validation("Validation failed").WithFields(map[string]string{"value": "max"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Validation failed", body["message"])
	assert.Equal(t, map[string]any{"value": "max"}, body["error"])
}

func TestErrorDetailHiddenInRelease(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	ErrorWithLog(nil, c, http.StatusInternalServerError, "Internal server error", errors.New("pq: relation missing"))

	body := decode(t, rec)
	assert.NotContains(t, body, "error")
}
