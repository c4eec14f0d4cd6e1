package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/internal/testutil"
	"github.com/mo-amir99/coursemarket-server-go/internal/utils/jwt"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authFixture struct {
	db       *gorm.DB
	issuer   *jwt.Issuer
	auth     *Authenticator
	customer user.User
	provider user.User
	inactive user.User
}

func setupAuth(t *testing.T) authFixture {
	t.Helper()
	db := testutil.NewDB(t, &user.User{})
	issuer := jwt.NewIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	seed := func(email string, role types.Role, status types.UserStatus) user.User {
		u := user.User{FullName: email, Email: email, Password: "x", Role: role, Status: status}
		require.NoError(t, db.Create(&u).Error)
		return u
	}

	return authFixture{
		db:       db,
		issuer:   issuer,
		auth:     NewAuthenticator(db, issuer, testutil.Logger()),
		customer: seed("customer@example.com", types.RoleCustomer, types.UserStatusActive),
		provider: seed("provider@example.com", types.RoleProvider, types.UserStatusActive),
		inactive: seed("gone@example.com", types.RoleCustomer, types.UserStatusInactive),
	}
}

func (f authFixture) bearer(t *testing.T, id uuid.UUID) string {
	t.Helper()
	pair, err := f.issuer.Pair(id)
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

func echoUser(c *gin.Context) {
	usr, ok := CurrentUser(c)
	if !ok {
		c.String(http.StatusOK, "anonymous")
		return
	}
	c.String(http.StatusOK, usr.Email)
}

func do(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	f := setupAuth(t)
	router := gin.New()
	router.GET("/", f.auth.Authenticate(), echoUser)

	expiredIssuer := jwt.NewIssuer("access-secret", "refresh-secret", -time.Minute, time.Hour)
	expired, err := expiredIssuer.Pair(f.customer.ID)
	require.NoError(t, err)
	refreshOnly, err := f.issuer.Pair(f.customer.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", f.bearer(t, f.customer.ID), http.StatusOK, "customer@example.com"},
		{"missing header", "", http.StatusUnauthorized, "no token provided"},
		{"wrong scheme", "Token abc", http.StatusUnauthorized, "no token provided"},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized, "token failed"},
		{"expired token", "Bearer " + expired.AccessToken, http.StatusUnauthorized, "Token expired"},
		{"refresh token", "Bearer " + refreshOnly.RefreshToken, http.StatusUnauthorized, "token failed"},
		{"unknown user", f.bearer(t, uuid.New()), http.StatusUnauthorized, "User not found"},
		{"inactive user", f.bearer(t, f.inactive.ID), http.StatusForbidden, "Account is inactive"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(router, tc.header)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	f := setupAuth(t)
	router := gin.New()
	router.GET("/", f.auth.OptionalAuth(), echoUser)

	assert.Equal(t, "anonymous", do(router, "").Body.String())
	assert.Equal(t, "anonymous", do(router, "Bearer broken").Body.String())
	assert.Equal(t, "anonymous", do(router, f.bearer(t, f.inactive.ID)).Body.String())
	assert.Equal(t, "provider@example.com", do(router, f.bearer(t, f.provider.ID)).Body.String())
}

func TestRequireRoles(t *testing.T) {
	f := setupAuth(t)
	router := gin.New()
	router.GET("/", append(f.auth.RequireRoles(types.RoleProvider, types.RoleAdmin), echoUser)...)

	rec := do(router, f.bearer(t, f.provider.ID))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, f.bearer(t, f.customer.ID))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "User role 'customer' is not authorized")

	rec = do(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorizeWithoutUser(t *testing.T) {
	f := setupAuth(t)
	router := gin.New()
	router.GET("/", f.auth.Authorize(types.RoleAdmin), echoUser)

	rec := do(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}
