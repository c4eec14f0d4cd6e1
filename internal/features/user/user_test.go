package user

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/testutil"
	"github.com/mo-amir99/coursemarket-server-go/pkg/pagination"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newUser(t *testing.T, db *gorm.DB, name, email string, role types.Role) User {
	t.Helper()
	u, err := Create(db, CreateInput{FullName: name, Email: email, Password: "password123", Role: role})
	require.NoError(t, err)
	return u
}

func TestCreateNormalizesAndHashes(t *testing.T) {
	db := testutil.NewDB(t, &User{})

	u, err := Create(db, CreateInput{FullName: "  Ada Lovelace ", Email: " Ada@Example.COM ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", u.FullName)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, types.RoleCustomer, u.Role)
	assert.Equal(t, types.UserStatusActive, u.Status)
	assert.NotEqual(t, "password123", u.Password)
	assert.True(t, u.ComparePassword("password123"))
	assert.False(t, u.ComparePassword("password124"))

	found, err := GetByEmail(db, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
}

func TestCreateValidation(t *testing.T) {
	db := testutil.NewDB(t, &User{})
	newUser(t, db, "Taken", "taken@example.com", types.RoleCustomer)

	tests := []struct {
		name  string
		input CreateInput
		want  error
	}{
		{"blank name", CreateInput{FullName: " ", Email: "a@example.com", Password: "password123"}, ErrInvalidFullName},
		{"bad email", CreateInput{FullName: "A", Email: "not-an-email", Password: "password123"}, ErrInvalidEmail},
		{"short password", CreateInput{FullName: "A", Email: "a@example.com", Password: "short"}, ErrInvalidPassword},
		{"duplicate email", CreateInput{FullName: "A", Email: "TAKEN@example.com", Password: "password123"}, ErrEmailTaken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Create(db, tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdate(t *testing.T) {
	db := testutil.NewDB(t, &User{})
	u := newUser(t, db, "Grace", "grace@example.com", types.RoleCustomer)
	newUser(t, db, "Other", "other@example.com", types.RoleCustomer)

	name, avatar := "Grace Hopper", " https://cdn.example.com/g.png "
	updated, err := Update(db, u.ID, UpdateInput{FullName: &name, AvatarURL: &avatar})
	require.NoError(t, err)
	assert.Equal(t, name, updated.FullName)
	assert.Equal(t, "https://cdn.example.com/g.png", updated.AvatarURL)

	taken := "other@example.com"
	_, err = Update(db, u.ID, UpdateInput{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailInUse)

	_, err = Update(db, uuid.New(), UpdateInput{FullName: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListFilters(t *testing.T) {
	db := testutil.NewDB(t, &User{})
	newUser(t, db, "Alice Customer", "alice@example.com", types.RoleCustomer)
	newUser(t, db, "Bob Provider", "bob@example.com", types.RoleProvider)
	newUser(t, db, "Carol Provider", "carol@example.com", types.RoleProvider)

	params := pagination.New("1", "10")
	users, total, err := List(db, ListFilters{Role: types.RoleProvider}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)

	users, total, err = List(db, ListFilters{Keyword: "ALICE"}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "alice@example.com", users[0].Email)

	count, err := CountBy(db, "role", types.RoleProvider)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestRequestProvider(t *testing.T) {
	db := testutil.NewDB(t, &User{})
	customer := newUser(t, db, "Customer", "customer@example.com", types.RoleCustomer)
	provider := newUser(t, db, "Provider", "provider@example.com", types.RoleProvider)
	admin := newUser(t, db, "Admin", "admin@example.com", types.RoleAdmin)

	pending, err := RequestProvider(db, customer)
	require.NoError(t, err)
	assert.Equal(t, types.UserStatusPendingProvider, pending.Status)
	assert.Equal(t, types.RoleCustomer, pending.Role)

	_, err = RequestProvider(db, customer)
	assert.ErrorIs(t, err, ErrAlreadyPending)
	_, err = RequestProvider(db, provider)
	assert.ErrorIs(t, err, ErrAlreadyProvider)
	_, err = RequestProvider(db, admin)
	assert.ErrorIs(t, err, ErrAdminCannotRequest)
}

func TestDeactivateAccount(t *testing.T) {
	db := testutil.NewDB(t, &User{})
	customer := newUser(t, db, "Customer", "customer@example.com", types.RoleCustomer)
	admin := newUser(t, db, "Admin", "admin@example.com", types.RoleAdmin)

	token := "refresh-token"
	require.NoError(t, SetRefreshToken(db, customer.ID, &token))

	require.NoError(t, DeactivateAccount(db, customer))
	got, err := Get(db, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, types.UserStatusInactive, got.Status)
	assert.Nil(t, got.RefreshToken)

	assert.ErrorIs(t, DeactivateAccount(db, admin), ErrAdminCannotDelete)
}

func TestHandlerRoutes(t *testing.T) {
	db := testutil.NewDB(t, &User{})
	customer := newUser(t, db, "Customer", "customer@example.com", types.RoleCustomer)
	admin := newUser(t, db, "Admin", "admin@example.com", types.RoleAdmin)

	serve := func(actor *User, method, path string) *httptest.ResponseRecorder {
		router := gin.New()
		auth := func(c *gin.Context) {
			if actor != nil {
				WithContext(c, *actor)
			}
		}
		RegisterRoutes(router.Group("/api"), NewHandler(db, testutil.Logger()), auth)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	rec := serve(nil, http.MethodPost, "/api/users/request-provider")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(&customer, http.MethodPost, "/api/users/request-provider")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pending_provider")

	rec = serve(&customer, http.MethodPost, "/api/users/request-provider")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(&admin, http.MethodDelete, "/api/users/account")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(&customer, http.MethodDelete, "/api/users/account")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Account has been deactivated successfully")
}
