package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/internal/middleware"
	"github.com/mo-amir99/coursemarket-server-go/internal/testutil"
	"github.com/mo-amir99/coursemarket-server-go/internal/utils/jwt"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type capturedMail struct {
	to   string
	code string
}

type fakeMailer struct {
	sent []capturedMail
}

func (m *fakeMailer) SendPasswordResetOTP(_ context.Context, to, otp string, _ time.Duration) error {
	m.sent = append(m.sent, capturedMail{to: to, code: otp})
	return nil
}

func setup(t *testing.T) (*Service, *fakeMailer, *gorm.DB, *jwt.Issuer) {
	t.Helper()
	db := testutil.NewDB(t, &user.User{}, &PasswordResetOTP{})
	issuer := jwt.NewIssuer("access", "refresh", time.Hour, 24*time.Hour)
	mailer := &fakeMailer{}
	return NewService(db, issuer, mailer, 5*time.Minute, 15*time.Minute, testutil.Logger()), mailer, db, issuer
}

func TestRegisterLoginAndRefresh(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Ada Lovelace", "Ada@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", registered.User.Email)
	assert.Equal(t, types.RoleCustomer, registered.User.Role)
	assert.NotEmpty(t, registered.AccessToken)

	_, err = svc.Register(ctx, "Ada Again", "ada@example.com", "password123")
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	_, err = svc.Register(ctx, "Short", "short@example.com", "short")
	assert.ErrorIs(t, err, user.ErrInvalidPassword)

	_, err = svc.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := svc.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	_, err = svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	require.NoError(t, svc.Logout(ctx, rotated.User))
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLoginRefusesInactiveAccounts(t *testing.T) {
	svc, _, db, _ := setup(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Grace", "grace@example.com", "password123")
	require.NoError(t, err)

	inactive := types.UserStatusInactive
	_, err = user.Update(db, registered.User.ID, user.UpdateInput{Status: &inactive})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "grace@example.com", "password123")
	assert.ErrorIs(t, err, ErrInactiveAccount)
}

func TestPasswordResetWithOTP(t *testing.T) {
	svc, mailer, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Linus", "linus@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "nobody@example.com"))
	assert.Empty(t, mailer.sent)

	require.NoError(t, svc.ForgotPassword(ctx, "Linus@example.com"))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "linus@example.com", mailer.sent[0].to)
	assert.Len(t, mailer.sent[0].code, 6)

	wrong := "000000"
	if mailer.sent[0].code == wrong {
		wrong = "111111"
	}
	_, err = svc.VerifyOTP(ctx, "linus@example.com", wrong)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	token, err := svc.VerifyOTP(ctx, "linus@example.com", mailer.sent[0].code)
	require.NoError(t, err)

	_, err = svc.VerifyOTP(ctx, "linus@example.com", mailer.sent[0].code)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	assert.ErrorIs(t, svc.ResetPassword(ctx, "not-a-token", "newpassword1"), ErrInvalidResetToken)
	require.NoError(t, svc.ResetPassword(ctx, token, "newpassword1"))

	_, err = svc.Login(ctx, "linus@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "linus@example.com", "newpassword1")
	require.NoError(t, err)
}

func TestOTPExpiresAndLocksAfterAttempts(t *testing.T) {
	svc, mailer, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ken", "ken@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "ken@example.com"))
	code := mailer.sent[0].code

	svc.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	_, err = svc.VerifyOTP(ctx, "ken@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidOTP)
	svc.now = time.Now

	require.NoError(t, svc.ForgotPassword(ctx, "ken@example.com"))
	code = mailer.sent[1].code
	wrong := "999999"
	if code == wrong {
		wrong = "888888"
	}
	for i := 0; i < maxOTPAttempts; i++ {
		_, err = svc.VerifyOTP(ctx, "ken@example.com", wrong)
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}

	_, err = svc.VerifyOTP(ctx, "ken@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestPurposeTokenCannotAuthenticate(t *testing.T) {
	svc, mailer, _, issuer := setup(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Barbara", "barbara@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, "barbara@example.com"))

	token, err := svc.VerifyOTP(ctx, "barbara@example.com", mailer.sent[0].code)
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(token)
	assert.ErrorIs(t, err, jwt.ErrWrongPurpose)
}

func TestHandlerSessionFlow(t *testing.T) {
	svc, _, db, issuer := setup(t)

	authn := middleware.NewAuthenticator(db, issuer, testutil.Logger())
	router := gin.New()
	noLimit := func(c *gin.Context) { c.Next() }
	RegisterRoutes(router.Group("/api"), NewHandler(svc, testutil.Logger()), authn.Authenticate(), noLimit)

	do := func(method, path, body, token string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/auth/register", `{"fullName":"Edsger","email":"edsger@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var registered struct {
		Data struct {
			AccessToken string    `json:"accessToken"`
			User        user.User `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.NotContains(t, rec.Body.String(), "password\":\"$2")

	rec = do(http.MethodPost, "/api/auth/register", `{"fullName":"","email":"x@example.com","password":"password123"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please provide all required fields")

	rec = do(http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(http.MethodGet, "/api/auth/me", "", registered.Data.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "edsger@example.com")

	rec = do(http.MethodPut, "/api/auth/profile", `{"fullName":"Edsger Dijkstra","email":""}`, registered.Data.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Edsger Dijkstra")
	assert.Contains(t, rec.Body.String(), "edsger@example.com")

	rec = do(http.MethodPost, "/api/auth/login", `{"email":"edsger@example.com","password":"nope-nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")

	rec = do(http.MethodPost, "/api/auth/forgot-password", `{"email":"ghost@example.com"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
