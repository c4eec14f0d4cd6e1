package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/internal/utils/jwt"
	"github.com/mo-amir99/coursemarket-server-go/pkg/response"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

// Authenticator resolves bearer tokens into users and gates routes by role.
type Authenticator struct {
	db     *gorm.DB
	tokens *jwt.Issuer
	logger *slog.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(db *gorm.DB, tokens *jwt.Issuer, logger *slog.Logger) *Authenticator {
	return &Authenticator{db: db, tokens: tokens, logger: logger}
}

// Authenticate requires a valid access token for an existing, non-inactive user.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := user.FromContext(c); ok {
			c.Next()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.ErrorWithLog(a.logger, c, http.StatusUnauthorized, "Not authorized, no token provided", nil)
			c.Abort()
			return
		}

		usr, status, message, err := a.resolve(c, token)
		if err != nil {
			response.ErrorWithLog(a.logger, c, status, message, err)
			c.Abort()
			return
		}

		user.WithContext(c, usr)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and otherwise
// lets the request through anonymously.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c.GetHeader("Authorization")); token != "" {
			if usr, _, _, err := a.resolve(c, token); err == nil {
				user.WithContext(c, usr)
			}
		}
		c.Next()
	}
}

// Authorize allows only the listed roles. It expects Authenticate to have run.
func (a *Authenticator) Authorize(roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		usr, ok := user.FromContext(c)
		if !ok {
			response.ErrorWithLog(a.logger, c, http.StatusUnauthorized, "Not authorized, user not found", nil)
			c.Abort()
			return
		}

		for _, role := range roles {
			if usr.Role == role {
				c.Next()
				return
			}
		}

		response.ErrorWithLog(a.logger, c, http.StatusForbidden,
			"User role '"+string(usr.Role)+"' is not authorized to access this route", nil)
		c.Abort()
	}
}

// RequireRoles chains Authenticate and Authorize.
func (a *Authenticator) RequireRoles(roles ...types.Role) []gin.HandlerFunc {
	return []gin.HandlerFunc{a.Authenticate(), a.Authorize(roles...)}
}

// CurrentUser returns the authenticated user from the gin context.
func CurrentUser(c *gin.Context) (user.User, bool) {
	return user.FromContext(c)
}

func (a *Authenticator) resolve(c *gin.Context, token string) (user.User, int, string, error) {
	claims, err := a.tokens.VerifyAccess(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return user.User{}, http.StatusUnauthorized, "Token expired", err
		}
		return user.User{}, http.StatusUnauthorized, "Not authorized, token failed", err
	}

	usr, err := user.Get(a.db.WithContext(c.Request.Context()), claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, http.StatusUnauthorized, "User not found", err
		}
		return user.User{}, http.StatusInternalServerError, "Internal Server Error", err
	}

	if usr.Status == types.UserStatusInactive {
		return user.User{}, http.StatusForbidden, "Account is inactive. Please contact support.", errors.New("inactive account")
	}

	return usr, 0, "", nil
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
