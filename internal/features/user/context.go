package user

import "github.com/gin-gonic/gin"

const contextKey = "user"

// WithContext stores the authenticated user on the gin context.
func WithContext(c *gin.Context, u User) {
	c.Set(contextKey, u)
	c.Set("userId", u.ID)
}

// FromContext returns the authenticated user, if any.
func FromContext(c *gin.Context) (User, bool) {
	value, ok := c.Get(contextKey)
	if !ok {
		return User{}, false
	}
	u, ok := value.(User)
	return u, ok
}
