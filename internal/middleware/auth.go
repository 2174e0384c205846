package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"clipstream/api/internal/models"
	"clipstream/api/internal/service"
)

const (
	// CurrentUserKey holds the authenticated models.User in the gin context.
	CurrentUserKey = "current_user"

	// AccessCookie carries the short-lived token for browser clients; a
	// bearer header works too.
	AccessCookie  = "access_token"
	SessionCookie = "session_token"
)

// Auth requires a valid access token and aborts with 401 otherwise.
func Auth(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := tokens.Authenticate(c.Request.Context(), extractAccessToken(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// AuthOptional attaches the user when a valid token is present and proceeds
// anonymously on any failure. Routes that personalize public output for
// signed-in callers hang off this.
func AuthOptional(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := tokens.Authenticate(c.Request.Context(), extractAccessToken(c)); err == nil {
			c.Set(CurrentUserKey, user)
		}
		c.Next()
	}
}

func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if _, ok := roleSet[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// CurrentUser reads the authenticated user set by Auth or AuthOptional.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(CurrentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}

func extractAccessToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(AccessCookie); err == nil {
		return cookie
	}
	return ""
}
