package middleware

import (
	"net/http"
	"strings"

	"derma-detect/backend/model"
	"derma-detect/backend/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// UserAuth gates authenticated routes. It accepts either an authenticated
// session or an Authorization: Bearer token, resolves the subject to an
// enabled account (password hash excluded) and stores it in the context.
// Every failure path aborts with exactly one 401 response.
func UserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := sessionUserID(c); ok {
			user, err := model.GetUserById(id)
			if err != nil || user.Status != model.UserStatusEnabled {
				abortUnauthorized(c, "Not authorized, token failed")
				return
			}
			setAuthContext(c, user, false)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Not authorized, no token")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Authorization header format must be Bearer {token}")
			return
		}
		tokenString := parts[1]

		claims, err := service.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, "Not authorized, token failed")
			return
		}
		if service.IsTokenBlacklisted(c, tokenString) {
			abortUnauthorized(c, "Token has been invalidated")
			return
		}
		user, err := model.GetUserById(claims.UserID)
		if err != nil || user.Status != model.UserStatusEnabled {
			abortUnauthorized(c, "Not authorized, token failed")
			return
		}

		setAuthContext(c, user, true)
		c.Set("token", tokenString)
		c.Next()
	}
}

// sessionUserID reads the session account id, tolerating routers registered
// without the session middleware (tests).
func sessionUserID(c *gin.Context) (int64, bool) {
	if _, exists := c.Get(sessions.DefaultKey); !exists {
		return 0, false
	}
	session := sessions.Default(c)
	id, ok := session.Get("id").(int64)
	return id, ok && id != 0
}

func setAuthContext(c *gin.Context, user *model.User, byToken bool) {
	// The password hash never reaches handlers.
	user.Password = ""
	c.Set("user_id", user.ID)
	c.Set("email", user.Email)
	c.Set("role", user.Role)
	c.Set("user", user)
	c.Set("authByToken", byToken)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": msg,
	})
	c.Abort()
}
