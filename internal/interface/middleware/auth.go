package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-management-api/pkg/helpers"
	"github.com/oksasatya/user-management-api/pkg/response"
)

const (
	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
)

// Auth validates the bearer token from the Authorization header and injects
// the caller's user id and email into the Gin context. Any correctly signed,
// unexpired token is accepted; there is no session store or revocation list.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.AbortError(c, http.StatusUnauthorized, "authorization header is required")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.AbortError(c, http.StatusUnauthorized, "invalid authorization header format")
			return
		}
		claims, err := jwt.Parse(parts[1])
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		uid, err := claims.UserID()
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c.Set(CtxUserIDKey, uid)
		c.Set(CtxUserEmailKey, claims.Email)
		c.Next()
	}
}

// CallerID returns the authenticated user id placed into the context by Auth.
func CallerID(c *gin.Context) int64 {
	id, _ := c.Get(CtxUserIDKey)
	v, _ := id.(int64)
	return v
}
