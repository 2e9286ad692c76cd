package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"bcmoney-backend/internal/common/middleware"
	"bcmoney-backend/internal/features/auth/service"
)

const (
	ctxKeyUserID    = "auth_uid"
	ctxKeyUserEmail = "auth_email"
	ctxKeyToken     = "auth_token"
)

// RequireUser validates the bearer session and stores the caller's
// identity on the request context. Without a valid session every
// downstream reference is absent, so the request stops here.
func RequireUser(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		session, err := auth.ValidateSession(c.Request.Context(), token)
		if err != nil {
			middleware.Abort(c, err)
			return
		}

		c.Set(ctxKeyUserID, session.UID)
		c.Set(ctxKeyUserEmail, session.Email)
		c.Set(ctxKeyToken, token)
		c.Next()
	}
}

// UserID returns the authenticated uid; empty when RequireUser did not run.
func UserID(c *gin.Context) string {
	return c.GetString(ctxKeyUserID)
}

// UserEmail returns the authenticated email address.
func UserEmail(c *gin.Context) string {
	return c.GetString(ctxKeyUserEmail)
}

// Token returns the raw bearer token for the current request.
func Token(c *gin.Context) string {
	return c.GetString(ctxKeyToken)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
