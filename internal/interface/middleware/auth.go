package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/satriajagad/portfolio-backend/pkg/helpers"
	"github.com/satriajagad/portfolio-backend/pkg/response"
)

const CtxAccountIDKey = "accountID"

// Auth reads the session cookie and validates it statelessly: signature
// plus expiry, nothing server-side. Missing, malformed and expired tokens
// all produce the same 401.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := helpers.SessionToken(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid or expired session", nil)
			return
		}
		c.Set(CtxAccountIDKey, claims.AccountID)
		c.Next()
	}
}
