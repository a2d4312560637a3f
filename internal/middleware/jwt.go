package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
	"github.com/AmrAnter44/sys-body-sub000/pkg/response"
)

// ContextOperatorKey is the gin context key storing the operator's JWT claims.
const ContextOperatorKey = "currentOperator"

// TokenValidator verifies a bearer token.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid operator token.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing or malformed authorization header"))
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextOperatorKey, claims)
		c.Next()
	}
}

// OptionalJWT attaches claims when a valid token is sent. The self check-in kiosk
// calls without one; a present but invalid token is still refused.
func OptionalJWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "malformed authorization header"))
			c.Abort()
			return
		}
		claims, err := validator.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextOperatorKey, claims)
		c.Next()
	}
}

// OperatorFromContext returns the authenticated operator, or nil on anonymous requests.
func OperatorFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextOperatorKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
