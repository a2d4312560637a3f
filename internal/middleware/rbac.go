package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
	"github.com/AmrAnter44/sys-body-sub000/pkg/response"
)

// RequireRoles lets the request through only for operators holding one of roles.
// It must run after JWT.
func RequireRoles(roles ...models.OperatorRole) gin.HandlerFunc {
	allowed := make(map[models.OperatorRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := OperatorFromContext(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role "+string(claims.Role)+" may not perform this action"))
			c.Abort()
			return
		}
		c.Next()
	}
}
