package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/service"
)

func newAuth(t *testing.T) (*service.AuthService, func(models.OperatorRole) string) {
	t.Helper()
	auth := service.NewAuthService(nil, nil, service.AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "gym"})
	issue := func(role models.OperatorRole) string {
		token, err := auth.IssueToken(service.IssueTokenRequest{Name: "Operator", Role: role})
		require.NoError(t, err)
		return "Bearer " + token.Token
	}
	return auth, issue
}

func newRouter(auth *service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/open", OptionalJWT(auth), func(c *gin.Context) {
		name := "anonymous"
		if op := OperatorFromContext(c); op != nil {
			name = string(op.Role)
		}
		c.String(http.StatusOK, name)
	})
	r.DELETE("/admin", JWT(auth), RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func serve(r http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAndRoles(t *testing.T) {
	auth, issue := newAuth(t)
	r := newRouter(auth)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodDelete, "/admin", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodDelete, "/admin", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodDelete, "/admin", "Bearer not-a-jwt").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodDelete, "/admin", issue(models.RoleReception)).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodDelete, "/admin", issue(models.RoleAdmin)).Code)
}

func TestOptionalJWT(t *testing.T) {
	auth, issue := newAuth(t)
	r := newRouter(auth)

	w := serve(r, http.MethodGet, "/open", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	w = serve(r, http.MethodGet, "/open", issue(models.RoleCoach))
	assert.Equal(t, "COACH", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/open", "Bearer garbage").Code)
}
