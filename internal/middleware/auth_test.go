package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tickbug-backend/internal/auth"
	"tickbug-backend/internal/middleware"
)

const secret = "test-secret-key-for-jwt-signing-must-be-long-enough"

func newRouter(t *testing.T, tokens *auth.Issuer, check func(c *gin.Context)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.AuthMiddleware(tokens))
	router.GET("/test", func(c *gin.Context) {
		if check != nil {
			check(c)
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func do(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/test", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	router := newRouter(t, auth.NewIssuer(secret, time.Hour), nil)

	w := do(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"missing authorization header"}`, w.Body.String())
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := newRouter(t, auth.NewIssuer(secret, time.Hour), nil)

	assert.Equal(t, http.StatusUnauthorized, do(router, "Bearer invalid-token").Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, "Bearer ").Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	other, _, err := auth.NewIssuer("some-other-secret", time.Hour).Issue(7, "a@example.com")
	require.NoError(t, err)

	router := newRouter(t, auth.NewIssuer(secret, time.Hour), nil)
	assert.Equal(t, http.StatusUnauthorized, do(router, "Bearer "+other).Code)
}

func TestAuthMiddleware_RejectsNonNumericSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	router := newRouter(t, auth.NewIssuer(secret, time.Hour), nil)
	assert.Equal(t, http.StatusUnauthorized, do(router, "Bearer "+signed).Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := auth.NewIssuer(secret, time.Hour)
	signed, _, err := tokens.Issue(42, "ada@example.com")
	require.NoError(t, err)

	router := newRouter(t, tokens, func(c *gin.Context) {
		id, ok := middleware.UserID(c)
		assert.True(t, ok)
		assert.Equal(t, int64(42), id)
		assert.Equal(t, "ada@example.com", c.GetString(middleware.UserEmailKey))
	})

	assert.Equal(t, http.StatusOK, do(router, "Bearer "+signed).Code)
}
