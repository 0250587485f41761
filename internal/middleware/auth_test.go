package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-key"

func setupAdminRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminAuth(secret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("admin_user"))
	})
	return r
}

func performAdmin(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuth_ValidToken(t *testing.T) {
	token, expiresAt, err := IssueToken(testSecret, "maria", time.Hour, time.Now())
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	w := performAdmin(setupAdminRouter(testSecret), "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "maria", w.Body.String())
}

func TestAdminAuth_Rejections(t *testing.T) {
	expired, _, err := IssueToken(testSecret, "maria", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	otherKey, _, err := IssueToken("another-key", "maria", time.Hour, time.Now())
	require.NoError(t, err)
	customer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: "guest",
		Role:     "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong key", "Bearer " + otherKey, http.StatusUnauthorized},
		{"not admin", "Bearer " + customer, http.StatusForbidden},
	}

	r := setupAdminRouter(testSecret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performAdmin(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAdminAuth_Disabled(t *testing.T) {
	token, _, err := IssueToken(testSecret, "maria", time.Hour, time.Now())
	require.NoError(t, err)

	w := performAdmin(setupAdminRouter(""), "Bearer "+token)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
