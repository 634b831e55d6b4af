// api/middleware/auth_test.go
package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/chittoorhealth/api/logging"
	"github.com/chittoorhealth/api/middleware"
	"github.com/chittoorhealth/api/model"
	"github.com/chittoorhealth/api/util"
)

const testSecret = "test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	dir, err := os.MkdirTemp("", "middleware-test-logs")
	if err != nil {
		os.Exit(1)
	}
	logger.InitLogger(dir)
	code := m.Run()
	logger.Sync()
	os.RemoveAll(dir)
	os.Exit(code)
}

func signToken(t *testing.T, claims middleware.HealthClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func setupAuthRouter() (*gin.Engine, *model.Identity) {
	var captured model.Identity
	r := gin.New()
	r.Use(middleware.AuthMiddleware(testSecret))
	r.GET("/ping", func(c *gin.Context) {
		identity, err := util.IdentityFromContext(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no identity"})
			return
		}
		captured = identity
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r, &captured
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router, captured := setupAuthRouter()

	token := signToken(t, middleware.HealthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:                 "field_agent",
		AssignedSecretariats: `[{"mandal":"Kuppam","secretariat":"KPM-1"}]`,
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", captured.UserID)
	assert.Equal(t, model.RoleFieldAgent, captured.Role)
	assert.Contains(t, captured.AssignedSecretariats, "KPM-1")
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router, _ := setupAuthRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidSignature(t *testing.T) {
	router, _ := setupAuthRouter()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.HealthClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		Role:             "admin",
	})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_UnknownRole(t *testing.T) {
	router, _ := setupAuthRouter()

	token := signToken(t, middleware.HealthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "superuser",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
