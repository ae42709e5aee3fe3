package admin

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"festreg/internal/config"
	jwtsvc "festreg/internal/pkg/jwt"
)

func loginRouter(t *testing.T, password string) *gin.Engine {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)

	cfg := &config.Config{
		AdminEmail:        "admin@example.org",
		AdminPasswordHash: string(hash),
	}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(cfg, jwtsvc.New("test-secret", time.Hour)).RegisterRoutes(r.Group("/api"))
	return r
}

func postLogin(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/admin/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_ValidCredentials(t *testing.T) {
	r := loginRouter(t, "correct horse")

	w := postLogin(r, `{"email":"Admin@Example.org","password":"correct horse"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token")
}

func TestLogin_WrongPassword(t *testing.T) {
	r := loginRouter(t, "correct horse")

	w := postLogin(r, `{"email":"admin@example.org","password":"battery staple"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	r := loginRouter(t, "correct horse")

	w := postLogin(r, `{"email":"intruder@example.org","password":"correct horse"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_MissingFields(t *testing.T) {
	r := loginRouter(t, "correct horse")

	w := postLogin(r, `{"email":"admin@example.org"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_NotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(&config.Config{}, jwtsvc.New("test-secret", time.Hour)).RegisterRoutes(r.Group("/api"))

	w := postLogin(r, `{"email":"admin@example.org","password":"x"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
