// Package admin issues access tokens for the administrative surface: catalog
// writes, registration listing/export/deletion and status fixups.
package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"festreg/internal/config"
	jwtsvc "festreg/internal/pkg/jwt"
	"festreg/internal/pkg/response"
)

type Handler struct {
	cfg *config.Config
	jwt *jwtsvc.Service
}

func NewHandler(cfg *config.Config, jwt *jwtsvc.Service) *Handler {
	return &Handler{cfg: cfg, jwt: jwt}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/admin/login", h.Login)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_FAILED", "email and password are required")
		return
	}

	if h.cfg.AdminEmail == "" || h.cfg.AdminPasswordHash == "" {
		response.Error(c, http.StatusServiceUnavailable, "NOT_CONFIGURED", "admin access is not configured")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != strings.ToLower(h.cfg.AdminEmail) {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPasswordHash), []byte(req.Password)); err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
		return
	}

	token, err := h.jwt.GenerateToken(email, "admin")
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to issue token")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token})
}
