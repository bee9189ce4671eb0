package handlers

import (
	"net/http"

	"storefront/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, token, err := h.auth(c).Login(c.Request.Context(), middleware.GetSessionID(c), req.Username, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"token":   token,
		"user":    user,
	})
}

// POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	if err := h.auth(c).Logout(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	user, err := h.auth(c).Authenticate(c.Request.Context(), middleware.GetSessionID(c), middleware.BearerToken(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
