package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/notifications
func (h *Handler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.toasts(c).List()})
}

// DELETE /api/notifications/:id
func (h *Handler) DismissNotification(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.toasts(c).Dismiss(id)
	c.Status(http.StatusNoContent)
}

// DELETE /api/notifications
func (h *Handler) ClearNotifications(c *gin.Context) {
	h.toasts(c).Clear()
	c.Status(http.StatusNoContent)
}
