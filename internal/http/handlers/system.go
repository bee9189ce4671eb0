package handlers

import (
	"net/http"
	"sync"
	"time"

	intconfig "storefront/internal/config"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func (h *Handler) Health(c *gin.Context) {
	payload := gin.H{
		"status":   "ok",
		"message":  "storefront running",
		"sessions": h.Sessions.Len(),
		"catalog": gin.H{
			"loaded":   h.Catalog.Cache.Loaded(),
			"products": len(h.Catalog.Cache.Products()),
		},
	}
	if !h.Started.IsZero() {
		payload["uptime_s"] = int64(time.Since(h.Started).Seconds())
	}
	if at := h.Catalog.Cache.LoadedAt(); !at.IsZero() {
		payload["catalog"].(gin.H)["loaded_at"] = at.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, payload)
}

func DBCheck(c *gin.Context) {
	if intconfig.DB == nil {
		c.JSON(http.StatusOK, gin.H{"message": "in-memory persistence", "driver": intconfig.DriverMemory})
		return
	}
	if err := intconfig.EnsureDB(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not connected", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK"})
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "router not ready"})
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
