package handlers

import (
	"context"
	"time"

	"storefront/internal/domain"
	"storefront/internal/http/middleware"
	"storefront/internal/notify"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

// Upstream is the part of the catalog API the request handlers call directly.
type Upstream interface {
	services.ProductSource
	services.Authenticator
	services.OrderSubmitter
}

// Handler carries the shared state behind every route. Services are copied
// per request so each gets its own request id.
type Handler struct {
	Catalog   services.CatalogService
	Sessions  *services.SessionRegistry
	Upstream  Upstream
	Toasts    *notify.Hub
	StoreName string
	Started   time.Time
}

func (h *Handler) catalog(c *gin.Context) services.CatalogService {
	svc := h.Catalog
	svc.Notifier = h.toasts(c)
	svc.RequestID = middleware.GetRequestID(c)
	return svc
}

// toasts is the queue of the request's session.
func (h *Handler) toasts(c *gin.Context) *notify.Queue {
	return h.Toasts.For(services.NormalizeSessionID(middleware.GetSessionID(c)))
}

func (h *Handler) cart(c *gin.Context) services.CartService {
	return services.CartService{
		Sessions:  h.Sessions,
		Catalog:   h.catalog(c),
		Orders:    h.Upstream,
		Notifier:  h.toasts(c),
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handler) auth(c *gin.Context) services.AuthService {
	return services.AuthService{
		Sessions:  h.Sessions,
		Upstream:  h.Upstream,
		Notifier:  h.toasts(c),
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handler) receipts(c *gin.Context) services.ReceiptService {
	return services.ReceiptService{StoreName: h.StoreName, RequestID: middleware.GetRequestID(c)}
}

// Authenticate is handed to middleware.RequireAuth.
func (h *Handler) Authenticate(ctx context.Context, sessionID, bearer string) (domain.RequestContext, error) {
	svc := services.AuthService{Sessions: h.Sessions, Upstream: h.Upstream}
	return svc.Authenticate(ctx, sessionID, bearer)
}
