package api

import (
	stdhttp "net/http"

	intconfig "storefront/internal/config"
	h "storefront/internal/http/handlers"
	"storefront/internal/http/middleware"
	"storefront/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(env intconfig.Env, hd *h.Handler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSOrigins), middleware.Session())

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.L().Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	requireAuth := middleware.RequireAuth(hd.Authenticate)

	api := r.Group("/api")
	{
		api.GET("/health", hd.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Catalog
		products := api.Group("/products")
		products.GET("", hd.ListProducts)
		products.GET("/categories", hd.ListCategories)
		products.GET("/:id", hd.GetProduct)
		products.POST("/refresh", hd.RefreshProducts)
		products.POST("", requireAuth, hd.CreateProduct)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/login", hd.Login)
		auth.POST("/logout", hd.Logout)
		auth.GET("/me", hd.Me)

		// Cart
		cart := api.Group("/cart", requireAuth)
		cart.GET("", hd.GetCart)
		cart.DELETE("", hd.ClearCart)
		cart.POST("/items", hd.AddCartItem)
		cart.PUT("/items/:id", hd.UpdateCartItem)
		cart.DELETE("/items/:id", hd.RemoveCartItem)
		cart.POST("/promo", hd.ApplyPromo)
		cart.DELETE("/promo", hd.RemovePromo)
		cart.POST("/checkout", hd.Checkout)
		cart.GET("/receipt", hd.Receipt)

		// Toasts
		notifications := api.Group("/notifications")
		notifications.GET("", hd.ListNotifications)
		notifications.DELETE("", hd.ClearNotifications)
		notifications.DELETE("/:id", hd.DismissNotification)
	}

	h.SetRouter(r)
	return r
}
