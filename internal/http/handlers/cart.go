package handlers

import (
	"fmt"
	"net/http"

	"storefront/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type promoRequest struct {
	Code string `json:"code" binding:"required"`
}

// GET /api/cart
func (h *Handler) GetCart(c *gin.Context) {
	view, err := h.cart(c).View(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /api/cart/items
func (h *Handler) AddCartItem(c *gin.Context) {
	var req addItemRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	view, err := h.cart(c).AddItem(c.Request.Context(), middleware.GetSessionID(c), req.ProductID, req.Quantity)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PUT /api/cart/items/:id
func (h *Handler) UpdateCartItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateItemRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	view, err := h.cart(c).UpdateQuantity(c.Request.Context(), middleware.GetSessionID(c), id, *req.Quantity)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /api/cart/items/:id
func (h *Handler) RemoveCartItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.cart(c).RemoveItem(c.Request.Context(), middleware.GetSessionID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /api/cart
func (h *Handler) ClearCart(c *gin.Context) {
	view, err := h.cart(c).Clear(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /api/cart/promo
func (h *Handler) ApplyPromo(c *gin.Context) {
	var req promoRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	view, err := h.cart(c).ApplyPromo(c.Request.Context(), middleware.GetSessionID(c), req.Code)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /api/cart/promo
func (h *Handler) RemovePromo(c *gin.Context) {
	view, err := h.cart(c).RemovePromo(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /api/cart/checkout
func (h *Handler) Checkout(c *gin.Context) {
	order, err := h.cart(c).Checkout(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GET /api/cart/receipt
func (h *Handler) Receipt(c *gin.Context) {
	order, err := h.cart(c).LastOrder(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	pdf, filename, err := h.receipts(c).Generate(order)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
