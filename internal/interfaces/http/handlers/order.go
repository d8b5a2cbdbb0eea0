// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Anand95733/clothify-backend/internal/config"
	"github.com/Anand95733/clothify-backend/internal/domain/order"
	"github.com/Anand95733/clothify-backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService *order.Service
	config       *config.Config
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, cfg *config.Config) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		config:       cfg,
	}
}

// Checkout handles POST /checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	identity := identityFromRequest(c)

	// Logged-in users may checkout with no body at all
	var req order.CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"details": err.Error(),
			})
			return
		}
	}

	placed, err := h.orderService.Checkout(c.Request.Context(), identity, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data": gin.H{
			"order": placed,
		},
	})
}

// GetOrder handles GET /orders/:id. Guests pass the email the order was
// placed under as ?email= so the confirmation page works without an account.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	var userID *uint
	if id, ok := middleware.GetUserIDFromContext(c); ok {
		userID = &id
	}

	placed, err := h.orderService.GetOrder(c.Request.Context(), userID, orderID, c.Query("email"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data": gin.H{
			"order": placed,
		},
	})
}

// ListOrders handles GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data": gin.H{
			"orders": orders,
		},
	})
}
