// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Anand95733/clothify-backend/internal/config"
	"github.com/Anand95733/clothify-backend/internal/domain/cart"
	"github.com/Anand95733/clothify-backend/internal/interfaces/http/middleware"
)

const cartTokenHeader = "X-Cart-Token"

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		config:      cfg,
	}
}

// identityFromRequest resolves the cart owner for this request. A valid
// access token wins; otherwise the guest token from the X-Cart-Token
// header (or cart_id query parameter) is used. A guest with no token yet
// resolves to an empty identity and gets a token minted on first add.
func identityFromRequest(c *gin.Context) cart.Identity {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return cart.ForUser(userID)
	}

	token := c.GetHeader(cartTokenHeader)
	if token == "" {
		token = c.Query("cart_id")
	}
	return cart.ForGuest(token)
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	identity := identityFromRequest(c)

	cartResponse, err := h.cartService.GetCart(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    cartResponse,
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	identity := identityFromRequest(c)

	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cartResponse, err := h.cartService.AddItem(c.Request.Context(), identity, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	// Echo the guest token so first-time guests can persist it
	if cartResponse.CartID != "" {
		c.Header(cartTokenHeader, cartResponse.CartID)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    cartResponse,
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	identity := identityFromRequest(c)

	itemID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid item ID",
		})
		return
	}

	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cartResponse, err := h.cartService.UpdateItemQuantity(c.Request.Context(), identity, itemID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    cartResponse,
	})
}

// RemoveCartItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	identity := identityFromRequest(c)

	itemID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid item ID",
		})
		return
	}

	cartResponse, err := h.cartService.RemoveItem(c.Request.Context(), identity, itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    cartResponse,
	})
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
