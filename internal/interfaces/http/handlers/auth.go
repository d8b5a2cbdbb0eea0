// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Anand95733/clothify-backend/internal/config"
	"github.com/Anand95733/clothify-backend/internal/domain/cart"
	"github.com/Anand95733/clothify-backend/internal/domain/user"
	"github.com/Anand95733/clothify-backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	userService *user.Service
	cartService *cart.Service
	config      *config.Config
	logger      *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *user.Service, cartService *cart.Service, cfg *config.Config, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		cartService: cartService,
		config:      cfg,
		logger:      logger,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	authResponse, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.mergeGuestCart(c, authResponse.User.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data":    authResponse,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	authResponse, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.mergeGuestCart(c, authResponse.User.ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    authResponse,
	})
}

// RefreshToken handles POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	authResponse, err := h.userService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed successfully",
		"data":    authResponse,
	})
}

// GetProfile handles GET /auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    profile,
	})
}

// mergeGuestCart folds the request's guest cart into the freshly
// authenticated account. Authentication never fails because of the
// cart: a merge error is logged and retried line by line, and whatever
// remains is at worst an orphaned guest cart.
func (h *AuthHandler) mergeGuestCart(c *gin.Context, userID uint) {
	guestToken := c.GetHeader(cartTokenHeader)
	if guestToken == "" {
		guestToken = c.Query("cart_id")
	}
	if guestToken == "" {
		return
	}

	ctx := c.Request.Context()
	if err := h.cartService.MergeGuestCart(ctx, userID, guestToken); err != nil {
		h.logger.WithField("user_id", userID).WithError(err).Warn("Cart merge failed, replaying line by line")
		if err := h.cartService.ReplayMerge(ctx, userID, guestToken); err != nil {
			h.logger.WithField("user_id", userID).WithError(err).Error("Cart merge replay failed")
		}
	}
}
