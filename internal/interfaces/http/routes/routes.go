// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Anand95733/clothify-backend/internal/config"
	"github.com/Anand95733/clothify-backend/internal/domain/cart"
	"github.com/Anand95733/clothify-backend/internal/domain/order"
	"github.com/Anand95733/clothify-backend/internal/domain/product"
	"github.com/Anand95733/clothify-backend/internal/domain/user"
	"github.com/Anand95733/clothify-backend/internal/interfaces/http/handlers"
	"github.com/Anand95733/clothify-backend/internal/interfaces/http/middleware"
)

// Deps carries the wired services the route handlers depend on.
type Deps struct {
	Config         *config.Config
	Logger         *logrus.Logger
	UserService    *user.Service
	ProductService *product.Service
	CartService    *cart.Service
	OrderService   *order.Service
}

// SetupRoutes mounts all API routes on the given group.
func SetupRoutes(rg *gin.RouterGroup, deps Deps) {
	setupAuthRoutes(rg, deps)
	setupProductRoutes(rg, deps)
	setupCartRoutes(rg, deps)
	setupOrderRoutes(rg, deps)
}

func setupAuthRoutes(rg *gin.RouterGroup, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.UserService, deps.CartService, deps.Config, deps.Logger)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Config))
		{
			protected.GET("/profile", authHandler.GetProfile)
		}
	}
}

func setupProductRoutes(rg *gin.RouterGroup, deps Deps) {
	productHandler := handlers.NewProductHandler(deps.ProductService, deps.Config)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.ListProducts)
		products.GET("/:id", productHandler.GetProduct)
	}
}

func setupCartRoutes(rg *gin.RouterGroup, deps Deps) {
	cartHandler := handlers.NewCartHandler(deps.CartService, deps.Config)

	// Cart routes serve guests and authenticated users alike
	cartGroup := rg.Group("/cart")
	cartGroup.Use(middleware.OptionalAuthMiddleware(deps.Config))
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.POST("/items", cartHandler.AddToCart)
		cartGroup.PUT("/items/:id", cartHandler.UpdateCartItem)
		cartGroup.DELETE("/items/:id", cartHandler.RemoveCartItem)
	}
}

func setupOrderRoutes(rg *gin.RouterGroup, deps Deps) {
	orderHandler := handlers.NewOrderHandler(deps.OrderService, deps.Config)

	// Checkout accepts guest identities, order history requires auth
	checkout := rg.Group("/checkout")
	checkout.Use(middleware.OptionalAuthMiddleware(deps.Config))
	{
		checkout.POST("", orderHandler.Checkout)
	}

	orders := rg.Group("/orders")
	{
		// Single-order lookup backs the confirmation page, so it must
		// work for the guest who just checked out
		lookup := orders.Group("")
		lookup.Use(middleware.OptionalAuthMiddleware(deps.Config))
		{
			lookup.GET("/:id", orderHandler.GetOrder)
		}

		history := orders.Group("")
		history.Use(middleware.AuthMiddleware(deps.Config))
		{
			history.GET("", orderHandler.ListOrders)
		}
	}
}
