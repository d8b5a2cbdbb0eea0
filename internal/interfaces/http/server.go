// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Anand95733/clothify-backend/internal/config"
	"github.com/Anand95733/clothify-backend/internal/domain/cart"
	"github.com/Anand95733/clothify-backend/internal/domain/order"
	"github.com/Anand95733/clothify-backend/internal/domain/product"
	"github.com/Anand95733/clothify-backend/internal/domain/user"
	"github.com/Anand95733/clothify-backend/internal/interfaces/http/middleware"
	"github.com/Anand95733/clothify-backend/internal/interfaces/http/routes"
	"github.com/Anand95733/clothify-backend/internal/pkg/email"
	"github.com/Anand95733/clothify-backend/internal/pkg/notify"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	logger      *logrus.Logger
	gin         *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
	deps        routes.Deps
}

// NewServer creates a new HTTP server instance and wires the domain
// services it serves.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger, mailer *email.EmailService, dispatcher *notify.Dispatcher) *Server {
	cartService := cart.NewService(db, cfg, logger)

	deps := routes.Deps{
		Config:         cfg,
		Logger:         logger,
		UserService:    user.NewService(db, cfg, logger, mailer, dispatcher),
		ProductService: product.NewService(db, redisClient, cfg),
		CartService:    cartService,
		OrderService:   order.NewService(db, cartService, cfg, logger, mailer, dispatcher),
	}

	return &Server{
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
		deps:        deps,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	s.gin = gin.New()

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.logger.WithField("port", s.config.Server.Port).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.RateLimit(s.config, s.redisClient))
	s.gin.Use(middleware.RequestSizeLimit(10 << 20)) // 10MB limit
	s.gin.Use(middleware.Timeout(30 * time.Second))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, s.deps)
}

// healthCheck reports process liveness
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"name":    s.config.App.Name,
		"version": s.config.App.Version,
	})
}

// readinessCheck reports whether the server's dependencies are reachable
func (s *Server) readinessCheck(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		checks["database"] = "unreachable"
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if s.redisClient != nil {
		if err := s.redisClient.Ping(c.Request.Context()).Err(); err != nil {
			checks["redis"] = "unreachable"
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"checks": checks})
}
