package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/researchmem/researchmem/internal/app/config"
	"github.com/researchmem/researchmem/internal/app/handlers"
	"github.com/researchmem/researchmem/internal/app/middleware"
	appservices "github.com/researchmem/researchmem/internal/app/services"
	"github.com/researchmem/researchmem/pkg/logger"
)

type Server struct {
	config   *config.Config
	logger   *logger.Logger
	router   *gin.Engine
	server   *http.Server
	services *appservices.ServiceManager
}

// New creates a new server instance
func New(cfg *config.Config, log *logger.Logger, sm *appservices.ServiceManager) (*Server, error) {
	// Configure Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg))
	router.Use(loggingMiddleware(log))

	server := &Server{
		config:   cfg,
		logger:   log,
		router:   router,
		services: sm,
	}

	server.setupRoutes()

	return server, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	if err := s.services.Close(); err != nil {
		s.logger.Error("Error closing services", "error", err)
	}

	return s.server.Shutdown(ctx)
}

// setupRoutes configures all application routes
func (s *Server) setupRoutes() {
	cookieTTL := int(s.config.JWT.Expiry.Seconds())
	authHandler := handlers.NewAuthHandler(s.services.UserService, cookieTTL, s.config.IsProduction())
	fileHandler := handlers.NewFileHandler(s.services.FileService)
	projectHandler := handlers.NewProjectHandler(s.services.ProjectService, s.services.AttachmentService, s.services.BulkService)
	jobHandler := handlers.NewJobHandler(s.services.FileService)

	// Health check endpoint
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/oauth", authHandler.OAuthLogin)
		auth.POST("/logout", authHandler.Logout)
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(s.config.JWT.Secret))
	{
		protected.GET("/auth/me", authHandler.Me)

		files := protected.Group("/files")
		{
			files.POST("", fileHandler.Upload)
			files.GET("", fileHandler.List)
			files.PATCH("/bulk/status", fileHandler.BulkUpdateStatus)
			files.GET("/:id", fileHandler.Get)
			files.PATCH("/:id", fileHandler.UpdateMetadata)
			files.PATCH("/:id/status", fileHandler.UpdateStatus)
			files.GET("/:id/download", fileHandler.Download)
			files.GET("/:id/jobs", jobHandler.ListByFile)
		}

		jobs := protected.Group("/jobs")
		{
			jobs.GET("/:id", jobHandler.Get)
		}

		projects := protected.Group("/projects")
		{
			projects.POST("", projectHandler.Create)
			projects.POST("/bulk", projectHandler.BulkCreate)
			projects.GET("", projectHandler.List)
			projects.GET("/pinned", projectHandler.Pinned)
			projects.GET("/favorites", projectHandler.Favorites)
			projects.GET("/shared", projectHandler.Shared)
			projects.GET("/archived", projectHandler.Archived)
			projects.DELETE("/bulk", projectHandler.BulkDelete)
			projects.PATCH("/bulk", projectHandler.BulkUpdate)

			projects.GET("/:id", projectHandler.Get)
			projects.DELETE("/:id", projectHandler.Delete)
			projects.PATCH("/:id/status", projectHandler.UpdateStatus)
			projects.POST("/:id/pin", projectHandler.TogglePin)
			projects.POST("/:id/favorite", projectHandler.ToggleFavorite)
			projects.POST("/:id/share", projectHandler.ToggleShare)
			projects.POST("/:id/archive", projectHandler.Archive)
			projects.POST("/:id/unarchive", projectHandler.Unarchive)
			projects.POST("/:id/publish", projectHandler.Publish)
			projects.POST("/:id/unpublish", projectHandler.Unpublish)

			projects.GET("/:id/files", projectHandler.ListFiles)
			projects.POST("/:id/files", projectHandler.Attach)
			projects.POST("/:id/files/bulk", projectHandler.BulkAttach)
			projects.DELETE("/:id/files/bulk", projectHandler.BulkDetach)
			projects.DELETE("/:id/files/:file_id", projectHandler.Detach)
		}
	}
}

// Health check handler
func (s *Server) healthCheck(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	if err := s.services.HealthCheck(); err != nil {
		s.logger.Error("Health check failed", "error", err)
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":      status,
		"timestamp":   time.Now().UTC(),
		"environment": s.config.Environment,
	})
}

// corsMiddleware configures CORS
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	return cors.New(corsConfig)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}
