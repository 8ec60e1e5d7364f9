// Package api exposes the sustainability reports over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ecograde/ecograde/internal/config"
	"github.com/ecograde/ecograde/internal/metrics"
	"github.com/ecograde/ecograde/internal/middleware"
	"github.com/ecograde/ecograde/internal/models"
	"github.com/ecograde/ecograde/internal/report"
	"github.com/ecograde/ecograde/internal/repository"
)

// ReportGenerator produces reports for the handlers. *report.Generator
// satisfies it; tests substitute fixed outcomes.
type ReportGenerator interface {
	Generate(ctx context.Context, url string) (*models.SustainabilityReport, error)
	GenerateBatch(ctx context.Context, urls []string) (*report.BatchResult, error)
}

// Annotator forwards a finished report for prose annotation.
type Annotator interface {
	Annotate(ctx context.Context, report []byte) ([]byte, error)
}

// Server represents the HTTP server
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	repo       repository.Repository
	generator  ReportGenerator
	annotator  Annotator
	metrics    *metrics.Metrics
	logger     *slog.Logger
	config     *config.Config
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, repo repository.Repository, generator ReportGenerator, annotator Annotator, m *metrics.Metrics, logger *slog.Logger) *Server {
	// Default to release mode, but keep a mode chosen explicitly via
	// GIN_MODE or gin.SetMode (the test suite runs in test mode).
	if os.Getenv(gin.EnvGinMode) == "" && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add recovery middleware
	router.Use(gin.Recovery())

	// Add CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Tag and log every request
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	// Create the server
	s := &Server{
		router: router,
		httpServer: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		repo:      repo,
		generator: generator,
		annotator: annotator,
		metrics:   m,
		logger:    logger,
		config:    cfg,
	}

	// Register routes
	s.registerRoutes()

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// registerRoutes sets up all the routes for the server
func (s *Server) registerRoutes() {
	// Health check and metrics
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	// Browser UI
	s.router.StaticFile("/", "./web/index.html")

	// Public API routes
	public := s.router.Group("/api")
	{
		public.POST("/report", s.reportHandler)
		public.POST("/report/batch", s.batchReportHandler)
		public.POST("/annotate", s.annotateHandler)
	}

	// Archive routes, guarded when AUTH_TOKEN is set
	protected := s.router.Group("/api")
	protected.Use(middleware.TokenAuth(s.config.Auth.Token))
	{
		protected.GET("/reports", s.getRecentReportsHandler)
		protected.GET("/reports/:id", s.getReportHandler)
		protected.GET("/stats", s.getStatsHandler)
	}
}

// healthHandler handles health check requests
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}
