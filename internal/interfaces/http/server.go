// Package http provides the HTTP adapter over the application services.
// It is a thin layer: requests are translated to service calls and domain
// errors are mapped to status codes; no business rules live here.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/cmcs/internal/application/service"
	"github.com/campusworks/cmcs/pkg/utils"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	claimService service.ClaimService,
	reportService service.ReportService,
	ring *utils.Ring,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		handlers: NewHandlers(claimService, reportService, ring, logger),
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	})
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.HealthCheck)

	api := s.router.Group("/api/v1")
	{
		api.POST("/claims", s.handlers.SubmitClaim)
		api.GET("/claims/:id", s.handlers.GetClaim)
		api.GET("/claims/:id/history", s.handlers.GetClaimHistory)
		api.POST("/claims/:id/approve", s.handlers.ApproveClaim)
		api.POST("/claims/:id/reject", s.handlers.RejectClaim)
		api.POST("/claims/:id/documents", s.handlers.AddDocument)

		api.GET("/approvals/queue", s.handlers.PendingClaims)
		api.GET("/lecturers/:name/claims", s.handlers.LecturerClaims)

		api.GET("/dashboard", s.handlers.Dashboard)
		api.GET("/reports/overall", s.handlers.OverallReport)
		api.GET("/reports/monthly", s.handlers.MonthlyReport)
		api.GET("/reports/lecturers", s.handlers.LecturerReports)
		api.GET("/reports/monthly-breakdown", s.handlers.MonthlyBreakdown)
		api.GET("/reports/approved-claims", s.handlers.ApprovedClaims)
		api.GET("/reports/payments", s.handlers.PaymentSummary)

		api.GET("/admin/logs", s.handlers.RecentLogs)
	}
}

// Start begins serving HTTP requests
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("HTTP server starting", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
