// Package http provides the HTTP adapter for the application layer.
// It translates requests to application service calls and service
// errors back to status codes; no business rules live here.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/delego-hq/delego/internal/application/port"
	"github.com/delego-hq/delego/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
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

// Services bundles the application services the API exposes
type Services struct {
	Auth       service.AuthService
	Delegation service.DelegationService
	Expense    service.ExpenseService
	Employee   service.EmployeeService
	Settlement service.SettlementService
	Reference  port.ReferenceRepository
	Storage    port.FileStorage
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		services: services,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.corsMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		auth.GET("/verify", s.authMiddleware(), handlers.Verify)
		auth.GET("/me", s.authMiddleware(), handlers.Me)
	}

	// Everything below requires a valid token
	authed := api.Group("")
	authed.Use(s.authMiddleware())

	delegations := authed.Group("/delegations")
	{
		delegations.GET("", handlers.ListOwnDelegations)
		delegations.POST("", handlers.CreateDelegation)
		delegations.GET("/:id", handlers.GetDelegation)
		delegations.PUT("/:id", handlers.UpdateDelegation)
		delegations.DELETE("/:id", handlers.DeleteDelegation)
		delegations.POST("/:id/submit", handlers.SubmitDelegation)

		delegations.POST("/:id/expenses", handlers.AddExpense)
		delegations.PUT("/:id/expenses/:expenseID", handlers.UpdateExpense)
		delegations.DELETE("/:id/expenses/:expenseID", handlers.DeleteExpense)

		delegations.POST("/:id/documents", handlers.AddDocument)
		delegations.POST("/:id/documents/upload", handlers.UploadDocument)
		delegations.DELETE("/:id/documents/:documentID", handlers.DeleteDocument)

		delegations.POST("/:id/settlement", handlers.ExportSettlement)
	}

	manager := authed.Group("/manager")
	{
		manager.GET("/delegations", handlers.ListSubordinateDelegations)
		manager.POST("/delegations/:id/approve", handlers.ApproveDelegation)
		manager.POST("/delegations/:id/reject", handlers.RejectDelegation)
		manager.POST("/delegations/:id/cancel", handlers.CancelDelegation)
		manager.POST("/delegations/:id/expenses/:expenseID/approve", handlers.ApproveExpense)
		manager.POST("/delegations/:id/expenses/:expenseID/reject", handlers.RejectExpense)
		manager.POST("/delegations/:id/expenses/approve-all", handlers.ApproveAllExpenses)
		manager.POST("/delegations/:id/expenses/reject-all", handlers.RejectAllExpenses)
	}

	admin := authed.Group("/admin")
	{
		admin.GET("/employees", handlers.ListEmployees)
		admin.POST("/employees", handlers.CreateEmployee)
		admin.GET("/employees/:id", handlers.GetEmployeeDetail)
		admin.PUT("/employees/:id", handlers.UpdateEmployee)
		admin.POST("/employees/:id/activate", handlers.ActivateEmployee)
		admin.POST("/employees/:id/block", handlers.BlockEmployee)
		admin.PUT("/employees/:id/manager", handlers.AssignManager)
		admin.GET("/managers", handlers.ListManagers)
		admin.GET("/managers/:id", handlers.GetManagerDetail)
	}

	reference := authed.Group("")
	{
		reference.GET("/currencies", handlers.ListCurrencies)
		reference.GET("/categories", handlers.ListCategories)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
