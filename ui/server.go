// Package ui serves the dashboard JSON API over gin.
package ui

import (
	"context"
	"net/http"
	"time"

	"placementdash/app"
	"placementdash/domain/placement"
	"placementdash/internal"
	"placementdash/ui/middleware"

	"github.com/gin-gonic/gin"
)

// DashboardAPI is the service surface the handlers depend on
type DashboardAPI interface {
	Dashboard(ctx context.Context, email string) (*app.Dashboard, error)
	Summary(ctx context.Context, email string, f placement.Filter) (*app.DashboardSummary, error)
	Student(ctx context.Context, email string) (*placement.StudentSummary, error)
	Applications(ctx context.Context, userID string) ([]placement.ApplicationProjection, error)
}

// ServerOptions configures a Server
type ServerOptions struct {
	GinMode        string
	AllowedOrigins []string
	// ServiceAccount is named in permission hints when known
	ServiceAccount string
	Logger         *internal.Logger
}

// Server represents the dashboard web server
type Server struct {
	router         *gin.Engine
	service        DashboardAPI
	serviceAccount string
	logger         *internal.Logger
}

// NewServer creates a server with middleware and routes installed
func NewServer(service DashboardAPI, opts ServerOptions) *Server {
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}
	logger := opts.Logger
	if logger == nil {
		logger = internal.NewNopLogger()
	}

	s := &Server{
		router:         gin.New(),
		service:        service,
		serviceAccount: opts.ServiceAccount,
		logger:         logger,
	}
	s.setupMiddleware(opts.AllowedOrigins)
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware(allowedOrigins []string) {
	s.router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(s.logger),
		middleware.Recovery(s.logger),
		middleware.CORS(allowedOrigins),
	)
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/student", s.handleStudent)
	api.GET("/applications", s.handleApplications)
	api.GET("/dashboard", s.handleDashboard)
	api.GET("/dashboard/summary", s.handleDashboardSummary)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[Server] Listening on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
