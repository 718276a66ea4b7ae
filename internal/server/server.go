package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/tallywatch-api/internal/auth"
	"github.com/gravadigital/tallywatch-api/internal/config"
	"github.com/gravadigital/tallywatch-api/internal/domain/scope"
	"github.com/gravadigital/tallywatch-api/internal/handlers"
	"github.com/gravadigital/tallywatch-api/internal/logger"
	"github.com/gravadigital/tallywatch-api/internal/metrics"
	"github.com/gravadigital/tallywatch-api/internal/middleware/requestlog"
	"github.com/gravadigital/tallywatch-api/internal/services"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Services *services.Services
	Verifier *auth.Verifier
	Metrics  *metrics.Metrics
	Limits   services.UploadLimits
	Health   map[string]handlers.HealthCheck
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config
	deps       Dependencies
}

// New creates a new server instance
func New(cfg *config.Config, deps Dependencies) *Server {
	return &Server{
		config: cfg,
		deps:   deps,
	}
}

// Start starts the HTTP server and blocks until it is stopped
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: s.Router(),

		// Uploads carry several photos, so writes get more room than reads.
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// Router configures the HTTP router with middleware and routes
func (s *Server) Router() *gin.Engine {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if s.config.Server.GinMode != "" {
		gin.SetMode(s.config.Server.GinMode)
	}

	router := gin.New()

	router.Use(requestlog.New(logger.HTTP(), s.deps.Metrics))
	router.Use(gin.Recovery())
	router.Use(cors.New(s.corsConfig()))

	health := handlers.NewHealthHandler(s.deps.Health)
	router.GET("/ping", health.Ping)
	router.GET("/health", health.Health)
	if s.deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}

	s.setupAPIRoutes(router)

	return router
}

func (s *Server) corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()

	origins := splitList(s.config.CORS.AllowOrigins)
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	if methods := splitList(s.config.CORS.AllowMethods); len(methods) > 0 {
		corsConfig.AllowMethods = methods
	}
	if headers := splitList(s.config.CORS.AllowHeaders); len(headers) > 0 {
		corsConfig.AllowHeaders = headers
	}
	corsConfig.ExposeHeaders = []string{requestlog.HeaderRequestID}
	return corsConfig
}

// setupAPIRoutes configures all API routes
func (s *Server) setupAPIRoutes(router *gin.Engine) {
	svc := s.deps.Services
	submissionHandler := handlers.NewSubmissionHandler(svc.Submissions, svc.Reviews, s.deps.Limits)
	resultHandler := handlers.NewResultHandler(svc.Results)
	aggregateHandler := handlers.NewAggregateHandler(svc.Aggregations)

	reporters := auth.RequireRole(scope.RoleAgent, scope.RoleObserver, scope.RoleAdmin)

	api := router.Group("/api")
	api.Use(auth.Authenticate(s.deps.Verifier))
	{
		submissions := api.Group("/submissions")
		{
			submissions.POST("", reporters, submissionHandler.CreateSubmission)
			submissions.PATCH("/:id/status", auth.RequireRole(scope.RoleAdmin), submissionHandler.SetStatus)
		}

		results := api.Group("/results")
		{
			results.POST("", reporters, resultHandler.RecordResult)
			results.GET("/aggregate", aggregateHandler.GetAggregate)
		}

		api.GET("/candidates", aggregateHandler.ListCandidates)
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
