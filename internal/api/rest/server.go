package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reyadahealth/doh-compliance-engine/internal/infrastructure/cache"
	"github.com/reyadahealth/doh-compliance-engine/internal/infrastructure/config"
)

// Server hosts the compliance validation API.
type Server struct {
	config     *config.Config
	logger     *slog.Logger
	handler    *Handler
	auth       *AuthMiddleware
	limiter    cache.RateLimiter
	httpServer *http.Server
}

// NewServer assembles the HTTP server around the wired handler.
func NewServer(cfg *config.Config, logger *slog.Logger, handler *Handler, auth *AuthMiddleware, limiter cache.RateLimiter) *Server {
	s := &Server{
		config:  cfg,
		logger:  logger,
		handler: handler,
		auth:    auth,
		limiter: limiter,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Unauthenticated surface
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Authenticated API
	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1/validations", s.handler.HandleValidate)
	api.HandleFunc("POST /api/v1/validations/batch", s.handler.HandleBatchValidate)
	api.HandleFunc("GET /api/v1/validations/batch/{id}", s.handler.HandleBatchStatus)
	api.HandleFunc("GET /api/v1/validations/{id}", s.handler.HandleGetValidation)
	api.HandleFunc("GET /api/v1/compliance/status", s.handler.HandleComplianceStatus)
	api.HandleFunc("POST /api/v1/compliance/reports", s.handler.HandleGenerateReport)
	api.HandleFunc("GET /api/v1/compliance/reports/{id}", s.handler.HandleGetReport)
	api.HandleFunc("GET /api/v1/compliance/analytics", s.handler.HandleAnalytics)
	api.HandleFunc("POST /api/v1/admin/cache/clear", s.handler.HandleClearCache)

	mux.Handle("/api/v1/", s.auth.Middleware(api))

	return chain(mux,
		RequestIDMiddleware,
		LoggingMiddleware(s.logger),
		RecoveryMiddleware(s.logger),
		RateLimitMiddleware(s.limiter, s.config.Security.RateLimit.RequestsPerSecond, s.config.Security.RateLimit.BurstSize),
	)
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("compliance API listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		s.logger.Info("shutting down", "signal", sig.String())
		return s.Shutdown()
	}
}

// Shutdown stops the server within the configured timeout.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	checks := map[string]string{"engine": "ok"}
	if s.handler.engine.Catalog() == nil {
		status = "degraded"
		checks["engine"] = "standards catalog not loaded"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  status,
		"version": s.config.Version,
		"checks":  checks,
		"time":    time.Now().Format(time.RFC3339),
	})
}
