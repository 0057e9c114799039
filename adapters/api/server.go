package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"frogwalk/app"
	"frogwalk/internal"
	"frogwalk/internal/config"
	apperrors "frogwalk/internal/errors"
	"frogwalk/ports"
)

// Server exposes simulations over HTTP
type Server struct {
	router     *chi.Mux
	simulation *app.SimulationService
	analysis   *app.AnalysisService
	theory     ports.TheoryPort
	defaults   config.SimulationConfig
	settings   config.ServerConfig
	logger     *internal.Logger
}

// NewServer wires the routes. defaults fill fields a request leaves out.
func NewServer(
	simulation *app.SimulationService,
	analysis *app.AnalysisService,
	theory ports.TheoryPort,
	defaults config.SimulationConfig,
	settings config.ServerConfig,
	logger *internal.Logger,
) *Server {
	if logger == nil {
		logger = internal.Discard()
	}
	s := &Server{
		router:     chi.NewRouter(),
		simulation: simulation,
		analysis:   analysis,
		theory:     theory,
		defaults:   defaults,
		settings:   settings,
		logger:     logger.WithComponent("api"),
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	if s.settings.EnableLogger {
		s.router.Use(middleware.Logger)
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/simulations", s.handleSimulate)
		r.Get("/walks", s.handleWalk)
		r.Get("/theory", s.handleTheory)
		r.Get("/draws", s.handleDraws)
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.settings.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if !apperrors.IsAppError(err) {
		err = apperrors.Wrap(err, "request failed")
	}
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", r.Method, r.URL.Path, err)
	} else {
		s.logger.Warn("%s %s: %v", r.Method, r.URL.Path, err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:    apperrors.GetCode(err),
		Message: err.Error(),
	}})
}

func invalidParam(name string, cause error) error {
	return &apperrors.AppError{
		Code:    apperrors.CodeInvalidInput,
		Message: fmt.Sprintf("invalid %s", name),
		Cause:   cause,
	}
}
