// Package server exposes the inbound HTTP surface: the authenticated events
// endpoint and an unauthenticated health check.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"slackbridge/internal/auth"
	"slackbridge/internal/config"
	"slackbridge/internal/dispatch"
)

// Header names the platform uses to carry the signature material.
const (
	HeaderTimestamp = "X-Request-Timestamp"
	HeaderSignature = "X-Signature"
)

// EventDispatcher is what the server needs from the dispatch layer.
type EventDispatcher interface {
	Dispatch(body []byte) dispatch.Ack
}

// Server is the webhook HTTP server.
type Server struct {
	cfg        config.ServerConfig
	verifier   *auth.Verifier
	dispatcher EventDispatcher
	logger     *slog.Logger
	server     *http.Server
}

// New creates a Server.
func New(cfg config.ServerConfig, verifier *auth.Verifier, dispatcher EventDispatcher, logger *slog.Logger) *Server {
	return &Server{
		cfg:        cfg,
		verifier:   verifier,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start starts the HTTP server (blocking until ctx is cancelled).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("server starting", "listen", s.cfg.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Post("/events", s.handleEvents)
	r.Get("/health", s.handleHealth)

	return r
}

// loggingMiddleware logs HTTP requests (excludes payloads, which may contain
// message content).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// handleEvents authenticates and dispatches one platform callback. The
// response is always immediate; reply work happens in the background.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limitedReader := io.LimitReader(r.Body, s.cfg.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to read request body")
		return
	}
	if int64(len(body)) > s.cfg.MaxBodySize {
		s.respondError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	timestamp := r.Header.Get(HeaderTimestamp)
	signature := r.Header.Get(HeaderSignature)
	if err := s.verifier.Verify(timestamp, signature, body); err != nil {
		s.logger.Warn("request verification failed",
			"error", err,
			"request_id", middleware.GetReqID(r.Context()),
		)
		s.respondError(w, http.StatusUnauthorized, authReason(err))
		return
	}

	ack := s.dispatcher.Dispatch(body)
	s.respondJSON(w, http.StatusOK, ack)
}

// handleHealth reports liveness. No auth on purpose: the platform and any
// load balancer probe it blind.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func authReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingHeaders):
		return "missing signature headers"
	case errors.Is(err, auth.ErrStaleTimestamp):
		return "stale timestamp"
	case errors.Is(err, auth.ErrSignatureMismatch):
		return "invalid signature"
	default:
		return "unauthorized"
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
