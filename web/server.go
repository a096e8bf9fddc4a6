// Package web serves the task and review stores as a JSON HTTP API.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/amonks/cadence/internal/logging"
	"github.com/amonks/cadence/review"
	"github.com/amonks/cadence/task"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Tasks   *task.Store
	Reviews *review.Scheduler
	Logger  *slog.Logger

	// Now is used for default dates. Nil means time.Now.
	Now func() time.Time
}

// Server handles API requests.
type Server struct {
	tasks   *task.Store
	reviews *review.Scheduler
	logger  *slog.Logger
	now     func() time.Time
}

// NewServer creates a server over both stores.
func NewServer(opts Options) (*Server, error) {
	if opts.Tasks == nil {
		return nil, fmt.Errorf("task store is required")
	}
	if opts.Reviews == nil {
		return nil, fmt.Errorf("review scheduler is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		tasks:   opts.Tasks,
		reviews: opts.Reviews,
		logger:  logging.OrDiscard(opts.Logger),
		now:     now,
	}, nil
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(s.recoverHandler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/stats", s.handleStats)
	r.Mount("/tasks", s.taskRoutes())
	r.Mount("/reviews", s.reviewRoutes())
	return r
}

// Serve listens on addr until ctx is done or the process is interrupted,
// then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	listenErrs := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		listenErrs <- server.ListenAndServe()
	}()

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupts)

	select {
	case err := <-listenErrs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", "error", err)
			return err
		}
		return nil
	case <-interrupts:
		s.logger.Info("interrupt received, shutting down")
	case <-ctx.Done():
		s.logger.Info("context done, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := server.Shutdown(shutdownCtx)
	listenErr := <-listenErrs
	if errors.Is(listenErr, http.ErrServerClosed) {
		listenErr = nil
	}
	return errors.Join(shutdownErr, listenErr)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		writer := &responseTracker{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(writer, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", writer.status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) recoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writer := &responseTracker{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if recovered := recover(); recovered != nil {
				s.logger.Error("panic handling request",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", recovered,
					"stack", string(debug.Stack()),
				)
				if writer.wroteHeader {
					return
				}
				writeJSON(writer, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(writer, r)
	})
}

type responseTracker struct {
	http.ResponseWriter
	wroteHeader bool
	status      int
}

func (w *responseTracker) WriteHeader(status int) {
	w.wroteHeader = true
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseTracker) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(data)
}
