package rest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
}

// NewRouter - mounts the page, the REST API and the WebSocket endpoint.
func NewRouter(logger *slog.Logger, sessionService sessionService, socket http.Handler, static fs.FS) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/ping", Ping)
	router.Head("/ping", Ping)
	router.Get("/api/sessions/{id}", NewSessionHandlers(logger, sessionService).GetSession)
	router.Handle("/ws", socket)
	router.Handle("/*", http.FileServer(http.FS(static)))

	return router
}

func New(logger *slog.Logger, port string, handler http.Handler) *Server {
	return &Server{
		logger: logger,
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       30 * time.Second,
		},
	}
}

// Start - serves HTTP until Shutdown is called.
func (that *Server) Start() error {
	that.logger.Info("Starting HTTP server", "addr", that.httpServer.Addr)

	if err := that.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

// requestLogger - logs every request with the request id set by middleware.RequestID.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	log := logger.With("component", "http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				log.Debug("request served",
					"requestID", middleware.GetReqID(r.Context()),
					"httpMethod", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
