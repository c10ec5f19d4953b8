// Package server provides the HTTP API of the oaemapi service.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/gereon-t/oaemapi/internal/log"
	"github.com/gereon-t/oaemapi/internal/service"
)

// Server is the REST front of the compute facade.
type Server struct {
	service  *service.Service
	workEPSG int
	version  string

	httpServer *http.Server
	logger     *zap.SugaredLogger
}

// Config parameterizes the server.
type Config struct {
	ListenAddr string
	WorkEPSG   int
	Version    string
}

// New creates the server and wires the routes.
func New(cfg Config, svc *service.Service, logger *zap.SugaredLogger) *Server {
	s := &Server{
		service:  svc,
		workEPSG: cfg.WorkEPSG,
		version:  cfg.Version,
		logger:   logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/api", s.handleOaem).Methods(http.MethodGet)
	router.HandleFunc("/sunvis", s.handleSunVis).Methods(http.MethodGet)
	router.HandleFunc("/plot", s.handlePlot).Methods(http.MethodGet)
	router.Use(s.requestLogger)

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// requestLogger tags every request with an id and logs method, path, status
// and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		s.logger.Debugw("request",
			"id", uuid.New().String(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
