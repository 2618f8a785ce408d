package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"logviewer/config"
	"logviewer/server/handlers"
	"logviewer/service"
)

// requestTimeout bounds a single API request at the transport.
const requestTimeout = 30 * time.Second

type Server struct {
	addr      string
	staticDir string
	svc       *service.Service
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(cfg config.Config, svc *service.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		addr:      cfg.ListenAddr,
		staticDir: cfg.StaticDir,
		svc:       svc,
		logger:    logger.Named("http"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Route("/api", func(r chi.Router) {
		r.Use(cors)

		r.Get("/health", handlers.HealthHandler)
		r.Get("/files", handlers.FilesHandler(s.svc, s.logger))
		r.Get("/logs", handlers.LogsHandler(s.svc, s.logger))
		r.Get("/stats", handlers.StatsHandler(s.svc, s.logger))

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			handlers.WriteError(w, http.StatusNotFound, "Not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			handlers.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		})
	})

	// Serve static files from the frontend build
	r.Get("/*", handlers.StaticHandler(s.staticDir, s.logger))

	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens on the configured address and blocks until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("HTTP server is running",
		zap.String("addr", s.addr),
		zap.String("root", s.svc.Root()),
	)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Run starts the server and shuts it down when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}
