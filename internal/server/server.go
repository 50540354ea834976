// Package server wires storage, services, handlers and middleware into one
// HTTP server and runs it.
//
// COMPOSITION ROOT:
// New is the only place that knows about every layer:
//
//	sqlite.DB ─┬─ Projects() → ProjectService → ProjectHandler
//	           ├─ Snippets() → SnippetService → SnippetHandler
//	           └─ Files()    ─┐
//	blobstore.Local ──────────┴→ FileService  → FileHandler
//
// Services receive repository interfaces, handlers receive services. No
// handler ever touches the database or the upload directory directly.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/ide-server/internal/blobstore"
	"github.com/sakif/ide-server/internal/handler"
	"github.com/sakif/ide-server/internal/middleware"
	sqliteRepo "github.com/sakif/ide-server/internal/repository/sqlite"
	"github.com/sakif/ide-server/internal/service"
)

// Config holds what the server needs to start. cmd/server fills it from
// config.Config.
type Config struct {
	Port            int
	DBPath          string
	UploadDir       string
	DefaultMimeType string
	MaxUploadBytes  int64
}

// Server owns the router and the database connection. The database is
// closed by Start on shutdown, or by Close when Start is never called.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, applies the schema and builds the router.
// Nothing listens until Start is called.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes()

	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures middleware and routes.
//
// ROUTE STRUCTURE:
// GET    /health           → liveness
// GET    /files            → list file records
// POST   /files            → multipart upload
// GET    /files/{id}       → raw download
// DELETE /files/{id}       → delete record and blob
// GET    /projects         → list
// POST   /projects         → create
// GET    /projects/{id}    → get
// PUT    /projects/{id}    → partial update
// DELETE /projects/{id}    → delete
// GET    /snippets         → list
// POST   /snippets         → create
// GET    /snippets/{id}    → get
// DELETE /snippets/{id}    → delete
//
// MIDDLEWARE ORDER:
// RequestID runs first so the logger can print the id. Recoverer sits
// inside the logger so a recovered panic is still logged as a 500. CORS
// answers preflight requests before any route is matched.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// Fully permissive: any origin, method and header.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions, http.MethodHead,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         300,
	}))

	projectHandler := handler.NewProjectHandler(
		service.NewProjectService(s.db.Projects(), s.logger),
		s.logger,
	)
	snippetHandler := handler.NewSnippetHandler(
		service.NewSnippetService(s.db.Snippets(), s.logger),
		s.logger,
	)
	fileHandler := handler.NewFileHandler(
		service.NewFileService(
			s.db.Files(),
			blobstore.NewLocal(s.config.UploadDir),
			s.config.DefaultMimeType,
			s.logger,
		),
		s.config.MaxUploadBytes,
		s.logger,
	)

	s.router.Get("/health", handler.HandleHealth)

	s.router.Get("/files", fileHandler.HandleList)
	s.router.Post("/files", fileHandler.HandleUpload)
	s.router.Get("/files/{id}", fileHandler.HandleDownload)
	s.router.Delete("/files/{id}", fileHandler.HandleDelete)

	s.router.Get("/projects", projectHandler.HandleList)
	s.router.Post("/projects", projectHandler.HandleCreate)
	s.router.Get("/projects/{id}", projectHandler.HandleGetByID)
	s.router.Put("/projects/{id}", projectHandler.HandleUpdate)
	s.router.Delete("/projects/{id}", projectHandler.HandleDelete)

	s.router.Get("/snippets", snippetHandler.HandleList)
	s.router.Post("/snippets", snippetHandler.HandleCreate)
	s.router.Get("/snippets/{id}", snippetHandler.HandleGetByID)
	s.router.Delete("/snippets/{id}", snippetHandler.HandleDelete)
}

// Start listens on all interfaces and blocks until SIGINT or SIGTERM, then
// shuts down gracefully.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections
//  2. Wait up to 30s for in-flight requests
//  3. Close the database (checkpoints the WAL, releases the file lock)
//
// A failure to bind the port is returned immediately.
func (s *Server) Start() error {
	defer s.db.Close()

	// No WriteTimeout: downloads of large files can legitimately take a while.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.String("uploads", s.config.UploadDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
