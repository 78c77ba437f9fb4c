// Package rest exposes the drive service over HTTP/JSON.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/services"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
	maxTreeMemory   = 32 << 20
)

type Server struct {
	address   string
	drive     *services.DriveService
	sessions  *SessionRegistry
	logger    logging.Logger
	jwtSecret []byte
	validate  *validator.Validate
	router    chi.Router
}

func NewServer(address string, l logging.Logger, drive *services.DriveService, secretKey string) *Server {
	s := &Server{
		address:   address,
		drive:     drive,
		sessions:  NewSessionRegistry(),
		logger:    l.With("module", "rest_server"),
		jwtSecret: []byte(secretKey),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/folders", s.handleListFolder)
		r.Post("/folders", s.handleCreateFolder)
		r.Patch("/folders/{id}", s.handleRenameFolder)
		r.Delete("/folders/{id}", s.handleDeleteFolder)
		r.Post("/cascades/retry", s.handleRetryCascade)

		r.Put("/files", s.handleUpload)
		r.Post("/files/tree", s.handleUploadTree)
		r.Post("/files/upload-url", s.handleRequestUpload)
		r.Patch("/files/{id}", s.handleRenameFile)
		r.Delete("/files/{id}", s.handleDeleteFile)
		r.Get("/files/{id}/url", s.handleDownloadURL)

		r.Get("/search", s.handleSearch)
		r.Get("/activity", s.handleRecentActivity)

		r.Route("/batch", func(r chi.Router) {
			r.Post("/move", s.handleMove)
			r.Post("/copy", s.handleCopy)
			r.Post("/delete", s.handleBulkDelete)
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleSessionState)
			r.Post("/select", s.handleToggleSelect)
			r.Put("/selection", s.handleSelectAll)
			r.Delete("/selection", s.handleClearSelection)
			r.Post("/copy", s.handleCopyToClipboard)
			r.Post("/cut", s.handleCutToClipboard)
			r.Delete("/clipboard", s.handleClearClipboard)
			r.Post("/paste", s.handlePaste)
		})
	})

	return r
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
