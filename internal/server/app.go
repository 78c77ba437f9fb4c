// Package server initializes and runs the drive server. It builds the
// metadata and blob backends selected by the configuration, wires the drive
// service behind the REST transport and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/activity"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/config"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdrive/internal/server/rest"
	"github.com/dmitrijs2005/gophdrive/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	drive  *services.DriveService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := config.Validate(c); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger, err := logging.New(c.LogFormat, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	repos, err := repomanager.New(repomanager.Options{
		Backend:     c.MetadataBackend,
		DatabaseDSN: c.DatabaseDSN,
		BadgerDir:   c.BadgerDir,
	})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	blobs, err := blobstore.NewFromConfig(ctx, blobstore.Options{
		Backend: c.BlobBackend,
		Root:    c.BlobRoot,
		S3: blobstore.S3Options{
			User:          c.S3RootUser,
			Password:      c.S3RootPassword,
			Bucket:        c.S3Bucket,
			Region:        c.S3Region,
			BaseEndpoint:  c.S3BaseEndpoint,
			PresignExpiry: c.PresignExpiry,
		},
	})
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	sink := activity.Multi{
		activity.NewRepositorySink(repos.ActivityLogs(), logger),
		activity.NewLogSink(logger.With("module", "activity")),
	}

	drive := services.NewDriveService(repos, blobs, sink, logger,
		services.WithCascadeConcurrency(c.CascadeConcurrency))

	return &App{config: c, logger: logger, repos: repos, drive: drive}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startRESTServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewServer(app.config.HTTPAddress, app.logger, app.drive, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or a termination signal arrives, then
// closes the metadata backend.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"metadata_backend", app.config.MetadataBackend, "blob_backend", app.config.BlobBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startRESTServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "closing metadata store", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
