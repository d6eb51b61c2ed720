package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/librarease/assetcatalog/internal/config"
	"github.com/librarease/assetcatalog/internal/database"
	"github.com/librarease/assetcatalog/internal/filestorage"
	"github.com/librarease/assetcatalog/internal/telemetry"
	"github.com/librarease/assetcatalog/internal/usecase"
)

// Service is everything the HTTP layer needs from the catalog.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	// Close terminates the database connection.
	Close() error

	GetUploadTicket(ctx context.Context, filename, contentType string) (usecase.UploadTicket, error)
	GetDownloadURL(ctx context.Context, key string) (usecase.PresignedURL, error)

	ListAssets(context.Context, usecase.ListAssetsOption) ([]usecase.Asset, error)
	GetAssetByID(context.Context, uuid.UUID) (usecase.Asset, error)
	CreateAsset(context.Context, usecase.Asset, []string) (usecase.Asset, error)
	UpdateAsset(context.Context, uuid.UUID, usecase.UpdateAssetRequest) (usecase.Asset, error)
	DeleteAsset(context.Context, uuid.UUID) error

	ListTags(context.Context) ([]usecase.Tag, error)
	GetTagByID(context.Context, uuid.UUID) (usecase.Tag, error)
	CreateTag(context.Context, string) (usecase.Tag, bool, error)
	RenameTag(context.Context, uuid.UUID, string) (usecase.Tag, error)
	DeleteTag(context.Context, uuid.UUID) error
}

type Server struct {
	port int

	server    Service
	validator *validator.Validate
	logger    *slog.Logger

	isProduction bool
	// Requests per second per client on /api/uploads, 0 disables the limit.
	presignRateLimit float64
}

func NewServer(cfg config.Config, sv Service, l *slog.Logger) *Server {
	return &Server{
		port:             cfg.Port,
		server:           sv,
		validator:        newValidator(),
		logger:           l,
		isProduction:     cfg.IsProduction(),
		presignRateLimit: cfg.PresignRateLimit,
	}
}

// newValidator registers storage_key so request tags follow the same key
// limit the usecase enforces.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterAlias("storage_key", fmt.Sprintf("max=%d", usecase.MaxStorageKeyLength))
	return v
}

// App owns the HTTP server and everything that has to be torn down with it.
type App struct {
	httpServer *http.Server
	service    Service
	logger     *slog.Logger
	shutdownFn telemetry.ShutdownFunc
}

// NewApp reads the configuration and wires config, telemetry, database,
// storage provider and usecase into a ready to serve App.
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.New(telemetry.NewTraceHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: telemetry.ParseLevel(cfg.LogLevel),
	})))
	slog.SetDefault(logger)

	ctx := context.Background()
	shutdownFn, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}

	gormDB, err := database.Open(cfg.Database, logger, cfg.LogLevel)
	if err != nil {
		return nil, errors.Join(err, shutdownFn(ctx))
	}
	repo, err := database.New(gormDB)
	if err != nil {
		return nil, errors.Join(err, shutdownFn(ctx))
	}

	fsp, err := newFileStorageProvider(ctx, cfg.Storage)
	if err != nil {
		return nil, errors.Join(err, repo.Close(), shutdownFn(ctx))
	}

	sv := usecase.New(repo, fsp, usecase.Options{
		KeyPrefix:   cfg.Storage.KeyPrefix,
		UploadTTL:   cfg.Storage.UploadTTL,
		DownloadTTL: cfg.Storage.DownloadTTL,
	})

	s := NewServer(cfg, sv, logger)

	return &App{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", s.port),
			Handler:      s.RegisterRoutes(),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		service:    sv,
		logger:     logger,
		shutdownFn: shutdownFn,
	}, nil
}

func newFileStorageProvider(ctx context.Context, cfg config.Storage) (usecase.FileStorageProvider, error) {
	switch cfg.Driver {
	case config.STORAGE_DRIVER_MINIO:
		return filestorage.NewMinIOStorage(
			cfg.MinIOEndpoint,
			cfg.MinIOAccessKey,
			cfg.MinIOSecretKey,
			cfg.MinIOUseSSL,
			cfg.Bucket,
			cfg.Region,
			cfg.PublicBase,
		)
	default:
		return filestorage.New(ctx, cfg.Bucket, cfg.Region, cfg.PublicBase)
	}
}

func (a *App) Addr() string {
	return a.httpServer.Addr
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not
// reported as an error.
func (a *App) ListenAndServe() error {
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	return errors.Join(
		a.httpServer.Shutdown(ctx),
		a.service.Close(),
		a.shutdownFn(ctx),
	)
}
