// Package app wires configuration, storage, the owner registry and services together.
package app

import (
	"context"
	"fmt"

	"github.com/contentgallery/internal/config"
	"github.com/contentgallery/internal/db"
	"github.com/contentgallery/internal/gallery"
	"github.com/contentgallery/internal/service"
	"github.com/contentgallery/internal/storage"
	"github.com/contentgallery/internal/testapp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// App holds the long-lived dependencies shared by the binaries.
type App struct {
	Config    config.AppConfig
	DB        *gorm.DB
	Registry  *gallery.Registry
	Storage   storage.Storage
	Galleries *service.GalleryService
	Logger    *zap.Logger
}

// New opens the database, migrates it, registers the owner types and builds the services.
func New(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.Init(cfg.DatabaseDriver, cfg.DatabaseDSN); err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	gdb := db.DB

	if err := testapp.Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate testapp: %w", err)
	}

	registry := gallery.NewRegistry()
	testapp.Register(registry, gdb)
	if err := registry.Sync(ctx, gdb); err != nil {
		return nil, fmt.Errorf("sync content types: %w", err)
	}
	// 管理员账号也有内容类型，但不能拥有图集
	if _, err := db.EnsureContentType(gdb.WithContext(ctx), "auth", "user"); err != nil {
		return nil, fmt.Errorf("sync content types: %w", err)
	}

	store, err := NewStorage(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:    cfg,
		DB:        gdb,
		Registry:  registry,
		Storage:   store,
		Galleries: service.NewGalleryService(gdb, registry, store, logger, cfg.UploadMaxBytes),
		Logger:    logger,
	}, nil
}

// NewStorage selects the payload backend from cfg.
func NewStorage(cfg config.AppConfig) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case "", StorageLocal:
		return storage.NewLocal(cfg.UploadDir, cfg.UploadURLPath)
	case StorageS3:
		if cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required for the s3 storage backend")
		}
		return storage.NewS3(cfg.S3), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

// ServesUploads reports whether the HTTP server should serve the upload directory itself.
func (a *App) ServesUploads() bool {
	_, ok := a.Storage.(*storage.Local)
	return ok
}

// Close releases the storage client and the database connection.
func (a *App) Close() error {
	if closer, ok := a.Storage.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.Logger.Warn("failed to close storage", zap.Error(err))
		}
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
