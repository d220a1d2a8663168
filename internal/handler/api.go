package handler

import (
	"github.com/contentgallery/internal/service"
	"github.com/contentgallery/internal/testapp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	galleries *service.GalleryService
	cats      *testapp.CatService
	logger    *zap.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, galleries *service.GalleryService, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		db:        gdb,
		galleries: galleries,
		cats:      testapp.NewCatService(gdb, galleries),
		logger:    logger,
	}
}
