package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contentgallery/internal/app"
	"github.com/contentgallery/internal/config"
	"github.com/contentgallery/internal/db"
	"github.com/contentgallery/internal/handler"
	"github.com/contentgallery/internal/logging"
	"github.com/contentgallery/internal/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.LogLevel, cfg.GinMode == gin.DebugMode)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据库、存储与图集服务
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	created, err := db.EnsureUser(application.DB, cfg.SuperRootUserName, cfg.SuperRootPassword)
	if err != nil {
		logger.Fatal("failed to ensure admin user", zap.Error(err))
	}
	if created {
		logger.Info("admin user created", zap.String("username", cfg.SuperRootUserName))
	}

	opts := router.Options{
		SessionSecret:  cfg.SessionSecret,
		UploadURLPath:  cfg.UploadURLPath,
		MaxUploadBytes: cfg.UploadMaxBytes,
		Logger:         logger,
	}
	if application.ServesUploads() {
		opts.UploadDir = cfg.UploadDir
	}
	api := handler.NewAPI(application.DB, application.Galleries, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(api, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", zap.String("addr", cfg.ListenAddr), zap.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}
