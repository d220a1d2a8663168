// Command prune deletes gallery images whose owner record no longer exists.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/contentgallery/internal/app"
	"github.com/contentgallery/internal/config"
	"github.com/contentgallery/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	pruned, err := application.Galleries.PruneOrphans(ctx)
	if err != nil {
		logger.Fatal("failed to prune orphaned images", zap.Error(err), zap.Int("pruned", pruned))
	}
	logger.Info("prune finished", zap.Int("pruned", pruned))
}
