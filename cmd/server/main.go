// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iyunix/go-darkbin/internal/config"
	"github.com/iyunix/go-darkbin/internal/repository/securitylog"
	"github.com/iyunix/go-darkbin/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config Error: %v", err)
	}
	logger := services.NewLogger("darkbin")

	db, err := OpenDatabase(cfg)
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	app, cleanup, err := buildApplication(cfg, logger, db)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize application: %v", err)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           newRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("server starting",
		"port", cfg.ServerPort,
		"env", cfg.Environment,
		"message_store", cfg.MessageStore,
		"history_limit", cfg.ChatHistoryLimit)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		pruneSecurityLogs(gctx, app.AuditRepo, cfg.AuditRetention, logger)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		return
	}
	logger.Info("server stopped gracefully")
}

// pruneSecurityLogs deletes security log entries older than retention once
// a day until ctx is done.
func pruneSecurityLogs(ctx context.Context, repo *securitylog.GormSecurityLogRepository, retention time.Duration, logger services.Logger) {
	if retention <= 0 {
		return
	}
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		deleted, err := repo.DeleteOlderThan(ctx, time.Now().UTC().Add(-retention))
		if err != nil {
			logger.Warn("security log pruning failed", "error", err)
		} else if deleted > 0 {
			logger.Info("pruned security logs", "deleted", deleted)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
