package main

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

	"github.com/gin-gonic/gin"

	"lcutils/internal/app"
	"lcutils/internal/config"
	"lcutils/internal/handler"
	"lcutils/internal/router"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Log)
	slog.SetDefault(logger)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg, logger, nil)
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing clients", "error", err)
		}
	}()

	// Initialize adapters and services
	creds, err := a.Credentials(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize signing credentials: %w", err)
	}
	urlSigner, err := a.URLSigner(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize url signer: %w", err)
	}
	blobSvc, err := a.BlobService(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	assetSvc, err := a.AssetService(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize asset catalog: %w", err)
	}
	authSvc := a.AuthService()

	// Setup router
	r := router.Setup(authSvc, router.Handlers{
		Health:    handler.NewHealthHandler(creds),
		SignedURL: handler.NewSignedURLHandler(urlSigner),
		Blob:      handler.NewBlobHandler(blobSvc),
		Asset:     handler.NewAssetHandler(assetSvc),
	}, cfg.CORS.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"addr", cfg.Server.Port,
			"storage", cfg.Storage.Provider,
			"signing", cfg.Signing.Mode)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
