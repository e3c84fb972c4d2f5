package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-article-discovery/api"
)

const (
	maxRequestBytes = 1 << 20
	shutdownTimeout = 10 * time.Second
)

var (
	flagListen string
	flagWatch  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "address to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&flagWatch, "watch", false, "reload when the content directory changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	if flagListen != "" {
		settings.Listen = flagListen
	}
	if flagWatch {
		if settings.Content.Dir == "" {
			return fmt.Errorf("--watch requires a content directory")
		}
		settings.Content.Watch = true
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			logger.Warn("failed to close engine", zap.Error(err))
		}
	}()

	if err := eng.Load(ctx); err != nil {
		return fmt.Errorf("loading content: %w", err)
	}
	if err := eng.Start(ctx); err != nil {
		return err
	}

	if !settings.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestIDMiddleware())
	router.Use(api.LoggerMiddleware(logger.Named("http")))
	router.Use(api.CORSMiddleware())
	router.Use(api.RequestSizeLimitMiddleware(maxRequestBytes))
	api.SetupRoutes(router, eng, logger.Named("api"))

	server := &http.Server{
		Addr:              settings.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", settings.Listen),
			zap.String("list_path", settings.Discovery.ListPath),
			zap.Int("articles", eng.Catalog().Len()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
