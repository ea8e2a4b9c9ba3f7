package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gopalraj000/excelfusion/internal/config"
	"github.com/gopalraj000/excelfusion/internal/logging"
	"github.com/gopalraj000/excelfusion/internal/merger"
	"github.com/gopalraj000/excelfusion/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.LoadServer()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cleanup := logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.SeqURL)
	defer cleanup()

	slog.Info("configuration loaded",
		"addr", cfg.HTTP.Addr(),
		"upload_max_bytes", cfg.Upload.MaxBytes,
		"upload_max_files", cfg.Upload.MaxFiles,
		"preview_rows", cfg.Upload.PreviewRows,
		"seq", cfg.Logging.SeqURL != "",
	)

	server := web.NewServer(cfg, merger.NewSequentialMerger(slog.Default()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		cleanup()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
