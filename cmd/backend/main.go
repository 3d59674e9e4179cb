package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	configloader "github.com/foxseedlab/callinterview/external/config"
	transcriberimpl "github.com/foxseedlab/callinterview/external/transcriber"
	"github.com/foxseedlab/callinterview/internal/bootstrap"
	"github.com/foxseedlab/callinterview/internal/callock"
	"github.com/foxseedlab/callinterview/internal/config"
	"github.com/foxseedlab/callinterview/internal/httpapi"
	"github.com/foxseedlab/callinterview/internal/interview"
	"github.com/foxseedlab/callinterview/internal/repository"
	"github.com/foxseedlab/callinterview/internal/sweeper"
	"github.com/samber/do/v2"
)

const shutdownTimeout = 30 * time.Second

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	bootstrap.InitLogger(cfg, os.Stdout)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "store", cfg.StoreDriver, "questions", len(cfg.Questions))

	slog.Info("startup: building dependency graph")
	injector := bootstrap.NewInjector(cfg)

	slog.Info("startup: starting http server")
	run(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func run(cfg *config.Config, injector do.Injector) {
	server, err := do.Invoke[*httpapi.Server](injector)
	if err != nil {
		slog.Error("failed to resolve http server", "error", err)
		os.Exit(1)
	}
	scheduler, err := do.Invoke[*sweeper.Scheduler](injector)
	if err != nil {
		slog.Error("failed to resolve transcript sweeper", "error", err)
		os.Exit(1)
	}
	engine := do.MustInvoke[*interview.Engine](injector)
	repo := do.MustInvoke[repository.Repository](injector)
	locker := do.MustInvoke[callock.Locker](injector)

	httpServer := server.HTTPServer(cfg.ListenAddr)
	done := make(chan struct{})
	go func() {
		slog.Info("http server listening", "addr", cfg.ListenAddr, "public_base_url", cfg.PublicBaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
		}
		close(done)
	}()
	scheduler.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case <-done:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown failed", "error", err)
	}
	scheduler.Stop(ctx)

	waited := make(chan struct{})
	go func() {
		engine.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-ctx.Done():
		slog.Warn("transcript follow-ups still running at shutdown")
	}

	if cfg.SpeechFallbackEnabled() {
		if recognizer, err := do.Invoke[*transcriberimpl.CloudSpeechRecognizer](injector); err == nil {
			if err := recognizer.Close(); err != nil {
				slog.Error("speech client close failed", "error", err)
			}
		}
	}
	if closer, ok := locker.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			slog.Error("call lock close failed", "error", err)
		}
	}
	if err := repo.Close(); err != nil {
		slog.Error("repository close failed", "error", err)
	}
	slog.Info("shutdown complete")
}
