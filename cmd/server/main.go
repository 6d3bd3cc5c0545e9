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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"catalogsync/internal/api"
	"catalogsync/internal/app"
	"catalogsync/internal/config"
	"catalogsync/internal/logger"
	"catalogsync/internal/observability"
	"catalogsync/internal/scheduler"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.AppEnv, cfg.Logger)
	if err != nil {
		log.Fatalf("Erro ao criar logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("erro ao iniciar dependências", zap.Error(err))
	}
	defer a.Close()

	observability.Start(cfg.MetricsPort)
	zl.Info("métricas expostas", zap.String("port", cfg.MetricsPort))

	production := cfg.AppEnv == "production"
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(api.NewHandler(a.Catalog, a.Cache, zl, production)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Scheduler {
		sched, err := scheduler.New(ctx, a.Jobs, cfg.Schedule, zl)
		if err != nil {
			zl.Fatal("agendamento inválido", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zl.Info("servidor rodando", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zl.Error("servidor encerrado com erro", zap.Error(err))
		return
	}
	zl.Info("servidor encerrado")
}
