// Package app monta as dependências compartilhadas pelos binários.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"catalogsync/internal/cache"
	"catalogsync/internal/catalog"
	"catalogsync/internal/config"
	"catalogsync/internal/crawler"
	"catalogsync/internal/db"
	"catalogsync/internal/logger"
	"catalogsync/internal/reconcile"
	"catalogsync/internal/repository"
	"catalogsync/internal/scheduler"
)

type App struct {
	Store   repository.Store
	Cache   *cache.Tiered
	Crawler *crawler.Crawler
	Catalog *catalog.Service
	Jobs    *scheduler.Jobs

	closers []func()
}

// Build conecta Postgres e Redis quando configurados. Sem DATABASE_URL o
// repositório fica em memória; sem REDIS_URL os três tiers também.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	log = logger.OrNop(log)
	a := &App{}

	store, err := a.openStore(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store

	backends, err := a.openCacheBackends(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Cache = cache.New(cache.PolicyFromConfig(cfg.Cache), backends, log)
	a.closers = append(a.closers, a.Cache.Close)

	src := cfg.Source
	fetcher, err := crawler.NewFetcher(crawler.FetcherOptions{
		ProxyURL:    src.ProxyURL,
		Timeout:     src.Timeout,
		MaxAttempts: src.MaxAttempts,
		BaseDelay:   src.FetchDelay,
		RetryDelay:  src.RetryDelay,
		Logger:      log,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	var logos crawler.LogoResolver
	if src.LogoAPIKey != "" {
		logos = crawler.NewLogoClient(src.LogoBaseURL, src.LogoAPIKey, 5*time.Second, log)
	}

	a.Crawler = crawler.New(fetcher, store, reconcile.New(store, log), crawler.Options{
		BaseURL:    src.BaseURL,
		PageDelay:  src.PageDelay,
		SpecDelay:  src.SpecDelay,
		BrandDelay: src.BrandDelay,
		MaxPages:   src.MaxPages,
		Logos:      logos,
		Logger:     log,
	})
	a.Catalog = catalog.NewService(store, a.Cache, a.Crawler, log)
	a.Jobs = scheduler.NewJobs(a.Crawler, store, a.Cache, src.SampleSize, log)
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL não definido, usando repositório em memória")
		return repository.NewMemoryStore(), nil
	}

	conn, err := db.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	err = db.Migrate(ctx, conn)
	_ = conn.Close()
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, 10)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	log.Info("postgres conectado")
	return repository.NewPostgresStore(pool), nil
}

func (a *App) openCacheBackends(ctx context.Context, cfg *config.Config, log *zap.Logger) (map[cache.Tier]cache.Backend, error) {
	if cfg.RedisURL == "" {
		backends := map[cache.Tier]cache.Backend{}
		for _, t := range []cache.Tier{cache.TierShort, cache.TierMedium, cache.TierLong} {
			m := cache.NewMemoryBackend()
			m.StartJanitor(time.Minute)
			backends[t] = m
		}
		return backends, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	log.Info("redis conectado")
	return redisBackends(client), nil
}

func redisBackends(client *redis.Client) map[cache.Tier]cache.Backend {
	return map[cache.Tier]cache.Backend{
		cache.TierShort:  cache.NewRedisBackend(client, cache.TierShort),
		cache.TierMedium: cache.NewRedisBackend(client, cache.TierMedium),
		cache.TierLong:   cache.NewRedisBackend(client, cache.TierLong),
	}
}

// Close libera conexões na ordem inversa da abertura.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
