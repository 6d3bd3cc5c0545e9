// Package scheduler roda as atualizações periódicas do catálogo. Os três jobs
// são independentes: nenhum guarda cursor nem depende do resultado do outro.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"catalogsync/internal/cache"
	"catalogsync/internal/catalog"
	"catalogsync/internal/crawler"
	"catalogsync/internal/logger"
	"catalogsync/internal/model"
	"catalogsync/internal/observability"
	"catalogsync/internal/repository"
)

// Runner é o que os jobs usam do crawler.
type Runner interface {
	SyncBrands(ctx context.Context) ([]model.Brand, error)
	SyncBrandsProducts(ctx context.Context, brandIDs []string, handler func(crawler.UnitResult)) error
	RefreshSpecsSample(ctx context.Context, n int, handler func(crawler.UnitResult)) error
}

type Jobs struct {
	runner     Runner
	store      repository.Store
	cache      cache.Cache
	sampleSize int
	log        *zap.Logger
	now        func() time.Time
}

func NewJobs(runner Runner, store repository.Store, c cache.Cache, sampleSize int, log *zap.Logger) *Jobs {
	if sampleSize <= 0 {
		sampleSize = 10
	}
	return &Jobs{
		runner:     runner,
		store:      store,
		cache:      c,
		sampleSize: sampleSize,
		log:        logger.OrNop(log),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Report resume uma execução.
type Report struct {
	RunID     uuid.UUID
	Job       string
	Succeeded int
	Failed    int
}

func (j *Jobs) start(job string) (Report, *zap.Logger) {
	r := Report{RunID: uuid.New(), Job: job}
	return r, j.log.With(zap.String("job", job), zap.String("run_id", r.RunID.String()))
}

func (j *Jobs) finish(r Report, log *zap.Logger, err error) (Report, error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
		log.Error("job falhou", zap.Error(err))
	case r.Failed > 0:
		outcome = "partial"
	}
	observability.JobRuns.WithLabelValues(r.Job, outcome).Inc()
	log.Info("job concluído", zap.Int("succeeded", r.Succeeded), zap.Int("failed", r.Failed))
	return r, err
}

// recordFailure grava a unidade que falhou; erro ao gravar só é logado.
func (j *Jobs) recordFailure(ctx context.Context, r *Report, log *zap.Logger, target string, cause error) {
	r.Failed++
	log.Warn("unidade falhou", zap.String("target", target), zap.Error(cause))
	err := j.store.RecordFailure(ctx, model.SyncFailure{
		ID:         uuid.New(),
		RunID:      r.RunID,
		Job:        r.Job,
		Target:     target,
		Error:      cause.Error(),
		OccurredAt: j.now(),
	})
	if err != nil {
		log.Error("falha ao registrar erro de sincronização", zap.Error(err))
	}
}

func (j *Jobs) RefreshBrands(ctx context.Context) (Report, error) {
	r, log := j.start(model.JobBrands)
	log.Info("atualizando marcas")

	brands, err := j.runner.SyncBrands(ctx)
	if err != nil {
		j.recordFailure(ctx, &r, log, "brands", err)
		return j.finish(r, log, err)
	}
	r.Succeeded = len(brands)
	j.cache.Delete(ctx, catalog.KeyBrands)
	return j.finish(r, log, nil)
}

// RefreshProducts percorre todas as marcas conhecidas, uma por vez.
func (j *Jobs) RefreshProducts(ctx context.Context) (Report, error) {
	r, log := j.start(model.JobProducts)

	brands, err := j.store.ListBrands(ctx)
	if err != nil {
		return j.finish(r, log, err)
	}
	if len(brands) == 0 {
		log.Info("nenhuma marca no repositório, sincronizando marcas antes")
		if brands, err = j.runner.SyncBrands(ctx); err != nil {
			return j.finish(r, log, err)
		}
	}

	ids := make([]string, len(brands))
	for i, b := range brands {
		ids[i] = b.ID
	}
	log.Info("atualizando produtos", zap.Int("brands", len(ids)))

	err = j.runner.SyncBrandsProducts(ctx, ids, func(u crawler.UnitResult) {
		if u.Err != nil {
			j.recordFailure(ctx, &r, log, u.ID, u.Err)
		} else {
			r.Succeeded++
		}
		j.cache.Delete(ctx, catalog.BrandProductsKey(u.ID))
	})
	return j.finish(r, log, err)
}

// RefreshSpecs atualiza as especificações de uma amostra aleatória.
func (j *Jobs) RefreshSpecs(ctx context.Context) (Report, error) {
	r, log := j.start(model.JobSpecs)
	log.Info("atualizando especificações", zap.Int("sample", j.sampleSize))

	err := j.runner.RefreshSpecsSample(ctx, j.sampleSize, func(u crawler.UnitResult) {
		if u.Err != nil {
			j.recordFailure(ctx, &r, log, u.ID, u.Err)
			return
		}
		r.Succeeded++
		j.cache.Delete(ctx, catalog.ProductSpecsKey(u.ID))
	})
	return j.finish(r, log, err)
}
