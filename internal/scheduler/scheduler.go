package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"catalogsync/internal/config"
	"catalogsync/internal/logger"
)

// Scheduler liga os jobs às expressões cron. Uma execução que ainda não
// terminou faz a próxima do mesmo job ser pulada.
type Scheduler struct {
	cron *cron.Cron
	jobs *Jobs
	ctx  context.Context
	log  *zap.Logger
}

type zapCronLogger struct{ log *zap.Logger }

func (l zapCronLogger) Info(msg string, kv ...any) {
	l.log.Debug(msg, zap.Any("details", kv))
}

func (l zapCronLogger) Error(err error, msg string, kv ...any) {
	l.log.Error(msg, zap.Error(err), zap.Any("details", kv))
}

// New registra os três jobs. ctx é o contexto de vida do processo: cancelado,
// as execuções em andamento param no próximo atraso.
func New(ctx context.Context, jobs *Jobs, sched config.ScheduleConfig, log *zap.Logger) (*Scheduler, error) {
	log = logger.OrNop(log)
	cl := zapCronLogger{log: log}
	s := &Scheduler{
		cron: cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		jobs: jobs,
		ctx:  ctx,
		log:  log,
	}

	entries := []struct {
		name string
		spec string
		run  func(context.Context) (Report, error)
	}{
		{"brands", sched.Brands, jobs.RefreshBrands},
		{"products", sched.Products, jobs.RefreshProducts},
		{"specs", sched.Specs, jobs.RefreshSpecs},
	}
	for _, e := range entries {
		if e.spec == "" {
			continue
		}
		run := e.run
		if _, err := s.cron.AddFunc(e.spec, func() { _, _ = run(s.ctx) }); err != nil {
			return nil, fmt.Errorf("schedule %s (%q): %w", e.name, e.spec, err)
		}
		log.Info("job agendado", zap.String("job", e.name), zap.String("schedule", e.spec))
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler iniciado")
}

// Stop impede novas execuções e espera as que estão rodando.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler parado")
}
