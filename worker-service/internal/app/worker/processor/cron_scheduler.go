package processor

import (
	"context"

	"berrymarket/pkg/logger"

	"github.com/robfig/cron/v3"
)

// PurgeRunner выполняет очистку мягко удаленных строк
type PurgeRunner interface {
	PurgeSoftDeleted(ctx context.Context) error
}

// CronScheduler запускает периодическую очистку мягко удаленных строк
type CronScheduler struct {
	cron     *cron.Cron
	purgeSvc PurgeRunner
}

func NewCronScheduler(purgeSvc PurgeRunner) *CronScheduler {
	return &CronScheduler{
		cron:     cron.New(),
		purgeSvc: purgeSvc,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.runPurge(ctx)
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Msg("Cron scheduler started")

	return nil
}

// runPurge выполняет одну итерацию очистки, ошибка логируется
// и не останавливает расписание
func (s *CronScheduler) runPurge(ctx context.Context) {
	logger.Info().Msg("Cron job triggered: purging soft-deleted rows")

	if err := s.purgeSvc.PurgeSoftDeleted(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to purge soft-deleted rows")
	}
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
