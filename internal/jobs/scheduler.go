package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler запускает периодические задачи по cron расписанию
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	logger  *logrus.Logger
}

// New создает планировщик; timeout ограничивает время одного запуска задачи
func New(timeout time.Duration, logger *logrus.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.PrintfLogger(logger)),
			cron.SkipIfStillRunning(cron.PrintfLogger(logger)),
		)),
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
		logger:  logger,
	}
}

// AddJob регистрирует задачу по стандартному cron выражению
func (s *Scheduler) AddJob(name, spec string, job func(ctx context.Context)) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()

		start := time.Now()
		job(ctx)
		s.logger.Debugf("Job %s finished in %v", name, time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.logger.Infof("Job %s scheduled: %s", name, spec)
	return nil
}

// Len количество зарегистрированных задач
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start запускает планировщик в фоне
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop останавливает планировщик и ждет завершения запущенных задач
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}
