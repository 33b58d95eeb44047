package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// IdleReaper закрывает заброшенные черновики
type IdleReaper interface {
	ReapIdle(ctx context.Context, ttl time.Duration) int
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	reaper   IdleReaper
	ttl      time.Duration
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	done     chan struct{}
}

// NewScheduler создаёт новый планировщик.
// Проверка выполняется с периодом в четверть ttl, но не реже раза в минуту.
func NewScheduler(reaper IdleReaper, ttl time.Duration, logger *zap.Logger) *Scheduler {
	interval := ttl / 4
	if interval <= 0 || interval > time.Minute {
		interval = time.Minute
	}

	return &Scheduler{
		reaper:   reaper,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler",
		zap.Duration("draft_ttl", s.ttl),
		zap.Duration("interval", s.interval))

	go s.runReapTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
	<-s.done
}

// runReapTask периодически закрывает черновики, простаивающие дольше ttl
func (s *Scheduler) runReapTask(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reap(ctx)
		case <-s.stopChan:
			s.logger.Info("Draft reaper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Draft reaper cancelled")
			return
		}
	}
}

func (s *Scheduler) reap(ctx context.Context) {
	if n := s.reaper.ReapIdle(ctx, s.ttl); n > 0 {
		s.logger.Info("Idle drafts closed", zap.Int("count", n))
	}
}
