package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"medware/m/internal/stock"
)

// Scheduler runs the periodic alert sweep so expiry and low-stock alerts
// surface even for medicines that never move.
type Scheduler struct {
	cron     *cron.Cron
	engine   *stock.Engine
	schedule string
	log      zerolog.Logger
}

func New(engine *stock.Engine, schedule string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		engine:   engine,
		schedule: schedule,
		log:      log,
	}
}

func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		s.log.Error().Err(err).Str("schedule", s.schedule).Msg("failed to schedule alert sweep")
		return
	}
	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("alert sweep scheduled")
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.engine.SweepAlerts(ctx); err != nil {
		s.log.Error().Err(err).Msg("alert sweep failed")
	}
}
