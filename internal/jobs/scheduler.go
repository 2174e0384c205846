package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"clipstream/api/internal/uploads"
)

// Scheduler sweeps staging files abandoned by interrupted requests. Upload
// handlers clean up after themselves; this catches process crashes and
// clients that vanished mid-transfer.
type Scheduler struct {
	cron   *cron.Cron
	stager *uploads.Stager
	maxAge time.Duration
	log    zerolog.Logger
}

func NewScheduler(stager *uploads.Stager, maxAge time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		stager: stager,
		maxAge: maxAge,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 30m", s.sweepStaging); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) sweepStaging() {
	removed, err := s.stager.SweepOlderThan(s.maxAge)
	if err != nil {
		s.log.Error().Err(err).Msg("staging sweep failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("swept stale staging files")
	}
}
