package devserver

import (
	"time"

	"github.com/CRTOsp3ck/mwce/internal/clock"

	"github.com/rs/zerolog"
)

// Scheduler drives the periodic world jobs.
type Scheduler struct {
	income  *clock.Interval
	refresh *clock.Interval
}

func NewScheduler(w *World, clk clock.Clock, incomeEvery time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		income: clock.NewInterval(clk, incomeEvery, func() {
			n := w.GenerateIncome()
			log.Debug().Int("players", n).Msg("income generated")
		}),
		refresh: clock.NewInterval(clk, operationsRefreshInterval, func() {
			p := w.RefreshOperations()
			log.Info().Int("operations", len(p.Operations)).Str("next", p.RefreshInfo.NextRefreshTime).Msg("operations refreshed")
		}),
	}
}

func (s *Scheduler) Start() {
	s.income.Start()
	s.refresh.Start()
}

func (s *Scheduler) Stop() {
	s.income.Stop()
	s.refresh.Stop()
}
