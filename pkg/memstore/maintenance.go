package memstore

import (
	"context"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Maintenance runs scheduled corpus upkeep: reconcile the index with the
// artifact directory and recompute the symbol census.
type Maintenance struct {
	store    *Store
	cron     *cron.Cron
	logger   zerolog.Logger
	schedule string
}

// NewMaintenance builds a maintenance runner from a standard cron
// expression. It does nothing until Start is called.
func NewMaintenance(store *Store, schedule string, logger zerolog.Logger) (*Maintenance, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, err
	}
	return &Maintenance{
		store:    store,
		cron:     cron.New(),
		logger:   logger.With().Str("component", "maintenance").Logger(),
		schedule: schedule,
	}, nil
}

// Start schedules the maintenance pass and begins running it.
func (m *Maintenance) Start() error {
	_, err := m.cron.AddFunc(m.schedule, m.runOnce)
	if err != nil {
		return err
	}
	m.cron.Start()
	m.logger.Info().Str("schedule", m.schedule).Msg("maintenance scheduled")
	return nil
}

// Stop halts the scheduler and waits for a running pass to finish.
func (m *Maintenance) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

func (m *Maintenance) runOnce() {
	runID, _ := gonanoid.New()
	log := m.logger.With().Str("run_id", runID).Logger()
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := m.store.OptimizeCorpus(ctx)
	if err != nil {
		log.Error().Err(err).Msg("maintenance pass failed")
		return
	}

	log.Info().
		Int("imported", report.Imported).
		Int("pruned", report.Pruned).
		Int("top_patterns", len(report.TopGlobalPatterns)).
		Dur("elapsed", time.Since(start)).
		Msg("maintenance pass complete")
}
