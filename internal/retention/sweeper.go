// Package retention enforces the published 30-day data-retention promise:
// events, together with their rosters, are deleted once their date is far
// enough in the past.
package retention

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ExpiredDeleter is the slice of the store the sweeper needs.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically deletes events past the retention window.
type Sweeper struct {
	store     ExpiredDeleter
	interval  time.Duration
	retention time.Duration
	log       zerolog.Logger
}

// New builds a sweeper deleting events whose date is more than retentionDays
// in the past, checking every interval.
func New(store ExpiredDeleter, interval time.Duration, retentionDays int, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		store:     store,
		interval:  interval,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		log:       log.With().Str("component", "retention").Logger(),
	}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.SweepOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce deletes everything past the retention window. Failures are
// logged and retried on the next tick; a missed sweep only delays deletion.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)
	deleted, err := s.store.DeleteExpired(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("retention sweep failed")
		return
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("expired events removed")
	}
}
