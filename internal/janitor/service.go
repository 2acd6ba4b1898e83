// Package janitor runs the bot's periodic housekeeping: evicting idle user
// sessions and pruning old ratings.
package janitor

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// SweepInterval is the time between idle session sweeps.
	SweepInterval = 5 * time.Minute

	// PruneInterval is how often to prune old ratings.
	PruneInterval = 24 * time.Hour
)

// SessionEvictor drops sessions that have been idle for longer than maxIdle.
type SessionEvictor interface {
	EvictIdle(maxIdle time.Duration) int
}

// RatingPruner deletes ratings older than a cutoff.
type RatingPruner interface {
	PruneRatings(olderThan time.Duration) (int64, error)
}

// Config controls what the service cleans up. A zero duration disables
// the corresponding task.
type Config struct {
	SessionIdleTimeout time.Duration
	RatingRetention    time.Duration
}

// Service is the background housekeeping service.
type Service struct {
	sessions SessionEvictor
	ratings  RatingPruner
	cfg      Config

	sweepInterval time.Duration
	pruneInterval time.Duration
}

// NewService creates a new janitor. ratings may be nil.
func NewService(sessions SessionEvictor, ratings RatingPruner, cfg Config) *Service {
	return &Service{
		sessions:      sessions,
		ratings:       ratings,
		cfg:           cfg,
		sweepInterval: SweepInterval,
		pruneInterval: PruneInterval,
	}
}

// Run starts the housekeeping loop. It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	log.Info().
		Dur("idleTimeout", s.cfg.SessionIdleTimeout).
		Dur("retention", s.cfg.RatingRetention).
		Msg("starting janitor")

	s.prune()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	pruneTicker := time.NewTicker(s.pruneInterval)
	defer pruneTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("janitor stopped")
			return
		case <-ticker.C:
			s.sweep()
		case <-pruneTicker.C:
			s.prune()
		}
	}
}

// sweep evicts idle sessions.
func (s *Service) sweep() int {
	if s.cfg.SessionIdleTimeout <= 0 || s.sessions == nil {
		return 0
	}
	return s.sessions.EvictIdle(s.cfg.SessionIdleTimeout)
}

// prune removes ratings past the retention period.
func (s *Service) prune() int64 {
	if s.cfg.RatingRetention <= 0 || s.ratings == nil {
		return 0
	}

	deleted, err := s.ratings.PruneRatings(s.cfg.RatingRetention)
	if err != nil {
		log.Error().Err(err).Msg("failed to prune old ratings")
		return 0
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("pruned old ratings")
	}
	return deleted
}
