package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tipster/internal/publisher"
	"tipster/internal/repository"
	"tipster/internal/stats"
)

// ErrExpertNotFound is returned when a recalculation targets an unknown
// expert. It is fatal for that expert only; batch callers log and continue.
var ErrExpertNotFound = errors.New("expert not found")

// EventPublisher is the outbound notification surface. The Redis stream
// implementation lives in internal/publisher.
type EventPublisher interface {
	PublishPositionSettled(ctx context.Context, evt publisher.PositionSettled) error
	PublishExpertStatistics(ctx context.Context, evt publisher.ExpertStatisticsRecalculated) error
}

// StatsService recomputes expert statistics wholesale from position history
// and publishes recalculation events carrying previous/current streak and
// leaderboard rank.
type StatsService struct {
	Repo            repository.Repository
	Publisher       EventPublisher
	Logger          *zap.Logger
	Flags           *SystemSettingsService
	LeaderboardSize int

	mu          sync.Mutex
	expertLocks map[string]*sync.Mutex
}

// Run periodically rebuilds every expert's statistics. The settlement run
// already recalculates affected experts; this loop repairs drift from
// rolling windows aging out and from any missed runs.
func (s *StatsService) Run(ctx context.Context, interval time.Duration) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if err := s.RebuildAll(ctx); err != nil && s.Logger != nil {
			s.Logger.Warn("stats rebuild failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// RebuildAll recalculates statistics for every known expert. A failure for
// one expert never blocks the rest.
func (s *StatsService) RebuildAll(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureStatsRebuild, true) {
		return nil
	}
	ids, err := s.Repo.ListExpertIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.RecalculateExpert(ctx, id); err != nil && s.Logger != nil {
			s.Logger.Warn("expert recalculation failed",
				zap.String("expert_id", id),
				zap.Error(err),
			)
		}
	}
	return nil
}

// RecalculateExpert rebuilds one expert's snapshot from its full position
// history and replaces the stored row. The emitted event carries the streak
// and leaderboard rank both before and after the rebuild.
func (s *StatsService) RecalculateExpert(ctx context.Context, expertID string) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	// Settlement-triggered recalcs and the periodic rebuild are independent
	// cron jobs. Serialize per expert so a staler read-compute-upsert can never
	// overwrite a fresher snapshot.
	lock := s.expertLock(expertID)
	lock.Lock()
	defer lock.Unlock()

	expert, err := s.Repo.GetExpertByID(ctx, expertID)
	if err != nil {
		return err
	}
	if expert == nil {
		return ErrExpertNotFound
	}

	var previousStreak *int
	if prev, err := s.Repo.GetExpertStatistics(ctx, expertID); err == nil && prev != nil {
		streak := prev.CurrentStreak
		previousStreak = &streak
	}
	previousRank := s.rankOf(ctx, expertID)

	history, err := s.Repo.ListPositionsForExpert(ctx, expert.ID, expert.UserID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	snap := stats.Compute(history, now)
	row := snapshotToModel(expertID, snap, now)
	if err := s.Repo.UpsertExpertStatistics(ctx, row); err != nil {
		return err
	}
	currentRank := s.rankOf(ctx, expertID)

	if s.Publisher != nil {
		evt := publisher.ExpertStatisticsRecalculated{
			ID:             uuid.NewString(),
			ExpertID:       expertID,
			PreviousStreak: previousStreak,
			CurrentStreak:  snap.CurrentStreak,
			PreviousRank:   previousRank,
			CurrentRank:    currentRank,
			RecalculatedAt: now,
		}
		if err := s.Publisher.PublishExpertStatistics(ctx, evt); err != nil && s.Logger != nil {
			s.Logger.Warn("publish stats event failed",
				zap.String("expert_id", expertID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *StatsService) expertLock(expertID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expertLocks == nil {
		s.expertLocks = map[string]*sync.Mutex{}
	}
	lock, ok := s.expertLocks[expertID]
	if !ok {
		lock = &sync.Mutex{}
		s.expertLocks[expertID] = lock
	}
	return lock
}

// rankOf returns the expert's 1-based position on the win-rate leaderboard,
// or nil when not ranked.
func (s *StatsService) rankOf(ctx context.Context, expertID string) *int {
	size := s.LeaderboardSize
	if size <= 0 {
		size = 10
	}
	rows, err := s.Repo.ListTopExpertsByWinRate(ctx, size)
	if err != nil {
		return nil
	}
	for i, row := range rows {
		if row.ExpertID == expertID {
			rank := i + 1
			return &rank
		}
	}
	return nil
}
