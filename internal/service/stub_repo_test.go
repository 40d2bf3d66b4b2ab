package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"tipster/internal/models"
	"tipster/internal/publisher"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
type stubRepo struct {
	outcomes  map[string]models.EventOutcome
	positions map[string]*models.Position
	experts   map[string]models.Expert
	stats     map[string]models.ExpertStatistics
	settings  map[string]models.SystemSetting

	settleErr error

	// Optional hooks for interleaving control in concurrency tests.
	pendingHook         func()
	expertPositionsHook func(expertID string)
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		outcomes:  map[string]models.EventOutcome{},
		positions: map[string]*models.Position{},
		experts:   map[string]models.Expert{},
		stats:     map[string]models.ExpertStatistics{},
		settings:  map[string]models.SystemSetting{},
	}
}

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (s *stubRepo) ListFinalOutcomesSince(ctx context.Context, since time.Time, limit, offset int) ([]models.EventOutcome, error) {
	var out []models.EventOutcome
	for _, o := range s.outcomes {
		if o.Status != models.EventStatusCompleted && o.Status != models.EventStatusCancelled {
			continue
		}
		if o.SettledAt.Before(since) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SettledAt.Before(out[j].SettledAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubRepo) ListPendingPositionsByEventIDs(ctx context.Context, eventIDs []string) ([]models.Position, error) {
	if s.pendingHook != nil {
		s.pendingHook()
	}
	ids := map[string]struct{}{}
	for _, id := range eventIDs {
		ids[id] = struct{}{}
	}
	var out []models.Position
	for _, p := range s.positions {
		if p.Status != models.PositionStatusPending {
			continue
		}
		if _, ok := ids[p.EventID]; !ok {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *stubRepo) SettlePositionTx(ctx context.Context, tx *gorm.DB, id, status, outcome string, settledAt time.Time) (int64, error) {
	if s.settleErr != nil {
		return 0, s.settleErr
	}
	p, ok := s.positions[id]
	if !ok || p.Status != models.PositionStatusPending {
		return 0, nil
	}
	p.Status = status
	p.Outcome = &outcome
	p.SettledAt = &settledAt
	return 1, nil
}

func (s *stubRepo) ListPositionsForExpert(ctx context.Context, expertID, userID string) ([]models.Position, error) {
	if s.expertPositionsHook != nil {
		s.expertPositionsHook(expertID)
	}
	var out []models.Position
	for _, p := range s.positions {
		if (p.CreatorType == models.CreatorTypeExpert && p.CreatorID == expertID) ||
			(p.CreatorType == models.CreatorTypeUser && p.CreatorID == userID) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *stubRepo) GetExpertByID(ctx context.Context, id string) (*models.Expert, error) {
	if e, ok := s.experts[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (s *stubRepo) GetExpertByUserID(ctx context.Context, userID string) (*models.Expert, error) {
	for _, e := range s.experts {
		if e.UserID == userID {
			cp := e
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListExpertIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range s.experts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *stubRepo) UpsertExpertStatistics(ctx context.Context, item *models.ExpertStatistics) error {
	s.stats[item.ExpertID] = *item
	return nil
}

func (s *stubRepo) GetExpertStatistics(ctx context.Context, expertID string) (*models.ExpertStatistics, error) {
	if row, ok := s.stats[expertID]; ok {
		return &row, nil
	}
	return nil, nil
}

func (s *stubRepo) ListTopExpertsByWinRate(ctx context.Context, limit int) ([]models.ExpertStatistics, error) {
	var out []models.ExpertStatistics
	for _, row := range s.stats {
		if row.WonPositions+row.LostPositions == 0 {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WinRate.Equal(out[j].WinRate) {
			return out[i].WinRate.GreaterThan(out[j].WinRate)
		}
		return out[i].TotalPositions > out[j].TotalPositions
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubRepo) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	s.settings[item.Key] = *item
	return nil
}

func (s *stubRepo) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	if item, ok := s.settings[key]; ok {
		return &item, nil
	}
	return nil, nil
}

// stubPublisher records every emitted event.
type stubPublisher struct {
	settled []publisher.PositionSettled
	stats   []publisher.ExpertStatisticsRecalculated
}

func (p *stubPublisher) PublishPositionSettled(ctx context.Context, evt publisher.PositionSettled) error {
	p.settled = append(p.settled, evt)
	return nil
}

func (p *stubPublisher) PublishExpertStatistics(ctx context.Context, evt publisher.ExpertStatisticsRecalculated) error {
	p.stats = append(p.stats, evt)
	return nil
}
