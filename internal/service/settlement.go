package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tipster/internal/config"
	"tipster/internal/metrics"
	"tipster/internal/models"
	"tipster/internal/publisher"
	"tipster/internal/repository"
	"tipster/internal/settlement"
)

// SettlementService is the batch orchestrator: it discovers recently final
// event outcomes, settles the pending positions tied to them, emits one
// event per settled position and recalculates statistics once per affected
// expert. Only pending positions are ever candidates, which makes a retried
// or overlapping run harmless.
type SettlementService struct {
	Repo       repository.Repository
	Dispatcher *settlement.Dispatcher
	Publisher  EventPublisher
	Stats      *StatsService
	Metrics    *metrics.SettlementMetrics
	Logger     *zap.Logger
	Flags      *SystemSettingsService
	Config     config.SettlementConfig

	mu sync.Mutex
}

type settledPosition struct {
	position models.Position
	outcome  settlement.Outcome
}

func (s *SettlementService) Run(ctx context.Context, interval time.Duration) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if err := s.RunOnce(ctx); err != nil && s.Logger != nil {
			s.Logger.Warn("settlement run failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (s *SettlementService) RunOnce(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureSettlement, true) {
		return nil
	}
	// Concurrent runs racing on the same pending position would be a
	// correctness bug; reject overlap instead of queueing.
	if !s.mu.TryLock() {
		return nil
	}
	defer s.mu.Unlock()

	started := time.Now()
	if s.Metrics != nil {
		s.Metrics.RunsTotal.Inc()
		defer func() {
			s.Metrics.RunDuration.Observe(time.Since(started).Seconds())
		}()
	}

	lookback := s.Config.LookbackHours
	if lookback <= 0 {
		lookback = 48
	}
	batch := s.Config.BatchSize
	if batch <= 0 || batch > 1000 {
		batch = 200
	}
	cutoff := time.Now().UTC().Add(-time.Duration(lookback) * time.Hour)

	settledCount := 0
	offset := 0
	// Experts are collected across every batch and recalculated once per run,
	// even when their positions span multiple outcome pages.
	experts := map[string]struct{}{}
	for {
		outcomes, err := s.Repo.ListFinalOutcomesSince(ctx, cutoff, batch, offset)
		if err != nil {
			return fmt.Errorf("list final outcomes: %w", err)
		}
		if len(outcomes) == 0 {
			break
		}

		n, err := s.settleBatch(ctx, outcomes, experts)
		if err != nil {
			return err
		}
		settledCount += n

		if len(outcomes) < batch {
			break
		}
		offset += batch
	}

	for expertID := range experts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Stats == nil {
			break
		}
		if s.Metrics != nil {
			s.Metrics.StatsRecalcs.Inc()
		}
		if err := s.Stats.RecalculateExpert(ctx, expertID); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("stats recalculation failed",
					zap.String("expert_id", expertID),
					zap.Error(err),
				)
			}
			if s.Metrics != nil {
				s.Metrics.StatsFailures.Inc()
			}
		}
	}

	if settledCount > 0 && s.Logger != nil {
		s.Logger.Info("settlement run complete",
			zap.Int("settled", settledCount),
			zap.Duration("elapsed", time.Since(started)),
		)
	}
	return nil
}

func (s *SettlementService) settleBatch(ctx context.Context, outcomes []models.EventOutcome, experts map[string]struct{}) (int, error) {
	byEvent := make(map[string]models.EventOutcome, len(outcomes))
	eventIDs := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.EventID == "" {
			continue
		}
		byEvent[o.EventID] = o
		eventIDs = append(eventIDs, o.EventID)
	}

	pending, err := s.Repo.ListPendingPositionsByEventIDs(ctx, eventIDs)
	if err != nil {
		return 0, fmt.Errorf("list pending positions: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	classified := make([]settledPosition, 0, len(pending))
	for _, p := range pending {
		// Cooperative cancellation: finish the current position, stop
		// before the next.
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		oc, ok := byEvent[p.EventID]
		if !ok {
			continue
		}
		outcome, err := s.classify(p, oc)
		if err != nil {
			if s.Logger != nil {
				s.Logger.Warn("classification failed, position stays pending",
					zap.String("position_id", p.ID),
					zap.Error(err),
				)
			}
			if s.Metrics != nil {
				s.Metrics.ClassifyFailures.Inc()
			}
			continue
		}
		classified = append(classified, settledPosition{position: p, outcome: outcome})
	}
	if len(classified) == 0 {
		return 0, nil
	}

	// Persist all transitions in one transaction. The pending-only guard in
	// SettlePositionTx makes a raced or retried run a no-op per position.
	now := time.Now().UTC()
	applied := make([]settledPosition, 0, len(classified))
	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		for _, sp := range classified {
			rows, err := s.Repo.SettlePositionTx(ctx, tx, sp.position.ID, string(sp.outcome), string(sp.outcome), now)
			if err != nil {
				return fmt.Errorf("settle position %s: %w", sp.position.ID, err)
			}
			if rows == 0 {
				continue
			}
			applied = append(applied, sp)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, sp := range applied {
		if s.Metrics != nil {
			s.Metrics.PositionsSettled.WithLabelValues(string(sp.outcome)).Inc()
		}
		expertID := s.resolveExpertID(ctx, sp.position)
		s.emitPositionSettled(ctx, sp, expertID, now)
		if expertID != nil {
			experts[*expertID] = struct{}{}
		}
	}
	return len(applied), nil
}

// classify runs the parse/dispatch/determine pipeline for one position. A
// panic inside the pipeline is converted to an error and the position stays
// pending.
func (s *SettlementService) classify(p models.Position, oc models.EventOutcome) (outcome settlement.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classify panic: %v", r)
		}
	}()
	result := settlement.Parse(oc)
	strategy := s.Dispatcher.ForMarket(p.Market)
	return strategy.Determine(p.Selection, result), nil
}

// resolveExpertID maps a position's creator to an expert: expert creators
// directly, user creators via the user→expert lookup. Nil means the
// position does not feed any expert's statistics.
func (s *SettlementService) resolveExpertID(ctx context.Context, p models.Position) *string {
	switch p.CreatorType {
	case models.CreatorTypeExpert:
		id := p.CreatorID
		return &id
	case models.CreatorTypeUser:
		expert, err := s.Repo.GetExpertByUserID(ctx, p.CreatorID)
		if err != nil || expert == nil {
			return nil
		}
		id := expert.ID
		return &id
	}
	return nil
}

func (s *SettlementService) emitPositionSettled(ctx context.Context, sp settledPosition, expertID *string, settledAt time.Time) {
	if s.Publisher == nil {
		return
	}
	evt := publisher.PositionSettled{
		ID:          uuid.NewString(),
		PositionID:  sp.position.ID,
		CreatorID:   sp.position.CreatorID,
		CreatorType: sp.position.CreatorType,
		ExpertID:    expertID,
		EventID:     sp.position.EventID,
		Outcome:     string(sp.outcome),
		Odds:        sp.position.Odds,
		Market:      sp.position.Market,
		Selection:   sp.position.Selection,
		SettledAt:   settledAt,
	}
	if err := s.Publisher.PublishPositionSettled(ctx, evt); err != nil {
		if s.Logger != nil {
			s.Logger.Warn("publish settlement event failed",
				zap.String("position_id", sp.position.ID),
				zap.Error(err),
			)
		}
		if s.Metrics != nil {
			s.Metrics.PublishFailures.Inc()
		}
	}
}
