package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tipster/internal/models"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Event outcomes ---------------------------------------------------------

func (s *Store) ListFinalOutcomesSince(ctx context.Context, since time.Time, limit, offset int) ([]models.EventOutcome, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.EventOutcome
	err := s.db.WithContext(ctx).
		Model(&models.EventOutcome{}).
		Where("status IN ?", []string{models.EventStatusCompleted, models.EventStatusCancelled}).
		Where("settled_at >= ?", since).
		Order("settled_at asc").
		Limit(normalizeLimit(limit, 200)).
		Offset(normalizeOffset(offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Positions --------------------------------------------------------------

func (s *Store) ListPendingPositionsByEventIDs(ctx context.Context, eventIDs []string) ([]models.Position, error) {
	if s == nil || s.db == nil || len(eventIDs) == 0 {
		return nil, nil
	}
	var items []models.Position
	err := s.db.WithContext(ctx).
		Model(&models.Position{}).
		Where("status = ?", models.PositionStatusPending).
		Where("event_id IN ?", eventIDs).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) SettlePositionTx(ctx context.Context, tx *gorm.DB, id, status, outcome string, settledAt time.Time) (int64, error) {
	db := tx
	if db == nil {
		if s == nil || s.db == nil {
			return 0, nil
		}
		db = s.db
	}
	res := db.WithContext(ctx).
		Model(&models.Position{}).
		Where("id = ?", id).
		Where("status = ?", models.PositionStatusPending).
		Updates(map[string]any{
			"status":     status,
			"outcome":    outcome,
			"settled_at": settledAt,
			"updated_at": settledAt,
		})
	return res.RowsAffected, res.Error
}

func (s *Store) ListPositionsForExpert(ctx context.Context, expertID, userID string) ([]models.Position, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Position
	err := s.db.WithContext(ctx).
		Model(&models.Position{}).
		Where(
			s.db.Where("creator_type = ? AND creator_id = ?", models.CreatorTypeExpert, expertID).
				Or("creator_type = ? AND creator_id = ?", models.CreatorTypeUser, userID),
		).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Experts ----------------------------------------------------------------

func (s *Store) GetExpertByID(ctx context.Context, id string) (*models.Expert, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Expert
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetExpertByUserID(ctx context.Context, userID string) (*models.Expert, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Expert
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListExpertIDs(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.Expert{}).
		Order("created_at asc").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// --- Statistics -------------------------------------------------------------

func (s *Store) UpsertExpertStatistics(ctx context.Context, item *models.ExpertStatistics) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.ExpertID) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "expert_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_positions",
			"won_positions",
			"lost_positions",
			"void_positions",
			"pending_positions",
			"win_rate",
			"average_odds",
			"current_streak",
			"longest_win_streak",
			"last7_days_win_rate",
			"last30_days_win_rate",
			"last90_days_win_rate",
			"tier",
			"recalculated_at",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetExpertStatistics(ctx context.Context, expertID string) (*models.ExpertStatistics, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.ExpertStatistics
	err := s.db.WithContext(ctx).Where("expert_id = ?", expertID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListTopExpertsByWinRate(ctx context.Context, limit int) ([]models.ExpertStatistics, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.ExpertStatistics
	err := s.db.WithContext(ctx).
		Model(&models.ExpertStatistics{}).
		Where("won_positions + lost_positions > 0").
		Order("win_rate desc").
		Order("total_positions desc").
		Limit(normalizeLimit(limit, 10)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- System settings --------------------------------------------------------

func (s *Store) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Key) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"description",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.SystemSetting
	err := s.db.WithContext(ctx).Where("key = ?", strings.TrimSpace(key)).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- helpers ----------------------------------------------------------------

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 || limit > 1000 {
		return fallback
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
