package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tipster/internal/models"
)

// Repository is the persistence surface the settlement and statistics
// services depend on. The relational mechanism behind it is a black box to
// the engine; the gorm implementation lives in repository/gorm.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Event outcomes (written by the odds-ingestion job, read-only here).
	ListFinalOutcomesSince(ctx context.Context, since time.Time, limit, offset int) ([]models.EventOutcome, error)

	// Positions.
	ListPendingPositionsByEventIDs(ctx context.Context, eventIDs []string) ([]models.Position, error)
	// SettlePositionTx transitions one pending position to a terminal
	// status. The update is guarded by status = 'pending'; zero rows
	// affected means the position was already settled.
	SettlePositionTx(ctx context.Context, tx *gorm.DB, id, status, outcome string, settledAt time.Time) (int64, error)
	// ListPositionsForExpert materializes an expert's full history:
	// positions opened under the expert id or under its linked user id.
	ListPositionsForExpert(ctx context.Context, expertID, userID string) ([]models.Position, error)

	// Experts.
	GetExpertByID(ctx context.Context, id string) (*models.Expert, error)
	GetExpertByUserID(ctx context.Context, userID string) (*models.Expert, error)
	ListExpertIDs(ctx context.Context) ([]string, error)

	// Statistics (full-replace rows).
	UpsertExpertStatistics(ctx context.Context, item *models.ExpertStatistics) error
	GetExpertStatistics(ctx context.Context, expertID string) (*models.ExpertStatistics, error)
	ListTopExpertsByWinRate(ctx context.Context, limit int) ([]models.ExpertStatistics, error)

	// System settings.
	UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error
	GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error)
}
