package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PositionStatusPending = "pending"
	PositionStatusWon     = "won"
	PositionStatusLost    = "lost"
	PositionStatusVoid    = "void"
)

const (
	CreatorTypeUser   = "user"
	CreatorTypeExpert = "expert"
)

// Position is a single prediction on one event/market/selection. The
// settlement engine transitions it from pending to exactly one terminal
// status; a terminal position is never touched again.
type Position struct {
	ID          string `gorm:"type:varchar(36);primaryKey"`
	CreatorID   string `gorm:"type:varchar(36);not null;index"`
	CreatorType string `gorm:"type:varchar(10);not null"`
	EventID     string `gorm:"type:varchar(100);not null;index"`

	// Market and Selection are free text, e.g. "Over/Under" / "Over 2.5".
	Market    string          `gorm:"type:varchar(50);not null"`
	Selection string          `gorm:"type:varchar(50);not null"`
	Odds      decimal.Decimal `gorm:"type:numeric(10,3);not null;default:0"`

	Status    string     `gorm:"type:varchar(10);not null;default:'pending';index"`
	Outcome   *string    `gorm:"type:varchar(10)"`
	SettledAt *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Position) TableName() string {
	return "positions"
}
