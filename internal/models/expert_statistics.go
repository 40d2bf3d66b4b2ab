package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpertStatistics is one full performance snapshot per expert. Rows are
// replaced wholesale on every recalculation, never patched incrementally.
type ExpertStatistics struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	ExpertID string `gorm:"type:varchar(36);not null;uniqueIndex"`

	TotalPositions   int `gorm:"not null;default:0"`
	WonPositions     int `gorm:"not null;default:0"`
	LostPositions    int `gorm:"not null;default:0"`
	VoidPositions    int `gorm:"not null;default:0"`
	PendingPositions int `gorm:"not null;default:0"`

	WinRate     decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0;index"`
	AverageOdds decimal.Decimal `gorm:"type:numeric(10,3);not null;default:0"`

	// CurrentStreak is signed: positive means consecutive wins, negative
	// consecutive losses. Voids do not extend or reset a streak.
	CurrentStreak    int `gorm:"not null;default:0"`
	LongestWinStreak int `gorm:"not null;default:0"`

	Last7DaysWinRate  decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Last30DaysWinRate decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Last90DaysWinRate decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`

	Tier string `gorm:"type:varchar(10);not null;default:'bronze';index"`

	RecalculatedAt time.Time `gorm:"type:timestamptz;not null"`
	CreatedAt      time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (ExpertStatistics) TableName() string {
	return "expert_statistics"
}
