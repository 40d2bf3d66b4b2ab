package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EventStatusScheduled = "scheduled"
	EventStatusLive      = "live"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

// EventOutcome records the final outcome of one sporting event. Rows are
// written by the odds-ingestion job and consumed read-only by the settlement
// engine; once recorded they are never updated.
type EventOutcome struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	EventID string `gorm:"type:varchar(100);not null;uniqueIndex"`

	Status string `gorm:"type:varchar(20);not null;index"`

	// FinalScore is a free-text score string such as "3-1" or "3:1".
	FinalScore *string `gorm:"type:varchar(20)"`
	// Winner is a declared winner token: Home, Away or Draw (any casing).
	Winner *string `gorm:"type:varchar(10)"`
	// MarketResults is the optional structured per-market payload
	// (totalGoals, bothTeamsScore, homeScore, awayScore, cancelled, abandoned).
	MarketResults datatypes.JSON `gorm:"type:jsonb"`

	SettledAt time.Time `gorm:"type:timestamptz;not null;index"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (EventOutcome) TableName() string {
	return "event_outcomes"
}
