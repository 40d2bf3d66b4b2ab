package publisher

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stream keys consumed by the notification and ranking services.
const (
	StreamPositionSettled = "settlement.position_settled"
	StreamExpertStats     = "settlement.expert_stats"
)

// PositionSettled is emitted once per position transitioned by a settlement
// run.
type PositionSettled struct {
	ID          string          `json:"id"`
	PositionID  string          `json:"positionId"`
	CreatorID   string          `json:"creatorId"`
	CreatorType string          `json:"creatorType"`
	ExpertID    *string         `json:"expertId,omitempty"`
	EventID     string          `json:"eventId"`
	Outcome     string          `json:"outcome"`
	Odds        decimal.Decimal `json:"odds"`
	Market      string          `json:"market"`
	Selection   string          `json:"selection"`
	SettledAt   time.Time       `json:"settledAt"`
}

// ExpertStatisticsRecalculated is emitted once per expert whose snapshot was
// rebuilt. Previous streak and leaderboard ranks let downstream consumers
// derive achievement and ranking notifications without re-reading state.
type ExpertStatisticsRecalculated struct {
	ID             string    `json:"id"`
	ExpertID       string    `json:"expertId"`
	PreviousStreak *int      `json:"previousStreak,omitempty"`
	CurrentStreak  int       `json:"currentStreak"`
	PreviousRank   *int      `json:"previousRank,omitempty"`
	CurrentRank    *int      `json:"currentRank,omitempty"`
	RecalculatedAt time.Time `json:"recalculatedAt"`
}
