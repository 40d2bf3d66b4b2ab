// Package stats computes expert performance snapshots from full position
// histories. Snapshots are always recomputed wholesale so that stored rows
// can never drift from the underlying positions.
package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"tipster/internal/models"
)

const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
	TierDiamond  = "diamond"
)

// minPositionsForTier is the volume floor below which an expert stays
// bronze regardless of win rate.
const minPositionsForTier = 20

// Snapshot is one full recomputation of an expert's statistics.
type Snapshot struct {
	TotalPositions   int
	WonPositions     int
	LostPositions    int
	VoidPositions    int
	PendingPositions int

	WinRate     decimal.Decimal
	AverageOdds decimal.Decimal

	CurrentStreak    int
	LongestWinStreak int

	Last7DaysWinRate  decimal.Decimal
	Last30DaysWinRate decimal.Decimal
	Last90DaysWinRate decimal.Decimal

	Tier string
}

// Compute builds a snapshot from an expert's full position history. The
// history does not need to be ordered.
func Compute(positions []models.Position, now time.Time) Snapshot {
	s := Snapshot{
		WinRate:           decimal.Zero,
		AverageOdds:       decimal.Zero,
		Last7DaysWinRate:  decimal.Zero,
		Last30DaysWinRate: decimal.Zero,
		Last90DaysWinRate: decimal.Zero,
	}

	oddsSum := decimal.Zero
	settled := 0
	for _, p := range positions {
		s.TotalPositions++
		switch p.Status {
		case models.PositionStatusWon:
			s.WonPositions++
		case models.PositionStatusLost:
			s.LostPositions++
		case models.PositionStatusVoid:
			s.VoidPositions++
		default:
			s.PendingPositions++
			continue
		}
		oddsSum = oddsSum.Add(p.Odds)
		settled++
	}

	s.WinRate = winRate(s.WonPositions, s.LostPositions)
	if settled > 0 {
		s.AverageOdds = oddsSum.DivRound(decimal.NewFromInt(int64(settled)), 3)
	}

	s.CurrentStreak, s.LongestWinStreak = streaks(positions)

	s.Last7DaysWinRate = rollingWinRate(positions, now.Add(-7*24*time.Hour))
	s.Last30DaysWinRate = rollingWinRate(positions, now.Add(-30*24*time.Hour))
	s.Last90DaysWinRate = rollingWinRate(positions, now.Add(-90*24*time.Hour))

	s.Tier = TierFor(s.TotalPositions, s.Last90DaysWinRate)
	return s
}

// winRate is Won/(Won+Lost)*100 rounded to two decimal places; voids and
// pendings never enter the denominator.
func winRate(won, lost int) decimal.Decimal {
	if won+lost == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(won) * 100).
		DivRound(decimal.NewFromInt(int64(won+lost)), 2)
}

// streaks walks settled positions in creation order, maintaining a signed
// run counter. A win extends a non-negative counter or restarts it at 1; a
// loss mirrors that downward. Voids neither extend nor reset.
func streaks(positions []models.Position) (current, longestWin int) {
	ordered := make([]models.Position, 0, len(positions))
	for _, p := range positions {
		if p.Status == models.PositionStatusWon || p.Status == models.PositionStatusLost {
			ordered = append(ordered, p)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	for _, p := range ordered {
		if p.Status == models.PositionStatusWon {
			if current >= 0 {
				current++
			} else {
				current = 1
			}
			if current > longestWin {
				longestWin = current
			}
		} else {
			if current <= 0 {
				current--
			} else {
				current = -1
			}
		}
	}
	return current, longestWin
}

// rollingWinRate applies the win-rate formula to settled positions created
// on or after the window start. Each window is computed independently.
func rollingWinRate(positions []models.Position, since time.Time) decimal.Decimal {
	won, lost := 0, 0
	for _, p := range positions {
		if p.CreatedAt.Before(since) {
			continue
		}
		switch p.Status {
		case models.PositionStatusWon:
			won++
		case models.PositionStatusLost:
			lost++
		}
	}
	return winRate(won, lost)
}

// TierFor maps volume and last-90-day win rate onto a tier. Thresholds are
// inclusive lower bounds.
func TierFor(totalPositions int, last90DaysWinRate decimal.Decimal) string {
	if totalPositions < minPositionsForTier {
		return TierBronze
	}
	switch {
	case last90DaysWinRate.GreaterThanOrEqual(decimal.NewFromInt(80)):
		return TierDiamond
	case last90DaysWinRate.GreaterThanOrEqual(decimal.NewFromInt(70)):
		return TierPlatinum
	case last90DaysWinRate.GreaterThanOrEqual(decimal.NewFromInt(60)):
		return TierGold
	case last90DaysWinRate.GreaterThanOrEqual(decimal.NewFromInt(50)):
		return TierSilver
	}
	return TierBronze
}
