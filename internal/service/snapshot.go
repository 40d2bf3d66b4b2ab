package service

import (
	"time"

	"tipster/internal/models"
	"tipster/internal/stats"
)

func snapshotToModel(expertID string, snap stats.Snapshot, recalculatedAt time.Time) *models.ExpertStatistics {
	return &models.ExpertStatistics{
		ExpertID:          expertID,
		TotalPositions:    snap.TotalPositions,
		WonPositions:      snap.WonPositions,
		LostPositions:     snap.LostPositions,
		VoidPositions:     snap.VoidPositions,
		PendingPositions:  snap.PendingPositions,
		WinRate:           snap.WinRate,
		AverageOdds:       snap.AverageOdds,
		CurrentStreak:     snap.CurrentStreak,
		LongestWinStreak:  snap.LongestWinStreak,
		Last7DaysWinRate:  snap.Last7DaysWinRate,
		Last30DaysWinRate: snap.Last30DaysWinRate,
		Last90DaysWinRate: snap.Last90DaysWinRate,
		Tier:              snap.Tier,
		RecalculatedAt:    recalculatedAt,
		UpdatedAt:         recalculatedAt,
	}
}
