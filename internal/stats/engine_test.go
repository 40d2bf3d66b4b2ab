package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tipster/internal/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func position(status string, odds float64, createdAt time.Time) models.Position {
	return models.Position{
		ID:        "p",
		Status:    status,
		Odds:      decimal.NewFromFloat(odds),
		CreatedAt: createdAt,
	}
}

// history builds settled positions in chronological order, one day apart,
// ending the day before testNow.
func history(statuses ...string) []models.Position {
	out := make([]models.Position, 0, len(statuses))
	start := testNow.Add(-time.Duration(len(statuses)) * 24 * time.Hour)
	for i, st := range statuses {
		out = append(out, position(st, 2.0, start.Add(time.Duration(i)*24*time.Hour)))
	}
	return out
}

func TestCompute_EmptyHistory(t *testing.T) {
	s := Compute(nil, testNow)
	if s.TotalPositions != 0 {
		t.Fatalf("total = %d, want 0", s.TotalPositions)
	}
	if !s.WinRate.IsZero() || !s.Last7DaysWinRate.IsZero() || !s.Last90DaysWinRate.IsZero() {
		t.Fatalf("rates should be zero, got %v / %v / %v", s.WinRate, s.Last7DaysWinRate, s.Last90DaysWinRate)
	}
	if s.Tier != TierBronze {
		t.Fatalf("tier = %q, want bronze", s.Tier)
	}
}

func TestCompute_Counts(t *testing.T) {
	h := history(
		models.PositionStatusWon,
		models.PositionStatusLost,
		models.PositionStatusVoid,
		models.PositionStatusPending,
		models.PositionStatusWon,
	)
	s := Compute(h, testNow)
	if s.TotalPositions != 5 || s.WonPositions != 2 || s.LostPositions != 1 ||
		s.VoidPositions != 1 || s.PendingPositions != 1 {
		t.Fatalf("counts = %+v", s)
	}
	// Voids and pendings stay out of the denominator: 2/(2+1).
	if want := decimal.NewFromFloat(66.67); !s.WinRate.Equal(want) {
		t.Fatalf("win rate = %v, want %v", s.WinRate, want)
	}
}

func TestCompute_AverageOddsExcludesPending(t *testing.T) {
	h := []models.Position{
		position(models.PositionStatusWon, 2.0, testNow.Add(-72*time.Hour)),
		position(models.PositionStatusVoid, 4.0, testNow.Add(-48*time.Hour)),
		position(models.PositionStatusPending, 100.0, testNow.Add(-24*time.Hour)),
	}
	s := Compute(h, testNow)
	if want := decimal.NewFromFloat(3.0); !s.AverageOdds.Equal(want) {
		t.Fatalf("average odds = %v, want %v", s.AverageOdds, want)
	}
}

func TestCompute_Streaks(t *testing.T) {
	// 3 wins, 1 loss, 1 win.
	h := history(
		models.PositionStatusWon,
		models.PositionStatusWon,
		models.PositionStatusWon,
		models.PositionStatusLost,
		models.PositionStatusWon,
	)
	s := Compute(h, testNow)
	if s.CurrentStreak != 1 {
		t.Fatalf("current streak = %d, want 1", s.CurrentStreak)
	}
	if s.LongestWinStreak != 3 {
		t.Fatalf("longest win streak = %d, want 3", s.LongestWinStreak)
	}
}

func TestCompute_LossStreakIsNegative(t *testing.T) {
	h := history(
		models.PositionStatusWon,
		models.PositionStatusLost,
		models.PositionStatusLost,
	)
	s := Compute(h, testNow)
	if s.CurrentStreak != -2 {
		t.Fatalf("current streak = %d, want -2", s.CurrentStreak)
	}
}

func TestCompute_VoidsDoNotBreakStreaks(t *testing.T) {
	h := history(
		models.PositionStatusWon,
		models.PositionStatusVoid,
		models.PositionStatusWon,
		models.PositionStatusVoid,
		models.PositionStatusWon,
	)
	s := Compute(h, testNow)
	if s.CurrentStreak != 3 || s.LongestWinStreak != 3 {
		t.Fatalf("streaks = %d/%d, want 3/3", s.CurrentStreak, s.LongestWinStreak)
	}
}

func TestCompute_StreakOrderIndependentOfInputOrder(t *testing.T) {
	h := history(
		models.PositionStatusLost,
		models.PositionStatusWon,
		models.PositionStatusWon,
	)
	// Shuffle: engine must sort by creation time.
	shuffled := []models.Position{h[2], h[0], h[1]}
	s := Compute(shuffled, testNow)
	if s.CurrentStreak != 2 {
		t.Fatalf("current streak = %d, want 2", s.CurrentStreak)
	}
}

func TestCompute_RollingWindows(t *testing.T) {
	h := []models.Position{
		// Inside 7d.
		position(models.PositionStatusWon, 2.0, testNow.Add(-2*24*time.Hour)),
		// Inside 30d only.
		position(models.PositionStatusLost, 2.0, testNow.Add(-20*24*time.Hour)),
		// Inside 90d only.
		position(models.PositionStatusLost, 2.0, testNow.Add(-60*24*time.Hour)),
		// Outside all windows.
		position(models.PositionStatusLost, 2.0, testNow.Add(-120*24*time.Hour)),
		// Pending inside 7d: excluded from every rate.
		position(models.PositionStatusPending, 2.0, testNow.Add(-time.Hour)),
	}
	s := Compute(h, testNow)
	if want := decimal.NewFromInt(100); !s.Last7DaysWinRate.Equal(want) {
		t.Fatalf("7d = %v, want %v", s.Last7DaysWinRate, want)
	}
	if want := decimal.NewFromInt(50); !s.Last30DaysWinRate.Equal(want) {
		t.Fatalf("30d = %v, want %v", s.Last30DaysWinRate, want)
	}
	if want := decimal.NewFromFloat(33.33); !s.Last90DaysWinRate.Equal(want) {
		t.Fatalf("90d = %v, want %v", s.Last90DaysWinRate, want)
	}
	// Overall rate counts everything settled: 1/(1+3).
	if want := decimal.NewFromInt(25); !s.WinRate.Equal(want) {
		t.Fatalf("overall = %v, want %v", s.WinRate, want)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		total  int
		rate   float64
		want   string
	}{
		{15, 65, TierBronze}, // volume floor beats win rate
		{25, 65, TierGold},
		{25, 45, TierBronze},
		{25, 50, TierSilver},
		{25, 60, TierGold},
		{25, 70, TierPlatinum},
		{25, 80, TierDiamond},
		{25, 100, TierDiamond},
		{0, 0, TierBronze},
	}
	for _, tt := range tests {
		got := TierFor(tt.total, decimal.NewFromFloat(tt.rate))
		if got != tt.want {
			t.Fatalf("TierFor(%d, %v) = %q, want %q", tt.total, tt.rate, got, tt.want)
		}
	}
}

func TestCompute_TierUsesLast90DayRate(t *testing.T) {
	// 25 positions inside 90 days: 16 won, 9 lost = 64% → gold.
	var h []models.Position
	for i := 0; i < 16; i++ {
		h = append(h, position(models.PositionStatusWon, 2.0, testNow.Add(-time.Duration(i+1)*24*time.Hour)))
	}
	for i := 0; i < 9; i++ {
		h = append(h, position(models.PositionStatusLost, 2.0, testNow.Add(-time.Duration(i+30)*24*time.Hour)))
	}
	s := Compute(h, testNow)
	if s.Tier != TierGold {
		t.Fatalf("tier = %q, want gold (90d rate %v)", s.Tier, s.Last90DaysWinRate)
	}
}
