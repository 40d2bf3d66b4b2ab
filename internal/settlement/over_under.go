package settlement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OverUnderStrategy settles total-goals predictions such as "Over 2.5".
// Exact equality with a whole-number line is a push and settles void.
type OverUnderStrategy struct{}

func (OverUnderStrategy) Name() string { return "over_under" }

func (OverUnderStrategy) Determine(selection string, result *Result) Outcome {
	if result == nil || result.Voided {
		return Void
	}
	if result.TotalGoals == nil {
		return Void
	}

	lower := strings.ToLower(selection)
	over := strings.Contains(lower, "over")
	under := strings.Contains(lower, "under")
	if over == under {
		return Void
	}

	line, ok := extractLine(selection)
	if !ok {
		return Void
	}

	goals := decimal.NewFromInt(int64(*result.TotalGoals))
	switch {
	case goals.Equal(line):
		return Void
	case over && goals.GreaterThan(line):
		return Won
	case under && goals.LessThan(line):
		return Won
	}
	return Lost
}

// extractLine returns the first numeric whitespace-separated token in the
// selection, e.g. 2.5 out of "Over 2.5 Goals".
func extractLine(selection string) (decimal.Decimal, bool) {
	for _, token := range strings.Fields(selection) {
		if line, err := decimal.NewFromString(token); err == nil {
			return line, true
		}
	}
	return decimal.Decimal{}, false
}
