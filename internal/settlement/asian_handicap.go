package settlement

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// handicapPattern is the accepted selection shape: a signed number with at
// most one decimal place, e.g. "-1.5", "+0.5", "2".
var handicapPattern = regexp.MustCompile(`^[+-]?\d+(\.\d)?$`)

// AsianHandicapStrategy settles handicap predictions of the shape
// "<Side> <SignedDecimal>", e.g. "Home -1.5" or "Away +0.5". The named
// side's score plus the handicap is compared against the other side's raw
// score; exact equality is a push and settles void.
type AsianHandicapStrategy struct{}

func (AsianHandicapStrategy) Name() string { return "asian_handicap" }

func (AsianHandicapStrategy) Determine(selection string, result *Result) Outcome {
	if result == nil || result.Voided {
		return Void
	}
	if result.HomeScore == nil || result.AwayScore == nil {
		return Void
	}

	side, line, ok := parseHandicapSelection(selection)
	if !ok {
		return Void
	}

	home := decimal.NewFromInt(int64(*result.HomeScore))
	away := decimal.NewFromInt(int64(*result.AwayScore))

	var adjusted, opponent decimal.Decimal
	if side == "home" {
		adjusted, opponent = home.Add(line), away
	} else {
		adjusted, opponent = away.Add(line), home
	}

	switch {
	case adjusted.GreaterThan(opponent):
		return Won
	case adjusted.LessThan(opponent):
		return Lost
	}
	return Void
}

func parseHandicapSelection(selection string) (side string, line decimal.Decimal, ok bool) {
	fields := strings.Fields(strings.TrimSpace(selection))
	if len(fields) != 2 {
		return "", decimal.Decimal{}, false
	}
	switch strings.ToLower(fields[0]) {
	case "home":
		side = "home"
	case "away":
		side = "away"
	default:
		return "", decimal.Decimal{}, false
	}
	if !handicapPattern.MatchString(fields[1]) {
		return "", decimal.Decimal{}, false
	}
	line, err := decimal.NewFromString(fields[1])
	if err != nil {
		return "", decimal.Decimal{}, false
	}
	return side, line, true
}
