package settlement

import "strings"

// MatchResultStrategy settles 1X2 predictions against the declared winner.
type MatchResultStrategy struct{}

func (MatchResultStrategy) Name() string { return "match_result" }

func (MatchResultStrategy) Determine(selection string, result *Result) Outcome {
	if result == nil || result.Voided {
		return Void
	}
	if result.Winner == "" {
		return Void
	}
	side := mapMatchSelection(selection)
	if side == "" {
		return Void
	}
	if side == result.Winner {
		return Won
	}
	return Lost
}

func mapMatchSelection(selection string) string {
	s := strings.ToLower(strings.TrimSpace(selection))
	switch s {
	case "home", "1":
		return "home"
	case "away", "2":
		return "away"
	case "draw", "x":
		return "draw"
	}
	switch {
	case strings.Contains(s, "home win"):
		return "home"
	case strings.Contains(s, "away win"):
		return "away"
	case strings.Contains(s, "draw"):
		return "draw"
	}
	return ""
}
