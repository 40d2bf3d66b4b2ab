package settlement

import "strings"

// BothTeamsScoreStrategy settles yes/no predictions on both teams scoring.
type BothTeamsScoreStrategy struct{}

func (BothTeamsScoreStrategy) Name() string { return "both_teams_score" }

func (BothTeamsScoreStrategy) Determine(selection string, result *Result) Outcome {
	if result == nil || result.Voided {
		return Void
	}
	if result.BothTeamsScored == nil {
		return Void
	}

	var affirmative bool
	switch strings.ToLower(strings.TrimSpace(selection)) {
	case "yes", "true", "1":
		affirmative = true
	case "no", "false", "0":
		affirmative = false
	default:
		return Void
	}

	if affirmative == *result.BothTeamsScored {
		return Won
	}
	return Lost
}
