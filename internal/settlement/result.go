package settlement

import (
	"encoding/json"
	"strconv"
	"strings"

	"tipster/internal/models"
)

// Result is the parser's normalized view of an event outcome. It is
// recomputed per settlement attempt and never persisted. A nil *Result
// means no usable data was found; every strategy settles that as void.
type Result struct {
	// Winner is "home", "away" or "draw"; empty when no winner was declared.
	Winner          string
	TotalGoals      *int
	BothTeamsScored *bool
	HomeScore       *int
	AwayScore       *int

	// Voided marks a cancelled or abandoned event. All strategies must
	// settle a voided result as void regardless of other fields.
	Voided bool
}

// marketResults mirrors the structured payload recorded by the ingestion job.
// Every field is optional; absent fields are derived from the score string.
type marketResults struct {
	MatchResult    *string `json:"matchResult"`
	TotalGoals     *int    `json:"totalGoals"`
	BothTeamsScore *bool   `json:"bothTeamsScore"`
	HomeScore      *int    `json:"homeScore"`
	AwayScore      *int    `json:"awayScore"`
	Cancelled      *bool   `json:"cancelled"`
	Abandoned      *bool   `json:"abandoned"`
}

// Parse normalizes an event outcome into a Result. Structured payload fields
// take precedence; anything missing is derived from the free-text final
// score. Malformed score strings are treated as unparsable, not as errors.
func Parse(o models.EventOutcome) *Result {
	var mr marketResults
	if len(o.MarketResults) > 0 {
		// A garbled payload is the same as no payload.
		_ = json.Unmarshal(o.MarketResults, &mr)
	}

	if o.Status == models.EventStatusCancelled ||
		(mr.Cancelled != nil && *mr.Cancelled) ||
		(mr.Abandoned != nil && *mr.Abandoned) {
		return &Result{Voided: true}
	}

	r := &Result{
		TotalGoals:      mr.TotalGoals,
		BothTeamsScored: mr.BothTeamsScore,
		HomeScore:       mr.HomeScore,
		AwayScore:       mr.AwayScore,
	}

	if mr.MatchResult != nil {
		r.Winner = normalizeWinner(*mr.MatchResult)
	}
	if r.Winner == "" && o.Winner != nil {
		r.Winner = normalizeWinner(*o.Winner)
	}

	if r.HomeScore == nil || r.AwayScore == nil {
		if home, away, ok := splitScore(deref(o.FinalScore)); ok {
			if r.HomeScore == nil {
				r.HomeScore = &home
			}
			if r.AwayScore == nil {
				r.AwayScore = &away
			}
		}
	}
	if r.TotalGoals == nil && r.HomeScore != nil && r.AwayScore != nil {
		total := *r.HomeScore + *r.AwayScore
		r.TotalGoals = &total
	}
	if r.BothTeamsScored == nil && r.HomeScore != nil && r.AwayScore != nil {
		both := *r.HomeScore > 0 && *r.AwayScore > 0
		r.BothTeamsScored = &both
	}

	if r.Winner == "" && r.TotalGoals == nil && r.BothTeamsScored == nil &&
		r.HomeScore == nil && r.AwayScore == nil {
		return nil
	}
	return r
}

func normalizeWinner(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home":
		return "home"
	case "away":
		return "away"
	case "draw":
		return "draw"
	}
	return ""
}

// splitScore parses a free-text final score such as "3-1", "3:1" or "3 1".
// Anything that does not split into exactly two non-negative integers is
// unparsable.
func splitScore(s string) (home, away int, ok bool) {
	parts := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == '-' || r == ':' || r == ' '
	})
	if len(parts) != 2 {
		return 0, 0, false
	}
	home, err := strconv.Atoi(parts[0])
	if err != nil || home < 0 {
		return 0, 0, false
	}
	away, err = strconv.Atoi(parts[1])
	if err != nil || away < 0 {
		return 0, 0, false
	}
	return home, away, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
