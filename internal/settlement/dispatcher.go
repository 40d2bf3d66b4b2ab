package settlement

import (
	"strings"

	"go.uber.org/zap"
)

// Dispatcher maps free-text market labels onto strategies. Unknown labels
// fall back to GenericStrategy (settled void) and are logged once per call
// site rather than failing the batch.
type Dispatcher struct {
	Logger *zap.Logger
}

var strategyAliases = map[string]Strategy{
	"match result":     MatchResultStrategy{},
	"1x2":              MatchResultStrategy{},
	"full time result": MatchResultStrategy{},
	"over/under":       OverUnderStrategy{},
	"total goals":      OverUnderStrategy{},
	"o/u":              OverUnderStrategy{},
	"both teams score": BothTeamsScoreStrategy{},
	"btts":             BothTeamsScoreStrategy{},
	"asian handicap":   AsianHandicapStrategy{},
	"handicap":         AsianHandicapStrategy{},
}

func (d *Dispatcher) ForMarket(market string) Strategy {
	key := strings.ToLower(strings.TrimSpace(market))
	if s, ok := strategyAliases[key]; ok {
		return s
	}
	if d != nil && d.Logger != nil {
		d.Logger.Warn("unhandled market, settling void", zap.String("market", market))
	}
	return GenericStrategy{}
}
