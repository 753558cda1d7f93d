package reconcile

import (
	"strings"

	"github.com/cleared-dev/tradematch/internal/model"
)

// NormalizeStrategy maps a brokerage strategy label to a strategy tag.
// Labels that fit no known strategy come back as StrategyUnclassified.
func NormalizeStrategy(name string) model.Strategy {
	switch {
	case strings.Contains(name, "Credit"):
		if strings.Contains(name, "Call") {
			return model.StrategyCallCredit
		}
		return model.StrategyPutCredit
	case strings.Contains(name, "Debit"):
		if strings.Contains(name, "Call") {
			return model.StrategyCallDebit
		}
		return model.StrategyPutDebit
	case strings.Contains(name, "Iron Condor"):
		return model.StrategyIronCondor
	case strings.Contains(name, "Long Call"):
		return model.StrategyLongCall
	case strings.Contains(name, "Short Call"):
		return model.StrategyShortCall
	case strings.Contains(name, "Long Put"):
		return model.StrategyLongPut
	case strings.Contains(name, "Short Put"):
		return model.StrategyShortPut
	}
	return model.StrategyUnclassified
}

// AccountFor picks the ledger account for a matched leg. Closing legs all
// post to the realized gain account.
func AccountFor(leg model.Leg, closing bool, codes model.AccountCodes) int {
	if closing {
		return codes.RealizedGain
	}
	switch {
	case leg.Action == model.ActionBuy && leg.Type == model.OptionCall:
		return codes.LongCall
	case leg.Action == model.ActionBuy && leg.Type == model.OptionPut:
		return codes.LongPut
	case leg.Action == model.ActionSell && leg.Type == model.OptionCall:
		return codes.ShortCall
	default:
		return codes.ShortPut
	}
}
