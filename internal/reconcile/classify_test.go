package reconcile

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/tradematch/internal/model"
)

func TestNormalizeStrategy(t *testing.T) {
	tests := []struct {
		name string
		want model.Strategy
	}{
		{"Call Credit Spread", model.StrategyCallCredit},
		{"Short Put Credit Spread", model.StrategyPutCredit},
		{"Credit Spread", model.StrategyPutCredit},
		{"Call Debit Spread", model.StrategyCallDebit},
		{"Put Debit Spread", model.StrategyPutDebit},
		{"Iron Condor", model.StrategyIronCondor},
		{"Long Call", model.StrategyLongCall},
		{"Short Call", model.StrategyShortCall},
		{"Long Put", model.StrategyLongPut},
		{"Short Put", model.StrategyShortPut},
		{"2-Option Order", model.StrategyUnclassified},
		{"", model.StrategyUnclassified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStrategy(tt.name))
		})
	}
}

func TestAccountFor(t *testing.T) {
	codes := DefaultAccounts
	tests := []struct {
		action  model.Action
		typ     model.OptionType
		closing bool
		want    int
	}{
		{model.ActionBuy, model.OptionCall, false, 1310},
		{model.ActionBuy, model.OptionPut, false, 1320},
		{model.ActionSell, model.OptionCall, false, 2310},
		{model.ActionSell, model.OptionPut, false, 2320},
		{model.ActionBuy, model.OptionCall, true, 4310},
		{model.ActionSell, model.OptionPut, true, 4310},
	}
	for _, tt := range tests {
		leg := model.Leg{Action: tt.action, Type: tt.typ}
		assert.Equal(t, tt.want, AccountFor(leg, tt.closing, codes), "%s %s closing=%v", tt.action, tt.typ, tt.closing)
	}
}

func TestCombinations(t *testing.T) {
	var got [][]int
	for idx := range combinations(4, 2) {
		got = append(got, slices.Clone(idx))
	}
	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, got)

	count := 0
	for range combinations(3, 4) {
		count++
	}
	assert.Zero(t, count)

	// stops when the consumer breaks
	count = 0
	for range combinations(10, 3) {
		count++
		if count == 5 {
			break
		}
	}
	assert.Equal(t, 5, count)
}
