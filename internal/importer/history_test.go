package importer

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cleared-dev/tradematch/internal/model"
)

var parseDay = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

func testParser(t *testing.T) *HistoryParser {
	p := NewHistoryParser(zaptest.NewLogger(t))
	p.Now = func() time.Time { return parseDay }
	return p
}

const creditSpread = `AAPL Short Put Credit Spread
6/3
$1.50
Sell AAPL $150 Put 6/20
Position effect
Open
2 contracts at $1.50
6/3, 10:32 AM
Est regulatory fees
$0.04
Est credit
$299.96
Buy AAPL $145 Put 6/20
Position effect
Open
2 contracts at $1.50
6/3, 10:32 AM
Est regulatory fees
$0.00
Est cost
$300.00
Download Trade Confirmation
`

func TestParse_CreditSpread(t *testing.T) {
	spreads := testParser(t).ParseText(creditSpread)
	require.Len(t, spreads, 1)

	s := spreads[0]
	assert.Equal(t, "AAPL", s.Symbol)
	assert.Equal(t, "Short Put Credit Spread", s.Strategy)
	assert.Equal(t, "6/3", s.SubmitDate)
	assert.Equal(t, "1.50", s.LimitPrice.StringFixed(2))
	assert.True(t, s.IsOpen())
	require.Len(t, s.Legs, 2)

	sell := s.Legs[0]
	assert.Equal(t, model.ActionSell, sell.Action)
	assert.Equal(t, "150", sell.Strike.String())
	assert.Equal(t, model.OptionPut, sell.Type)
	assert.Equal(t, "6/20", sell.Expiry)
	assert.Equal(t, model.PositionOpen, sell.Position)
	assert.Equal(t, int64(2), sell.Quantity)
	assert.Equal(t, "1.50", sell.Price.StringFixed(2))
	assert.Equal(t, "300.00", sell.Principal().StringFixed(2))
	assert.Equal(t, "0.04", sell.Fees.StringFixed(2))
	assert.Equal(t, "299.96", sell.NetAmount.StringFixed(2))
	assert.Equal(t, time.Date(2025, 6, 3, 10, 32, 0, 0, time.UTC), sell.Filled)

	buy := s.Legs[1]
	assert.Equal(t, model.ActionBuy, buy.Action)
	assert.Equal(t, "145", buy.Strike.String())
	assert.Equal(t, "300.00", buy.NetAmount.StringFixed(2))
}

func TestParse_LimitPriceLabelOverridesProvisional(t *testing.T) {
	text := strings.Replace(creditSpread, "6/3\n$1.50\n", "6/3\n$1.45\nLimit price\n$1.55\n", 1)
	spreads := testParser(t).ParseText(text)
	require.Len(t, spreads, 1)
	assert.Equal(t, "1.55", spreads[0].LimitPrice.StringFixed(2))
}

func TestParse_Testdata(t *testing.T) {
	f, err := os.Open("../../testdata/robinhood_history.txt")
	require.NoError(t, err)
	defer f.Close()

	spreads, err := testParser(t).Parse(f)
	require.NoError(t, err)
	require.Len(t, spreads, 3, "the canceled TSLA leg is dropped")

	// Sorted by first fill.
	assert.Equal(t, "SPY", spreads[0].Symbol)
	assert.Equal(t, "Long Call", spreads[0].Strategy)
	assert.True(t, spreads[0].IsOpen())

	assert.Equal(t, "AAPL", spreads[1].Symbol)
	assert.Len(t, spreads[1].Legs, 2)
	assert.Equal(t, "1.50", spreads[1].LimitPrice.StringFixed(2))

	closing := spreads[2]
	assert.Equal(t, "SPY", closing.Symbol)
	assert.False(t, closing.IsOpen())
	assert.Equal(t, "Long Call", closing.Strategy, "sell to close unwinds a long call")
	assert.Equal(t, "3.40", closing.LimitPrice.StringFixed(2))
	assert.Equal(t, "6/12", closing.SubmitDate)
}

func TestParse_SingleStrategyNames(t *testing.T) {
	tests := []struct {
		action   string
		kind     string
		effect   string
		strategy string
	}{
		{"Buy", "Call", "Open", "Long Call"},
		{"Buy", "Put", "Open", "Long Put"},
		{"Sell", "Call", "Open", "Short Call"},
		{"Sell", "Put", "Open", "Short Put"},
		{"Sell", "Call", "Close", "Long Call"},
		{"Buy", "Put", "Close", "Short Put"},
	}
	for _, tt := range tests {
		text := tt.action + " QQQ $400 " + tt.kind + " 9/19\nPosition effect\n" + tt.effect +
			"\n1 contract at $2.00\n6/10, 1:00 PM\n"
		spreads := testParser(t).ParseText(text)
		require.Len(t, spreads, 1, text)
		assert.Equal(t, tt.strategy, spreads[0].Strategy, text)
		assert.Equal(t, "2.00", spreads[0].LimitPrice.StringFixed(2))
	}
}

func TestParse_PagerEndsBlockWithoutConsuming(t *testing.T) {
	text := strings.Replace(creditSpread, "Download Trade Confirmation\n", "Older\n", 1) +
		"Buy MSFT $420 Call 9/19\nPosition effect\nOpen\n1 contract at $5.00\n6/5, 11:00 AM\n"

	spreads := testParser(t).ParseText(text)
	require.Len(t, spreads, 2)
	assert.Len(t, spreads[0].Legs, 2)
	assert.Equal(t, "MSFT", spreads[1].Symbol)
	assert.Equal(t, "Long Call", spreads[1].Strategy)
}

func TestParse_LegWithoutPositionEffectIsUnknown(t *testing.T) {
	text := "Sell IWM $200 Put 8/15\n1 contract at $1.10\n6/20, 3:59 PM\n"
	spreads := testParser(t).ParseText(text)
	require.Len(t, spreads, 1)
	assert.Equal(t, model.PositionUnknown, spreads[0].Legs[0].Position)
	assert.False(t, spreads[0].IsOpen())
}

func TestParse_DropsIncompleteLegs(t *testing.T) {
	tests := map[string]string{
		"no price":     "Buy TSLA $200 Call 8/15\nPosition effect\nOpen\n6/10, 1:00 PM\n",
		"zero price":   "Buy TSLA $200 Call 8/15\n1 contract at $0.00\n6/10, 1:00 PM\n",
		"no fill date": "Buy TSLA $200 Call 8/15\n1 contract at $1.00\n",
	}
	for name, text := range tests {
		assert.Empty(t, testParser(t).ParseText(text), name)
	}
}

func TestParse_LegScanStopsAtNextLeg(t *testing.T) {
	// The first leg has no fill line before the second leg starts, so it
	// must not borrow the second leg's details.
	text := "SPY Call Debit Spread\n6/2\n$1.00\n" +
		"Buy SPY $500 Call 7/18\nPosition effect\nOpen\n" +
		"Sell SPY $505 Call 7/18\nPosition effect\nOpen\n1 contract at $1.00\n6/2, 10:00 AM\n" +
		"Download Trade Confirmation\n"

	spreads := testParser(t).ParseText(text)
	require.Len(t, spreads, 1)
	require.Len(t, spreads[0].Legs, 1)
	assert.Equal(t, "505", spreads[0].Legs[0].Strike.String())
}

func TestParse_FillYearInference(t *testing.T) {
	p := NewHistoryParser(nil)
	p.Now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	text := "Buy SPY $500 Call 1/16\nPosition effect\nOpen\n1 contract at $1.00\n12/15, 10:00 AM\n" +
		"Download Trade Confirmation\n" +
		"Buy SPY $510 Call 6/20\nPosition effect\nOpen\n1 contract at $1.00\n02/01, 10:00 AM\n"

	spreads := p.ParseText(text)
	require.Len(t, spreads, 2)
	assert.Equal(t, time.Date(2024, 12, 15, 10, 0, 0, 0, time.UTC), spreads[0].Filled())
	assert.Equal(t, time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC), spreads[1].Filled())
}

func TestParse_NoSpreads(t *testing.T) {
	_, err := testParser(t).Parse(strings.NewReader("nothing to see\nhere\n"))
	assert.ErrorIs(t, err, ErrNoSpreads)

	spreads := ParseHistory("")
	assert.NotNil(t, spreads)
	assert.Empty(t, spreads)
}

func TestParse_HeaderWithoutLegsIsDropped(t *testing.T) {
	text := "AAPL Iron Condor\n6/3\n$2.00\nDownload Trade Confirmation\n"
	assert.Empty(t, testParser(t).ParseText(text))
}
