package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/tradematch/internal/id"
	"github.com/cleared-dev/tradematch/internal/model"
)

// Options tune matching. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// StartTradeNum is the first trade number handed to an opening spread.
	StartTradeNum int
	// LimitTolerance bounds |combined per-contract amount - limit price|.
	LimitTolerance decimal.Decimal
	// LegPricePct and LegPriceFloor bound a leg's price difference at
	// max(LegPricePct*price, LegPriceFloor).
	LegPricePct   decimal.Decimal
	LegPriceFloor decimal.Decimal
	// StrikeTolerance is the exclusive bound on strike differences.
	StrikeTolerance decimal.Decimal
	// ExpiryWindowDays is the inclusive bound on expiry differences.
	ExpiryWindowDays int
	// FillWindowDays widens each date bucket to neighbouring days.
	FillWindowDays int
	// StrictPositionEffect rejects a leg when the feed's "to close" marker
	// disagrees with the leg's position effect. Off by default: the marker is
	// advisory.
	StrictPositionEffect bool
	Accounts             model.AccountCodes
	Logger               *zap.Logger
}

// DefaultAccounts is the option ledger mapping in the default chart.
var DefaultAccounts = model.AccountCodes{
	LongCall:     1310,
	LongPut:      1320,
	ShortCall:    2310,
	ShortPut:     2320,
	RealizedGain: 4310,
}

// DefaultOptions returns the tolerances calibrated for brokerage slippage.
func DefaultOptions() Options {
	return Options{
		StartTradeNum:    id.FirstTradeNum,
		LimitTolerance:   decimal.RequireFromString("0.25"),
		LegPricePct:      decimal.RequireFromString("0.02"),
		LegPriceFloor:    decimal.RequireFromString("0.50"),
		StrikeTolerance:  decimal.RequireFromString("0.01"),
		ExpiryWindowDays: 2,
		FillWindowDays:   1,
		Accounts:         DefaultAccounts,
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) startTradeNum() int {
	if o.StartTradeNum < id.FirstTradeNum {
		return id.FirstTradeNum
	}
	return o.StartTradeNum
}

// legPriceTolerance returns max(pct*price, floor).
func (o Options) legPriceTolerance(price decimal.Decimal) decimal.Decimal {
	return decimal.Max(o.LegPricePct.Mul(price.Abs()), o.LegPriceFloor)
}

func (o Options) strikeMatches(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(o.StrikeTolerance)
}

// expiryRef is the reference day handed to optdate.ResolveExpiry for a leg's
// year-less expiry. Expiries run forward from the fill, not from the day the
// import happens to run. A leg with no fill date falls back to the clock.
func expiryRef(leg model.Leg) time.Time {
	if leg.Filled.IsZero() {
		return time.Now()
	}
	return leg.Filled
}
