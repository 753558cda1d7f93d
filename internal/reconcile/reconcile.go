// Package reconcile matches parsed brokerage spreads against previously
// imported feed transactions, assigning trade numbers and account codes.
package reconcile

import (
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/cleared-dev/tradematch/internal/id"
	"github.com/cleared-dev/tradematch/internal/model"
	"github.com/cleared-dev/tradematch/internal/optdate"
)

// ErrNoOpener is logged when a closing spread has no structural opener.
var ErrNoOpener = errors.New("no opening spread for closing spread")

// ErrOpenerUnmatched is logged when a closing spread's opener found no feed
// transactions, so there is no opening result for the close to attach to.
var ErrOpenerUnmatched = errors.New("opening spread has no feed match")

// Result is the outcome of one reconciliation pass.
type Result struct {
	Mappings []model.MappingResult
	// TradeNums holds the trade number assigned to each spread, by index into
	// the input slice. Closing spreads inherit their opener's number; spreads
	// without one are "".
	TradeNums []string
	// NextTradeNum is the counter value to start the next pass from.
	NextTradeNum int
	// Consumed is the set of feed transaction ids matched in this pass.
	Consumed map[string]bool
}

// opener is an opening spread that received a trade number in phase 1.
type opener struct {
	spread   model.Spread
	tradeNum string
}

// Reconcile runs both phases over spreads and txns. Neither input is
// modified; the trade counter is threaded through opts.StartTradeNum and
// Result.NextTradeNum.
func Reconcile(spreads []model.Spread, txns []model.FeedTransaction, opts Options) Result {
	log := opts.logger()
	m := &matcher{
		opts:     opts,
		txns:     txns,
		consumed: make(map[string]bool),
		log:      log,
	}
	res := Result{
		Mappings:  []model.MappingResult{},
		TradeNums: make([]string, len(spreads)),
		Consumed:  m.consumed,
	}

	order := make([]int, len(spreads))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return spreads[order[a]].Filled().Before(spreads[order[b]].Filled())
	})

	// Phase 1: number and match every opening spread in fill order.
	next := opts.startTradeNum()
	var openers []opener
	matchedTrades := make(map[string]bool)
	for _, i := range order {
		s := spreads[i]
		if !s.IsOpen() {
			continue
		}
		num := id.FormatTradeNum(next)
		next++
		res.TradeNums[i] = num
		openers = append(openers, opener{spread: s, tradeNum: num})

		matched := m.matchSpread(s, num, false)
		if len(matched) == 0 {
			log.Info("no feed match for opening spread",
				zap.String("trade_num", num), zap.String("symbol", s.Symbol), zap.String("strategy", s.Strategy))
			continue
		}
		matchedTrades[num] = true
		res.Mappings = append(res.Mappings, matched...)
	}
	res.NextTradeNum = next

	// Phase 2: closing spreads inherit their opener's trade number. A close is
	// only matched when its opener produced results in phase 1.
	for _, i := range order {
		s := spreads[i]
		if s.IsOpen() || len(s.Legs) == 0 {
			continue
		}
		op, ok := findOpener(s, openers, opts)
		if !ok {
			log.Info("skipping closing spread", zap.Error(ErrNoOpener),
				zap.String("symbol", s.Symbol), zap.String("strategy", s.Strategy))
			continue
		}
		res.TradeNums[i] = op.tradeNum
		if !matchedTrades[op.tradeNum] {
			log.Info("skipping closing spread", zap.Error(ErrOpenerUnmatched),
				zap.String("trade_num", op.tradeNum), zap.String("symbol", s.Symbol))
			continue
		}

		matched := m.matchSpread(s, op.tradeNum, true)
		if len(matched) == 0 {
			log.Info("no feed match for closing spread",
				zap.String("trade_num", op.tradeNum), zap.String("symbol", s.Symbol))
			continue
		}
		res.Mappings = append(res.Mappings, matched...)
	}

	log.Debug("reconciled",
		zap.Int("spreads", len(spreads)),
		zap.Int("mappings", len(res.Mappings)),
		zap.Int("consumed", len(m.consumed)),
		zap.Int("next_trade_num", next))
	return res
}

// findOpener returns the opener closing spread c unwinds. Among structural
// matches the latest one filled at or before c wins; failing that, the first.
func findOpener(c model.Spread, openers []opener, opts Options) (opener, bool) {
	var first, best *opener
	closed := c.Filled()
	for i := range openers {
		op := &openers[i]
		if !sameStructure(c, op.spread, opts) {
			continue
		}
		if first == nil {
			first = op
		}
		f := op.spread.Filled()
		if closed.IsZero() || f.After(closed) {
			continue
		}
		if best == nil || !f.Before(best.spread.Filled()) {
			best = op
		}
	}
	switch {
	case best != nil:
		return *best, true
	case first != nil:
		return *first, true
	}
	return opener{}, false
}

// sameStructure reports whether every leg of c pairs one-to-one with a leg
// of o on strike, option type and expiry.
func sameStructure(c, o model.Spread, opts Options) bool {
	if c.Symbol != o.Symbol || len(c.Legs) != len(o.Legs) {
		return false
	}
	used := make([]bool, len(o.Legs))
	for _, cl := range c.Legs {
		found := false
		for j, ol := range o.Legs {
			if used[j] || !sameContract(cl, ol, opts) {
				continue
			}
			used[j] = true
			found = true
			break
		}
		if !found {
			return false
		}
	}
	return true
}

func sameContract(a, b model.Leg, opts Options) bool {
	if a.Type != b.Type || !opts.strikeMatches(a.Strike, b.Strike) {
		return false
	}
	ea, err := optdate.ResolveExpiry(a.Expiry, expiryRef(a))
	if err != nil {
		return false
	}
	eb, err := optdate.ResolveExpiry(b.Expiry, expiryRef(b))
	if err != nil {
		return false
	}
	return optdate.DaysApart(ea, eb) <= opts.ExpiryWindowDays
}
