package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/tradematch/internal/model"
	"github.com/cleared-dev/tradematch/internal/optdate"
)

// candidate is an unconsumed feed transaction with its date resolved.
type candidate struct {
	txn  *model.FeedTransaction
	date time.Time
}

// bucket groups candidates that may have filled on one calendar day.
type bucket struct {
	day   time.Time
	cands []candidate
}

// matcher runs the leg-matching search for one reconciliation pass. It owns
// the consumed set; feed transactions are only read.
type matcher struct {
	opts     Options
	txns     []model.FeedTransaction
	consumed map[string]bool
	log      *zap.Logger
}

// pool returns unconsumed transactions on symbol with a parseable date.
func (m *matcher) pool(symbol string) []candidate {
	var out []candidate
	for i := range m.txns {
		txn := &m.txns[i]
		if m.consumed[txn.ID] || txn.Underlying() != symbol {
			continue
		}
		d, err := time.Parse(optdate.ISOFormat, txn.Date)
		if err != nil {
			m.log.Debug("skipping feed transaction with bad date", zap.String("txn_id", txn.ID), zap.String("date", txn.Date))
			continue
		}
		out = append(out, candidate{txn: txn, date: d})
	}
	return out
}

// buckets groups candidates by day. Each candidate also lands in the
// buckets FillWindowDays either side so fills spanning midnight or a weekend
// can still pair up. Offsets are tried own day first, then -1, +1, -2, ...;
// buckets keep first-insertion order.
func (m *matcher) buckets(cands []candidate) []*bucket {
	var order []*bucket
	byDay := make(map[time.Time]*bucket)
	offsets := []int{0}
	for d := 1; d <= m.opts.FillWindowDays; d++ {
		offsets = append(offsets, -d, d)
	}
	for _, c := range cands {
		for _, off := range offsets {
			day := c.date.AddDate(0, 0, off)
			b, ok := byDay[day]
			if !ok {
				b = &bucket{day: day}
				byDay[day] = b
				order = append(order, b)
			}
			b.cands = append(b.cands, c)
		}
	}
	return order
}

// matchSpread finds feed transactions for every leg of s. It is all or
// nothing: the result is nil unless each leg got its own transaction.
func (m *matcher) matchSpread(s model.Spread, tradeNum string, closing bool) []model.MappingResult {
	k := len(s.Legs)
	if k == 0 {
		return nil
	}
	for _, b := range m.buckets(m.pool(s.Symbol)) {
		if len(b.cands) < k {
			continue
		}
		combo := make([]candidate, k)
		for idx := range combinations(len(b.cands), k) {
			for i, j := range idx {
				combo[i] = b.cands[j]
			}
			if !m.amountsFit(s, combo) {
				continue
			}
			assigned, ok := m.assign(s.Legs, combo)
			if !ok {
				continue
			}
			return m.emit(s, assigned, tradeNum, closing)
		}
	}
	return nil
}

// amountsFit checks that the combination shares one quantity and that its
// combined per-contract amount is within LimitTolerance of the limit price.
func (m *matcher) amountsFit(s model.Spread, combo []candidate) bool {
	qty := combo[0].txn.Quantity.Abs()
	if qty.IsZero() {
		return false
	}
	sum := decimal.Zero
	for _, c := range combo {
		if !c.txn.Quantity.Abs().Equal(qty) {
			return false
		}
		sum = sum.Add(c.txn.Amount)
	}
	perContract := sum.Abs().Div(qty)
	return perContract.Sub(s.LimitPrice).Abs().LessThanOrEqual(m.opts.LimitTolerance)
}

// assign gives each leg, in order, the first unused transaction that fits it.
func (m *matcher) assign(legs []model.Leg, combo []candidate) ([]candidate, bool) {
	used := make([]bool, len(combo))
	out := make([]candidate, len(legs))
	for i, leg := range legs {
		found := false
		for j, c := range combo {
			if used[j] || !m.legFits(leg, c.txn) {
				continue
			}
			used[j] = true
			out[i] = c
			found = true
			break
		}
		if !found {
			return nil, false
		}
	}
	return out, true
}

// legFits applies the per-leg predicate.
func (m *matcher) legFits(leg model.Leg, txn *model.FeedTransaction) bool {
	if !m.opts.strikeMatches(txn.Strike(), leg.Strike) {
		return false
	}
	if txn.ContractType() != leg.Type || txn.Action() != leg.Action {
		return false
	}
	if txn.SaysToClose() != (leg.Position == model.PositionClose) {
		if m.opts.StrictPositionEffect {
			return false
		}
		m.log.Debug("position effect disagrees with feed name",
			zap.String("txn_id", txn.ID), zap.String("name", txn.Name), zap.String("position", string(leg.Position)))
	}
	if txn.Price.Abs().Sub(leg.Price).Abs().GreaterThan(m.opts.legPriceTolerance(leg.Price)) {
		return false
	}
	if !txn.Quantity.Abs().Equal(decimal.NewFromInt(leg.Quantity)) {
		return false
	}
	return m.expiryFits(leg, txn)
}

func (m *matcher) expiryFits(leg model.Leg, txn *model.FeedTransaction) bool {
	legExp, err := optdate.ResolveExpiry(leg.Expiry, expiryRef(leg))
	if err != nil {
		return false
	}
	txnExp, err := optdate.ParseFeedExpiry(txn.Expiry())
	if err != nil {
		return false
	}
	return optdate.DaysApart(legExp, txnExp) <= m.opts.ExpiryWindowDays
}

// emit consumes the assigned transactions and builds one result per leg.
func (m *matcher) emit(s model.Spread, assigned []candidate, tradeNum string, closing bool) []model.MappingResult {
	confidence := model.ConfidenceHigh
	for _, c := range assigned[1:] {
		if !c.date.Equal(assigned[0].date) {
			confidence = model.ConfidenceMedium
			break
		}
	}

	strategy := NormalizeStrategy(s.Strategy)
	if strategy == model.StrategyUnclassified {
		m.log.Warn("unclassified strategy", zap.String("symbol", s.Symbol), zap.String("strategy", s.Strategy))
	}

	results := make([]model.MappingResult, len(assigned))
	for i, c := range assigned {
		leg := s.Legs[i]
		m.consumed[c.txn.ID] = true
		results[i] = model.MappingResult{
			TxnID:      c.txn.ID,
			TradeNum:   tradeNum,
			Strategy:   strategy,
			COA:        AccountFor(leg, closing, m.opts.Accounts),
			Confidence: confidence,
			MatchedTo:  describe(s, leg, c.txn),
			Quantity:   leg.Quantity,
			Price:      leg.Price,
			Principal:  leg.Principal(),
			Fees:       leg.Fees,
			NetAmount:  leg.NetAmount,
			Action:     leg.Action,
			IsClosing:  closing,
		}
	}
	return results
}

func describe(s model.Spread, leg model.Leg, txn *model.FeedTransaction) string {
	return fmt.Sprintf("%s %s: %s %s $%s %s %s (%d @ $%s) -> %s %s",
		s.Symbol, s.Strategy, leg.Action, leg.Symbol, leg.Strike.String(), leg.Type, leg.Expiry,
		leg.Quantity, leg.Price.StringFixed(2), txn.Date, txn.Name)
}
