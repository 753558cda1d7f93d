package importer

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/tradematch/internal/model"
	"github.com/cleared-dev/tradematch/internal/optdate"
)

// ErrNoSpreads is returned when history text yields no complete spread.
var ErrNoSpreads = errors.New("no spreads found")

const (
	defaultLookahead    = 30
	defaultLegLookahead = 15
)

// HistoryParser parses order history copied out of the Robinhood web app.
// The text has no documented grammar, so parsing is best effort: lines that
// fit no pattern are skipped and incomplete legs are dropped.
type HistoryParser struct {
	// Now pins "today" for year inference. Defaults to time.Now.
	Now func() time.Time
	// Lookahead bounds the forward search for a spread's "Limit price".
	Lookahead int
	// LegLookahead bounds the forward search for a leg's details.
	LegLookahead int
	Logger       *zap.Logger
}

// NewHistoryParser returns a parser with default windows.
func NewHistoryParser(logger *zap.Logger) *HistoryParser {
	return &HistoryParser{Logger: logger}
}

// Format returns the parser name.
func (p *HistoryParser) Format() string { return DefaultFormat }

// Parse reads history text and returns spreads sorted by first fill.
func (p *HistoryParser) Parse(r io.Reader) ([]model.Spread, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	spreads := p.parse(string(data))
	if len(spreads) == 0 {
		return nil, ErrNoSpreads
	}
	return spreads, nil
}

// ParseText parses history text and never fails: any internal fault is
// logged and reported as no spreads.
func (p *HistoryParser) ParseText(text string) (spreads []model.Spread) {
	defer func() {
		if r := recover(); r != nil {
			p.logger().Error("history parse failed", zap.Any("panic", r))
			spreads = []model.Spread{}
		}
	}()
	spreads = p.parse(text)
	if len(spreads) == 0 {
		p.logger().Info("history parse", zap.Error(ErrNoSpreads))
		return []model.Spread{}
	}
	return spreads
}

// ParseHistory parses history text with default settings.
func ParseHistory(text string) []model.Spread {
	return NewHistoryParser(nil).ParseText(text)
}

func (p *HistoryParser) parse(text string) []model.Spread {
	bp := &blockParser{
		toks:         tokenize(text),
		today:        p.today(),
		lookahead:    positive(p.Lookahead, defaultLookahead),
		legLookahead: positive(p.LegLookahead, defaultLegLookahead),
		log:          p.logger(),
	}
	spreads := bp.run()
	sort.SliceStable(spreads, func(i, j int) bool {
		return spreads[i].Filled().Before(spreads[j].Filled())
	})
	p.logger().Debug("history parsed", zap.Int("spreads", len(spreads)), zap.Int("lines", len(bp.toks)))
	return spreads
}

func (p *HistoryParser) today() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *HistoryParser) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func positive(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// blockParser walks the token stream, turning header blocks and bare leg
// lines into spreads.
type blockParser struct {
	toks         []token
	pos          int
	today        time.Time
	lookahead    int
	legLookahead int
	log          *zap.Logger
}

func (bp *blockParser) run() []model.Spread {
	var spreads []model.Spread
	for bp.pos < len(bp.toks) {
		switch bp.toks[bp.pos].kind {
		case tokSpreadHeader:
			if s, ok := bp.spread(); ok {
				spreads = append(spreads, s)
			}
		case tokLeg:
			if s, ok := bp.single(); ok {
				spreads = append(spreads, s)
			}
		default:
			bp.pos++
		}
	}
	return spreads
}

// spread consumes a header block: header, submit date, provisional limit
// price, then legs until a terminator.
func (bp *blockParser) spread() (model.Spread, bool) {
	h := bp.toks[bp.pos]
	s := model.Spread{Symbol: h.symbol, Strategy: h.strategy}
	bp.pos++

	if bp.pos < len(bp.toks) && bp.toks[bp.pos].kind == tokText {
		s.SubmitDate = bp.toks[bp.pos].text
		bp.pos++
	}
	if bp.pos < len(bp.toks) && bp.toks[bp.pos].kind == tokText {
		if v, ok := parseMoney(bp.toks[bp.pos].text); ok {
			s.LimitPrice = v
		}
		bp.pos++
	}
	if v, ok := bp.limitPrice(bp.pos); ok {
		s.LimitPrice = v
	}

loop:
	for bp.pos < len(bp.toks) {
		t := bp.toks[bp.pos]
		switch t.kind {
		case tokSpreadHeader, tokPager:
			break loop
		case tokConfirmation:
			bp.pos++
			break loop
		case tokLeg:
			if leg, ok := bp.leg(bp.pos); ok {
				s.Legs = append(s.Legs, leg)
			}
			bp.pos++
		default:
			bp.pos++
		}
	}

	if len(s.Legs) == 0 {
		bp.log.Debug("dropping spread without legs", zap.String("symbol", s.Symbol), zap.String("strategy", s.Strategy))
		return model.Spread{}, false
	}
	return s, true
}

// single turns a bare leg line into a one-leg spread.
func (bp *blockParser) single() (model.Spread, bool) {
	leg, ok := bp.leg(bp.pos)
	bp.pos++
	if !ok {
		return model.Spread{}, false
	}
	return model.Spread{
		Symbol:     leg.Symbol,
		Strategy:   singleStrategy(leg),
		SubmitDate: leg.FillDate,
		LimitPrice: leg.Price,
		Legs:       []model.Leg{leg},
	}, true
}

// singleStrategy names a one-leg order. A closing leg is named after the
// position it unwinds: selling to close means the position was long.
func singleStrategy(leg model.Leg) string {
	kind := "Call"
	if leg.Type == model.OptionPut {
		kind = "Put"
	}
	long := leg.Action == model.ActionBuy
	if leg.Position == model.PositionClose {
		long = leg.Action == model.ActionSell
	}
	if long {
		return "Long " + kind
	}
	return "Short " + kind
}

// limitPrice looks for an authoritative "Limit price" label after from.
func (bp *blockParser) limitPrice(from int) (decimal.Decimal, bool) {
	end := min(from+bp.lookahead, len(bp.toks))
	for i := from; i < end; i++ {
		switch bp.toks[i].kind {
		case tokSpreadHeader, tokConfirmation, tokPager:
			return decimal.Zero, false
		case tokLimitLabel:
			if i+1 < len(bp.toks) {
				return parseMoney(bp.toks[i+1].text)
			}
		}
	}
	return decimal.Zero, false
}

// leg reads the leg line at i and its detail lines. The leg is kept only
// when it has a positive fill price and a fill date.
func (bp *blockParser) leg(i int) (model.Leg, bool) {
	t := bp.toks[i]
	strike, ok := parseNumber(t.strike)
	if !ok {
		return model.Leg{}, false
	}
	leg := model.Leg{
		Action:   model.Action(t.action),
		Symbol:   t.symbol,
		Strike:   strike,
		Expiry:   t.expiry,
		Type:     model.OptionType(t.optType),
		Position: model.PositionUnknown,
	}

	end := min(i+1+bp.legLookahead, len(bp.toks))
scan:
	for j := i + 1; j < end; j++ {
		d := bp.toks[j]
		if d.kind == tokLeg || d.kind.endsBlock() {
			break scan
		}
		switch d.kind {
		case tokPositionEffect:
			if j+1 < len(bp.toks) {
				leg.Position = model.PositionOpen
				if strings.Contains(strings.ToLower(bp.toks[j+1].text), "close") {
					leg.Position = model.PositionClose
				}
			}
		case tokContracts:
			if q, ok := parseNumber(d.quantity); ok {
				leg.Quantity = q.IntPart()
			}
			if p, ok := parseNumber(d.price); ok {
				leg.Price = p
			}
		case tokFillTime:
			leg.FillDate = d.date
			leg.FillTime = d.clock
		case tokFeesLabel:
			if j+1 < len(bp.toks) {
				if v, ok := parseMoney(bp.toks[j+1].text); ok {
					leg.Fees = v
				}
			}
		case tokCostLabel:
			if j+1 < len(bp.toks) {
				if v, ok := parseMoney(bp.toks[j+1].text); ok {
					leg.NetAmount = v
				}
			}
		}
	}

	if !leg.Price.IsPositive() || leg.FillDate == "" {
		bp.log.Debug("dropping incomplete leg", zap.String("line", t.text))
		return model.Leg{}, false
	}

	filled, err := optdate.ResolveFill(leg.FillDate, bp.today)
	if err != nil {
		bp.log.Debug("dropping leg with bad fill date", zap.String("line", t.text), zap.Error(err))
		return model.Leg{}, false
	}
	if clock, err := optdate.ParseClock(leg.FillTime); err == nil {
		filled = filled.Add(clock)
	}
	leg.Filled = filled
	return leg, true
}
