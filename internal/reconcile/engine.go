package reconcile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cleared-dev/tradematch/internal/model"
)

// Engine keeps a trade counter across Match calls so an account's history
// can be imported in batches. Call ResetCounter before an unrelated import.
type Engine struct {
	opts    Options
	counter int
}

// NewEngine returns an Engine whose counter starts at opts.StartTradeNum.
func NewEngine(opts Options) *Engine {
	e := &Engine{opts: opts}
	e.counter = opts.startTradeNum()
	return e
}

// Match reconciles spreads against txns and advances the counter. It never
// panics; an unexpected failure is logged and yields an empty result.
func (e *Engine) Match(spreads []model.Spread, txns []model.FeedTransaction) (out []model.MappingResult) {
	defer func() {
		if r := recover(); r != nil {
			e.opts.logger().Error("reconcile failed", zap.Error(fmt.Errorf("panic: %v", r)))
			out = []model.MappingResult{}
		}
	}()

	opts := e.opts
	opts.StartTradeNum = e.counter
	res := Reconcile(spreads, txns, opts)
	e.counter = res.NextTradeNum
	return res.Mappings
}

// ResetCounter restarts numbering at the configured start.
func (e *Engine) ResetCounter() {
	e.counter = e.opts.startTradeNum()
}

// Counter returns the trade number the next opening spread will get.
func (e *Engine) Counter() int {
	return e.counter
}
