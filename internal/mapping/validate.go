package mapping

import (
	"fmt"

	"github.com/cleared-dev/tradematch/internal/id"
	"github.com/cleared-dev/tradematch/internal/model"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant int
	TxnID     string
	Detail    string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.TxnID, e.Detail)
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id int) bool
}

// Validate enforces the mapping file invariants over a full set of results:
//
//  1. each feed transaction is mapped at most once
//  2. closing results carry a trade number some opening result carries
//  3. trade numbers are positive integers
//  4. principal is quantity × price × 100
//  5. account codes exist in the chart (skipped when accounts is nil)
func Validate(results []model.MappingResult, accounts AccountChecker) []ValidationError {
	var errs []ValidationError

	opened := make(map[string]bool)
	for _, r := range results {
		if !r.IsClosing {
			opened[r.TradeNum] = true
		}
	}

	seen := make(map[string]bool)
	for _, r := range results {
		if seen[r.TxnID] {
			errs = append(errs, ValidationError{Invariant: 1, TxnID: r.TxnID, Detail: "transaction mapped more than once"})
		}
		seen[r.TxnID] = true

		if r.IsClosing && !opened[r.TradeNum] {
			errs = append(errs, ValidationError{
				Invariant: 2,
				TxnID:     r.TxnID,
				Detail:    fmt.Sprintf("closing trade %q has no opening mapping", r.TradeNum),
			})
		}

		if _, err := id.ParseTradeNum(r.TradeNum); err != nil {
			errs = append(errs, ValidationError{Invariant: 3, TxnID: r.TxnID, Detail: err.Error()})
		}

		want := model.Leg{Price: r.Price, Quantity: r.Quantity}.Principal()
		if !want.Equal(r.Principal) {
			errs = append(errs, ValidationError{
				Invariant: 4,
				TxnID:     r.TxnID,
				Detail:    fmt.Sprintf("principal %s != %d × %s × 100", r.Principal.StringFixed(2), r.Quantity, r.Price),
			})
		}

		if accounts != nil && !accounts.Exists(r.COA) {
			errs = append(errs, ValidationError{Invariant: 5, TxnID: r.TxnID, Detail: fmt.Sprintf("unknown account %d", r.COA)})
		}
	}
	return errs
}
