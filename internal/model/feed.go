package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Security carries the option metadata attached to a feed transaction.
type Security struct {
	TickerSymbol           string          `json:"ticker_symbol,omitempty"`
	OptionUnderlyingTicker string          `json:"option_underlying_ticker,omitempty"`
	OptionStrikePrice      decimal.Decimal `json:"option_strike_price"`
	OptionExpirationDate   string          `json:"option_expiration_date,omitempty"`
	OptionContractType     string          `json:"option_contract_type,omitempty"`
}

// FeedTransaction is a previously imported aggregator record that history
// legs are reconciled against.
type FeedTransaction struct {
	ID       string          `json:"id"`
	Date     string          `json:"date"` // YYYY-MM-DD
	Name     string          `json:"name"`
	Symbol   string          `json:"symbol"`
	Type     string          `json:"type"`
	Subtype  string          `json:"subtype,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
	Security *Security       `json:"security,omitempty"`
}

// Underlying returns the underlying ticker, preferring the option metadata.
func (t FeedTransaction) Underlying() string {
	if t.Security != nil && t.Security.OptionUnderlyingTicker != "" {
		return strings.ToUpper(t.Security.OptionUnderlyingTicker)
	}
	if t.Symbol != "" {
		return strings.ToUpper(t.Symbol)
	}
	if t.Security != nil {
		return strings.ToUpper(t.Security.TickerSymbol)
	}
	return ""
}

// Action derives buy/sell from type, then subtype, then the name prefix.
// Returns "" when none of them says.
func (t FeedTransaction) Action() Action {
	for _, s := range []string{t.Type, t.Subtype, t.Name} {
		s = strings.ToLower(strings.TrimSpace(s))
		switch {
		case strings.HasPrefix(s, "buy"):
			return ActionBuy
		case strings.HasPrefix(s, "sell"):
			return ActionSell
		}
	}
	return ""
}

// ContractType returns the option contract type, or "" for non-options.
func (t FeedTransaction) ContractType() OptionType {
	if t.Security == nil {
		return ""
	}
	switch strings.ToLower(t.Security.OptionContractType) {
	case "call":
		return OptionCall
	case "put":
		return OptionPut
	}
	return ""
}

// Strike returns the option strike, zero when absent.
func (t FeedTransaction) Strike() decimal.Decimal {
	if t.Security == nil {
		return decimal.Zero
	}
	return t.Security.OptionStrikePrice
}

// Expiry returns the raw option expiration text.
func (t FeedTransaction) Expiry() string {
	if t.Security == nil {
		return ""
	}
	return t.Security.OptionExpirationDate
}

// SaysToClose reports whether the free-text name marks a closing execution.
func (t FeedTransaction) SaysToClose() bool {
	return strings.Contains(strings.ToLower(t.Name), "to close")
}
