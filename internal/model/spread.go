package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action is the side of an option execution.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// OptionType is the contract type of an option.
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// PositionEffect says whether a leg opens or closes a position.
type PositionEffect string

const (
	PositionOpen    PositionEffect = "open"
	PositionClose   PositionEffect = "close"
	PositionUnknown PositionEffect = "unknown"
)

// ContractMultiplier is the number of shares one option contract controls.
var ContractMultiplier = decimal.NewFromInt(100)

// Leg is one option execution inside a Spread, as read from brokerage history.
// Expiry and FillDate keep the raw "M/D" text; the year is resolved on demand
// because the export never carries it.
type Leg struct {
	Action    Action          `json:"action"`
	Symbol    string          `json:"symbol"`
	Strike    decimal.Decimal `json:"strike"`
	Expiry    string          `json:"expiry"`
	Type      OptionType      `json:"type"`
	Position  PositionEffect  `json:"position"`
	Price     decimal.Decimal `json:"price"`    // per share, as quoted
	Quantity  int64           `json:"quantity"` // contracts
	FillDate  string          `json:"fillDate"`
	FillTime  string          `json:"fillTime,omitempty"`
	Fees      decimal.Decimal `json:"fees"`
	NetAmount decimal.Decimal `json:"netAmount"`
	// Filled is the resolved fill instant used for chronological ordering.
	Filled time.Time `json:"filled"`
}

// Principal returns quantity × price × 100.
func (l Leg) Principal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity)).Mul(ContractMultiplier)
}

// Spread is one strategy order made of one or more legs.
type Spread struct {
	Symbol     string          `json:"symbol"`
	Strategy   string          `json:"strategy"`
	SubmitDate string          `json:"submitDate,omitempty"`
	LimitPrice decimal.Decimal `json:"limitPrice"`
	Legs       []Leg           `json:"legs"`
}

// IsOpen reports whether every leg opens a position.
func (s Spread) IsOpen() bool {
	if len(s.Legs) == 0 {
		return false
	}
	for _, l := range s.Legs {
		if l.Position != PositionOpen {
			return false
		}
	}
	return true
}

// Filled returns the first leg's fill instant, or the zero time.
func (s Spread) Filled() time.Time {
	if len(s.Legs) == 0 {
		return time.Time{}
	}
	return s.Legs[0].Filled
}
