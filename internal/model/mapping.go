package model

import "github.com/shopspring/decimal"

// Strategy is the normalized strategy tag on a mapping result.
type Strategy string

const (
	StrategyCallCredit   Strategy = "call-credit"
	StrategyPutCredit    Strategy = "put-credit"
	StrategyCallDebit    Strategy = "call-debit"
	StrategyPutDebit     Strategy = "put-debit"
	StrategyIronCondor   Strategy = "iron-condor"
	StrategyLongCall     Strategy = "long-call"
	StrategyShortCall    Strategy = "short-call"
	StrategyLongPut      Strategy = "long-put"
	StrategyShortPut     Strategy = "short-put"
	StrategyUnclassified Strategy = "unclassified"
)

// Confidence grades how tightly a spread matched its feed transactions.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
)

// MappingResult pairs one history leg with the feed transaction it matched.
type MappingResult struct {
	TxnID      string          `json:"txnId"`
	TradeNum   string          `json:"tradeNum"`
	Strategy   Strategy        `json:"strategy"`
	COA        int             `json:"coa"`
	Confidence Confidence      `json:"confidence"`
	MatchedTo  string          `json:"matchedTo,omitempty"`
	Quantity   int64           `json:"rhQuantity"`
	Price      decimal.Decimal `json:"rhPrice"`
	Principal  decimal.Decimal `json:"rhPrincipal"`
	Fees       decimal.Decimal `json:"rhFees"`
	NetAmount  decimal.Decimal `json:"rhNetAmount"`
	Action     Action          `json:"rhAction"`
	IsClosing  bool            `json:"isClosing"`
}
