package model

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Account represents a row in chart-of-accounts.csv.
type Account struct {
	ID          int
	Name        string
	Type        AccountType
	ParentID    int // 0 = top-level
	Description string
}

// AccountCodes are the ledger buckets a matched option leg can post to.
// Opening legs split on direction and contract type; every closing leg
// posts to RealizedGain.
type AccountCodes struct {
	LongCall     int
	LongPut      int
	ShortCall    int
	ShortPut     int
	RealizedGain int
}

// All returns the codes in a fixed order.
func (c AccountCodes) All() []int {
	return []int{c.LongCall, c.LongPut, c.ShortCall, c.ShortPut, c.RealizedGain}
}

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}
