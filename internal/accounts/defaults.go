package accounts

import "github.com/cleared-dev/tradematch/internal/model"

// DefaultChart returns the chart of accounts for an options brokerage
// account. The 13xx/23xx leaves and 4310 are the codes the reconciler
// posts to by default.
func DefaultChart() []model.Account {
	return []model.Account{
		{ID: 1010, Name: "Brokerage Cash", Type: model.AccountTypeAsset, Description: "Settled cash at the broker"},
		{ID: 1300, Name: "Option Positions", Type: model.AccountTypeAsset, Description: "Purchased option contracts"},
		{ID: 1310, Name: "Long Calls", Type: model.AccountTypeAsset, ParentID: 1300},
		{ID: 1320, Name: "Long Puts", Type: model.AccountTypeAsset, ParentID: 1300},
		{ID: 2300, Name: "Written Options", Type: model.AccountTypeLiability, Description: "Obligations on sold option contracts"},
		{ID: 2310, Name: "Short Calls", Type: model.AccountTypeLiability, ParentID: 2300},
		{ID: 2320, Name: "Short Puts", Type: model.AccountTypeLiability, ParentID: 2300},
		{ID: 3010, Name: "Owner's Equity", Type: model.AccountTypeEquity},
		{ID: 4300, Name: "Trading Income", Type: model.AccountTypeRevenue},
		{ID: 4310, Name: "Realized Gain/Loss on Options", Type: model.AccountTypeRevenue, ParentID: 4300, Description: "Closed option positions"},
		{ID: 5010, Name: "Commissions", Type: model.AccountTypeExpense},
		{ID: 5020, Name: "Regulatory Fees", Type: model.AccountTypeExpense, Description: "SEC and FINRA trading activity fees"},
	}
}
