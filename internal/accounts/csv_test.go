package accounts

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tradematch/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{ID: 1010, Name: "Brokerage Cash", Type: model.AccountTypeAsset, Description: "Settled cash at the broker"},
		{ID: 4310, Name: "Realized Gain/Loss on Options", Type: model.AccountTypeRevenue, ParentID: 4300},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, accounts, got)
}

func TestParentID(t *testing.T) {
	accounts := []model.Account{
		{ID: 1300, Name: "Option Positions", Type: model.AccountTypeAsset},
		{ID: 1310, Name: "Long Calls", Type: model.AccountTypeAsset, ParentID: 1300},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1300,Option Positions,asset,,\n")

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 0, got[0].ParentID)
	assert.Equal(t, 1300, got[1].ParentID)
}

func TestReadAccounts_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{"bad id", "account_id,account_name,account_type,parent_id,description\nabc,Cash,asset,,\n", "row 2"},
		{"bad parent", "account_id,account_name,account_type,parent_id,description\n1010,Cash,asset,x,\n", "parent_id"},
		{"bad type", "account_id,account_name,account_type,parent_id,description\n1010,Cash,stock,,\n", "account_type"},
		{"field count", "account_id,account_name,account_type,parent_id,description\n1010,Cash,asset\n", "reading accounts CSV"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAccounts(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart()
	require.NotEmpty(t, chart)

	ids := make(map[int]model.Account)
	for _, acct := range chart {
		ids[acct.ID] = acct
	}
	for _, code := range []int{1310, 1320, 2310, 2320, 4310} {
		_, ok := ids[code]
		assert.True(t, ok, "expected option ledger account %d", code)
	}

	for _, acct := range chart {
		assert.NotEmpty(t, acct.Name, "account %d missing name", acct.ID)
		assert.True(t, acct.Type.Valid(), "account %d has type %q", acct.ID, acct.Type)
		if acct.ParentID != 0 {
			parent, ok := ids[acct.ParentID]
			require.True(t, ok, "account %d has missing parent %d", acct.ID, acct.ParentID)
			assert.Equal(t, parent.Type, acct.Type, "account %d differs in type from its parent", acct.ID)
		}
	}
}

func TestReadTestdata(t *testing.T) {
	f, err := os.Open("../../testdata/chart-of-accounts.csv")
	require.NoError(t, err)
	defer f.Close()

	accounts, err := ReadAccounts(f)
	require.NoError(t, err)
	assert.Equal(t, DefaultChart(), accounts, "testdata mirrors the default chart")

	types := make(map[model.AccountType]bool)
	for _, acct := range accounts {
		types[acct.Type] = true
	}
	assert.Len(t, types, 5, "chart spans all five account types")
}
