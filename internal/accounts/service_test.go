package accounts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tradematch/internal/model"
)

var defaultCodes = model.AccountCodes{LongCall: 1310, LongPut: 1320, ShortCall: 2310, ShortPut: 2320, RealizedGain: 4310}

func TestGetExists(t *testing.T) {
	svc := NewService(DefaultChart())

	acct, ok := svc.Get(1310)
	assert.True(t, ok)
	assert.Equal(t, "Long Calls", acct.Name)

	_, ok = svc.Get(9999)
	assert.False(t, ok)

	assert.True(t, svc.Exists(4310))
	assert.False(t, svc.Exists(9999))
	assert.Len(t, svc.All(), len(DefaultChart()))
}

func TestByType(t *testing.T) {
	svc := NewService(DefaultChart())

	liabilities := svc.ByType(model.AccountTypeLiability)
	assert.Len(t, liabilities, 3)
	for _, a := range liabilities {
		assert.Equal(t, model.AccountTypeLiability, a.Type)
	}
	assert.Len(t, svc.ByType(model.AccountTypeExpense), 2)
}

func TestCheckCodes(t *testing.T) {
	svc := NewService(DefaultChart())
	require.NoError(t, svc.CheckCodes(defaultCodes))

	bad := defaultCodes
	bad.LongCall = 9999
	bad.RealizedGain = 2310
	err := svc.CheckCodes(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "long_call: account 9999 not in chart")
	assert.Contains(t, err.Error(), "realized_gain: account 2310 is liability, want revenue")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	acctDir := filepath.Join(dir, "accounts")
	require.NoError(t, os.MkdirAll(acctDir, 0o755))

	src, err := os.ReadFile("../../testdata/chart-of-accounts.csv")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(acctDir, "chart-of-accounts.csv"), src, 0o644))

	svc, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, svc.All(), 12)
	assert.NoError(t, svc.CheckCodes(defaultCodes))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveRoundTrip(t *testing.T) {
	chart := DefaultChart()
	svc := NewService(chart)

	dir := t.TempDir()
	require.NoError(t, svc.Save(dir))

	_, err := os.Stat(filepath.Join(dir, "accounts", "chart-of-accounts.csv"))
	require.NoError(t, err)

	svc2, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, chart, svc2.All())
}
