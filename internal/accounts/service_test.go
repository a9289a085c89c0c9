package accounts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/sfimport/internal/config"
	"github.com/cleared-dev/sfimport/internal/model"
)

func testConfig() *config.Config {
	cfg := config.Default("Household")
	cfg.Accounts = []config.AccountConfig{
		{ID: "ACT-abc123", Name: "Total Checking", Account: "Assets:Checking:Chase"},
		{ID: "ACT-def456", Account: "Liabilities:CreditCard:Amex", Currency: "EUR", ExpenseAccount: "Expenses:Card", IncomeAccount: "Income:Uncategorized"},
	}
	return cfg
}

func TestFromConfig(t *testing.T) {
	chart := FromConfig(testConfig())

	var names []string
	for _, a := range chart {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{
		"Assets:Checking:Chase",
		"Liabilities:CreditCard:Amex",
		"Expenses:Uncategorized",
		"Income:Uncategorized",
		"Expenses:Card",
	}, names)

	assert.Equal(t, "USD", chart[0].Currency)
	assert.Equal(t, "ACT-abc123", chart[0].SourceID)
	assert.Equal(t, "EUR", chart[1].Currency)
	assert.Equal(t, model.AccountTypeLiability, chart[1].Type)
}

func TestGetExists(t *testing.T) {
	svc := NewService(FromConfig(testConfig()))

	acct, ok := svc.Get("Assets:Checking:Chase")
	assert.True(t, ok)
	assert.Equal(t, "Total Checking", acct.Description)

	_, ok = svc.Get("Assets:Nowhere")
	assert.False(t, ok)

	assert.True(t, svc.Exists("Expenses:Card"))
	assert.False(t, svc.Exists("Expenses:Nowhere"))
}

func TestByType(t *testing.T) {
	svc := NewService(FromConfig(testConfig()))
	expenses := svc.ByType(model.AccountTypeExpense)
	assert.Len(t, expenses, 2)
	for _, a := range expenses {
		assert.Equal(t, model.AccountTypeExpense, a.Type)
	}
}

func TestMerge(t *testing.T) {
	svc := NewService([]model.Account{
		{Name: "Assets:Checking:Chase", Type: model.AccountTypeAsset, Description: "kept"},
		{Name: "Equity:Opening-Balances", Type: model.AccountTypeEquity},
	})
	merged := svc.Merge(FromConfig(testConfig()))

	assert.Len(t, merged.All(), 6)
	acct, _ := merged.Get("Assets:Checking:Chase")
	assert.Equal(t, "kept", acct.Description, "existing rows win")
	assert.Len(t, svc.All(), 2, "receiver is unchanged")
}

func TestLoadFromTestdata(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "accounts"), 0o755))

	src, err := os.ReadFile("../../testdata/chart-of-accounts.csv")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ChartPath), src, 0o644))

	svc, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, svc.All(), 8)
	assert.True(t, svc.Exists("Assets:Savings:Ally"))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveRoundTrip(t *testing.T) {
	chart := FromConfig(testConfig())
	dir := t.TempDir()
	require.NoError(t, NewService(chart).Save(dir))

	_, err := os.Stat(filepath.Join(dir, ChartPath))
	require.NoError(t, err)

	svc, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, chart, svc.All())
}
