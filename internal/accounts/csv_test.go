package accounts

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/sfimport/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{Name: "Assets:Checking:Chase", Type: model.AccountTypeAsset, Currency: "USD", SourceID: "ACT-abc123", Description: "Total Checking"},
		{Name: "Expenses:Uncategorized", Type: model.AccountTypeExpense},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, accounts))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, accounts, got)
}

func TestReadTestdata(t *testing.T) {
	f, err := os.Open("../../testdata/chart-of-accounts.csv")
	require.NoError(t, err)
	defer f.Close()

	accounts, err := ReadAccounts(f)
	require.NoError(t, err)
	require.Len(t, accounts, 8)

	types := make(map[model.AccountType]bool)
	for _, acct := range accounts {
		types[acct.Type] = true
	}
	assert.True(t, types[model.AccountTypeAsset])
	assert.True(t, types[model.AccountTypeLiability])
	assert.True(t, types[model.AccountTypeEquity])
	assert.True(t, types[model.AccountTypeIncome])
	assert.True(t, types[model.AccountTypeExpense])
	assert.Equal(t, "ACT-def456", accounts[2].SourceID)
}

func TestUnmarshalAccount_Errors(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want string
	}{
		{"field count", []string{"Assets:Cash"}, "expected 5 fields"},
		{"bad root", []string{"Cash", "", "", "", ""}, "no valid root"},
		{"type mismatch", []string{"Assets:Cash", "Expenses", "", "", ""}, "does not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalAccount(tt.row)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUnmarshalAccount_InfersType(t *testing.T) {
	acct, err := UnmarshalAccount([]string{"Liabilities:Loan", "", "", "", ""})
	require.NoError(t, err)
	assert.Equal(t, model.AccountTypeLiability, acct.Type)
}

func TestReadAccounts_RowNumberInError(t *testing.T) {
	in := strings.Join(header, ",") + "\nAssets:Cash,Assets,,,\nBogus,,,,\n"
	_, err := ReadAccounts(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}
