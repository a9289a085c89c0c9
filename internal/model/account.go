package model

import (
	"regexp"
	"strings"
)

// AccountType classifies ledger accounts by their root segment.
type AccountType string

const (
	AccountTypeAsset     AccountType = "Assets"
	AccountTypeLiability AccountType = "Liabilities"
	AccountTypeEquity    AccountType = "Equity"
	AccountTypeIncome    AccountType = "Income"
	AccountTypeExpense   AccountType = "Expenses"
)

// Account represents a row in chart-of-accounts.csv.
type Account struct {
	Name        string // "Assets:Checking:Chase"
	Type        AccountType
	Currency    string
	SourceID    string // SimpleFIN account ID, empty for counter accounts
	Description string
}

// TypeOf returns the account type for a colon-separated ledger account name,
// or "" if the root segment is not one of the five standard roots.
func TypeOf(name string) AccountType {
	root, _, _ := strings.Cut(name, ":")
	switch t := AccountType(root); t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return t
	}
	return ""
}

// AccountRoute describes where transactions from one SimpleFIN account go.
type AccountRoute struct {
	Account        string
	Currency       string // overrides the snapshot currency when set
	ExpenseAccount string // counter account for outflows; falls back to the global default
	IncomeAccount  string // counter account for inflows; falls back to the global default
}

// AccountMapping maps SimpleFIN account IDs to ledger routes.
// IDs absent from the mapping are not tracked.
type AccountMapping map[string]AccountRoute

var currencyRe = regexp.MustCompile(`^[A-Z][A-Z0-9'._-]{0,22}[A-Z0-9]$`)

// ValidCurrency reports whether c looks like a ledger commodity code ("USD").
func ValidCurrency(c string) bool {
	return currencyRe.MatchString(c)
}
