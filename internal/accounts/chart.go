package accounts

import (
	"github.com/cleared-dev/sfimport/internal/config"
	"github.com/cleared-dev/sfimport/internal/model"
)

// FromConfig returns the chart implied by a configuration: every mapped
// account followed by the counter accounts, each listed once.
func FromConfig(cfg *config.Config) []model.Account {
	var chart []model.Account
	seen := make(map[string]bool)
	add := func(acct model.Account) {
		if acct.Name == "" || seen[acct.Name] {
			return
		}
		seen[acct.Name] = true
		acct.Type = model.TypeOf(acct.Name)
		chart = append(chart, acct)
	}

	for _, a := range cfg.Accounts {
		currency := a.Currency
		if currency == "" {
			currency = cfg.Ledger.DefaultCurrency
		}
		add(model.Account{Name: a.Account, Currency: currency, SourceID: a.ID, Description: a.Name})
	}
	add(model.Account{Name: cfg.Ledger.ExpenseAccount, Description: "Default outflow account"})
	add(model.Account{Name: cfg.Ledger.IncomeAccount, Description: "Default inflow account"})
	for _, a := range cfg.Accounts {
		add(model.Account{Name: a.ExpenseAccount})
		add(model.Account{Name: a.IncomeAccount})
	}
	return chart
}
