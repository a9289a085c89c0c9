package journal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/sfimport/internal/model"
)

type fakeAccounts map[string]bool

func (f fakeAccounts) Exists(name string) bool { return f[name] }

func testAccounts() fakeAccounts {
	return fakeAccounts{
		"Assets:Checking:Chase":  true,
		"Expenses:Uncategorized": true,
		"Income:Uncategorized":   true,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testTxn(date time.Time, amount, sfID string) model.Transaction {
	meta := model.Metadata{model.MetaSimpleFINID: sfID}
	return model.Transaction{
		Date:      date,
		Flag:      model.FlagCleared,
		Payee:     "Blue Bottle",
		Narration: "Coffee, large",
		Meta:      meta,
		Postings: []model.Posting{
			{Account: "Assets:Checking:Chase", Units: model.NewAmount(decimal.RequireFromString(amount), "USD"), Meta: meta.Clone()},
			{Account: "Expenses:Uncategorized", Meta: meta.Clone()},
		},
	}
}

func testBalance(date time.Time, amount string) model.Balance {
	return model.Balance{
		Date:    date,
		Account: "Assets:Checking:Chase",
		Amount:  model.Amount{Number: decimal.RequireFromString(amount), Currency: "USD"},
	}
}
