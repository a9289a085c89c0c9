// Package mapper turns SimpleFIN account snapshots into ledger entries.
package mapper

import (
	"github.com/cleared-dev/sfimport/internal/model"
)

// Defaults used when neither the route nor the snapshot provide a value.
const (
	DefaultCurrency       = "USD"
	DefaultExpenseAccount = "Expenses:Uncategorized"
	DefaultIncomeAccount  = "Income:Uncategorized"
)

// BalanceTiming selects which day a balance assertion is dated.
type BalanceTiming string

const (
	// StartOfDay dates the assertion the day after the reported balance date,
	// since start-of-day ledgers (Beancount) check balances before that day's postings.
	StartOfDay BalanceTiming = "start_of_day"
	// EndOfDay dates the assertion on the reported balance date itself.
	EndOfDay BalanceTiming = "end_of_day"
)

// Options holds the global settings of a Mapper.
type Options struct {
	DefaultCurrency       string
	DefaultExpenseAccount string
	DefaultIncomeAccount  string
	BalanceTiming         BalanceTiming
}

// DefaultOptions returns Options with the stock defaults.
func DefaultOptions() Options {
	return Options{
		DefaultCurrency:       DefaultCurrency,
		DefaultExpenseAccount: DefaultExpenseAccount,
		DefaultIncomeAccount:  DefaultIncomeAccount,
		BalanceTiming:         StartOfDay,
	}
}

// Mapper converts snapshots to entries using a fixed account mapping.
// It holds no mutable state and is safe for concurrent use.
type Mapper struct {
	routes model.AccountMapping
	opts   Options
}

// New creates a Mapper. Empty option fields are filled from DefaultOptions.
func New(routes model.AccountMapping, opts Options) *Mapper {
	def := DefaultOptions()
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = def.DefaultCurrency
	}
	if opts.DefaultExpenseAccount == "" {
		opts.DefaultExpenseAccount = def.DefaultExpenseAccount
	}
	if opts.DefaultIncomeAccount == "" {
		opts.DefaultIncomeAccount = def.DefaultIncomeAccount
	}
	if opts.BalanceTiming == "" {
		opts.BalanceTiming = def.BalanceTiming
	}
	return &Mapper{routes: routes, opts: opts}
}

// Tracks reports whether the SimpleFIN account ID is mapped.
func (m *Mapper) Tracks(accountID string) bool {
	_, ok := m.routes[accountID]
	return ok
}

// Map returns the transactions of snap in source order followed by one balance
// assertion. Untracked accounts yield nil.
func (m *Mapper) Map(snap model.AccountSnapshot) []model.Entry {
	route, ok := m.routes[snap.ID]
	if !ok {
		return nil
	}
	r := m.resolve(route, snap)

	entries := make([]model.Entry, 0, len(snap.Transactions)+1)
	for _, rec := range snap.Transactions {
		entries = append(entries, r.transaction(rec))
	}
	entries = append(entries, r.balance(snap, m.opts.BalanceTiming))
	return entries
}

// MapAll maps each snapshot in order and concatenates the results.
func (m *Mapper) MapAll(snaps []model.AccountSnapshot) []model.Entry {
	var entries []model.Entry
	for _, snap := range snaps {
		entries = append(entries, m.Map(snap)...)
	}
	return entries
}

// resolvedRoute is an AccountRoute with every fallback applied.
type resolvedRoute struct {
	account  string
	currency string
	expense  string
	income   string
}

func (m *Mapper) resolve(route model.AccountRoute, snap model.AccountSnapshot) resolvedRoute {
	r := resolvedRoute{
		account:  route.Account,
		currency: route.Currency,
		expense:  route.ExpenseAccount,
		income:   route.IncomeAccount,
	}
	if r.currency == "" {
		r.currency = snap.Currency
	}
	if r.currency == "" {
		r.currency = m.opts.DefaultCurrency
	}
	if r.expense == "" {
		r.expense = m.opts.DefaultExpenseAccount
	}
	if r.income == "" {
		r.income = m.opts.DefaultIncomeAccount
	}
	return r
}

func (r resolvedRoute) transaction(rec model.TransactionRecord) model.Transaction {
	counter := r.income
	if rec.Amount.IsNegative() {
		counter = r.expense
	}

	return model.Transaction{
		Date:      model.Date(rec.Posted),
		Flag:      model.FlagCleared,
		Payee:     rec.Payee,
		Narration: rec.Description,
		Meta:      idMeta(rec.ID),
		Postings: []model.Posting{
			{
				Account: r.account,
				Units:   model.NewAmount(rec.Amount, r.currency),
				Meta:    idMeta(rec.ID),
			},
			{
				Account: counter,
				Meta:    idMeta(rec.ID),
			},
		},
	}
}

func (r resolvedRoute) balance(snap model.AccountSnapshot, timing BalanceTiming) model.Balance {
	date := model.Date(snap.BalanceDate)
	if timing != EndOfDay {
		date = date.AddDate(0, 0, 1)
	}
	return model.Balance{
		Date:    date,
		Account: r.account,
		Amount:  model.Amount{Number: snap.Balance, Currency: r.currency},
	}
}

// idMeta returns a fresh metadata map carrying id, or nil when id is empty.
func idMeta(id string) model.Metadata {
	if id == "" {
		return nil
	}
	return model.Metadata{model.MetaSimpleFINID: id}
}
