package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetaSimpleFINID is the metadata key holding the SimpleFIN transaction ID.
const MetaSimpleFINID = "simplefin_id"

// Transaction flags.
const FlagCleared = "*"

// EntryKind distinguishes the ledger entry variants.
type EntryKind string

const (
	KindTransaction EntryKind = "txn"
	KindBalance     EntryKind = "balance"
)

// Entry is a ledger directive: either a Transaction or a Balance.
type Entry interface {
	Kind() EntryKind
	EntryDate() time.Time
	Metadata() Metadata
}

// Metadata holds string-valued provenance tags on entries and postings.
type Metadata map[string]string

// Get returns the value for key, or "" if absent.
func (m Metadata) Get(key string) string {
	if m == nil {
		return ""
	}
	return m[key]
}

// Clone returns a copy of m. A nil map clones to nil.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Amount is a signed quantity of a currency.
type Amount struct {
	Number   decimal.Decimal
	Currency string
}

// NewAmount builds an Amount.
func NewAmount(n decimal.Decimal, currency string) *Amount {
	return &Amount{Number: n, Currency: currency}
}

// Equal reports whether two amounts have the same value and currency.
// Two nil amounts are equal.
func (a *Amount) Equal(b *Amount) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Currency == b.Currency && a.Number.Equal(b.Number)
}

func (a *Amount) String() string {
	if a == nil {
		return ""
	}
	return a.Number.String() + " " + a.Currency
}

// Posting is one leg of a Transaction. A nil Units marks the posting whose
// amount is inferred so that the transaction balances.
type Posting struct {
	Account string
	Units   *Amount
	Meta    Metadata
}

// Transaction is a dated, balanced set of postings.
type Transaction struct {
	Date      time.Time
	Flag      string
	Payee     string
	Narration string
	Meta      Metadata
	Postings  []Posting
}

func (t Transaction) Kind() EntryKind      { return KindTransaction }
func (t Transaction) EntryDate() time.Time { return t.Date }
func (t Transaction) Metadata() Metadata   { return t.Meta }

// Primary returns the first posting, which carries the source account and amount.
func (t Transaction) Primary() (Posting, bool) {
	if len(t.Postings) == 0 {
		return Posting{}, false
	}
	return t.Postings[0], true
}

// Balance asserts an account's balance at the start of Date.
type Balance struct {
	Date    time.Time
	Account string
	Amount  Amount
	Meta    Metadata
}

func (b Balance) Kind() EntryKind      { return KindBalance }
func (b Balance) EntryDate() time.Time { return b.Date }
func (b Balance) Metadata() Metadata   { return b.Meta }

// Date truncates t to its calendar date in t's own location, returned as UTC midnight.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
