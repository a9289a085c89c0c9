package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountSnapshot is one SimpleFIN account as fetched at a point in time.
type AccountSnapshot struct {
	ID           string
	Name         string
	Org          string
	Currency     string
	Balance      decimal.Decimal
	BalanceDate  time.Time // calendar date the balance was reported for
	Transactions []TransactionRecord
}

// TransactionRecord is a parsed SimpleFIN transaction.
type TransactionRecord struct {
	ID          string
	Posted      time.Time       // calendar date, UTC midnight
	Amount      decimal.Decimal // negative = outflow, positive = inflow
	Description string
	Payee       string
	Pending     bool
}
