package journal

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/sfimport/internal/id"
	"github.com/cleared-dev/sfimport/internal/model"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	EntryID     string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.EntryID, e.Description)
}

// AccountChecker tests whether an account exists in the chart of accounts.
type AccountChecker interface {
	Exists(name string) bool
}

// ValidateRecords enforces the journal invariants on one month of records:
//
//  1. transactions have at least two postings
//  2. at most one posting elides its amount, and fully specified
//     transactions sum to zero per currency
//  3. every account is in the chart
//  4. every date falls within the month
//  5. entry sequence numbers are unique and contiguous from 1
//  6. every amount has a valid currency
func ValidateRecords(records []Record, accounts AccountChecker, year, month int) []ValidationError {
	var errs []ValidationError
	add := func(inv int, entryID, format string, args ...any) {
		errs = append(errs, ValidationError{Invariant: inv, EntryID: entryID, Description: fmt.Sprintf(format, args...)})
	}

	for _, rec := range records {
		e := rec.Entry
		if d := e.EntryDate(); d.Year() != year || int(d.Month()) != month {
			add(4, rec.ID, "date %s not in %04d-%02d", d.Format(dateFormat), year, month)
		}

		switch v := e.(type) {
		case model.Transaction:
			if len(v.Postings) < 2 {
				add(1, rec.ID, "transaction has %d postings", len(v.Postings))
			}
			elided := 0
			sums := make(map[string]decimal.Decimal)
			for _, p := range v.Postings {
				if !accounts.Exists(p.Account) {
					add(3, rec.ID, "unknown account %q", p.Account)
				}
				if p.Units == nil {
					elided++
					continue
				}
				if !model.ValidCurrency(p.Units.Currency) {
					add(6, rec.ID, "invalid currency %q", p.Units.Currency)
				}
				sums[p.Units.Currency] = sums[p.Units.Currency].Add(p.Units.Number)
			}
			if elided > 1 {
				add(2, rec.ID, "%d postings without amount", elided)
			}
			if elided == 0 {
				for _, cur := range sortedKeys(sums) {
					if !sums[cur].IsZero() {
						add(2, rec.ID, "postings do not balance: %s %s", sums[cur].String(), cur)
					}
				}
			}
		case model.Balance:
			if !accounts.Exists(v.Account) {
				add(3, rec.ID, "unknown account %q", v.Account)
			}
			if !model.ValidCurrency(v.Amount.Currency) {
				add(6, rec.ID, "invalid currency %q", v.Amount.Currency)
			}
		}
	}

	seen := make(map[int]bool, len(records))
	for _, rec := range records {
		eid, err := id.Parse(rec.ID)
		if err != nil {
			add(5, rec.ID, "invalid entry ID: %v", err)
			continue
		}
		if eid.Year != year || eid.Month != month {
			add(5, rec.ID, "entry ID not in %04d-%02d", year, month)
		}
		if seen[eid.Seq] {
			add(5, rec.ID, "duplicate sequence %d", eid.Seq)
		}
		seen[eid.Seq] = true
	}
	for i := 1; i <= len(seen); i++ {
		if !seen[i] {
			add(5, fmt.Sprintf("seq %d", i), "missing sequence %d in 1..%d", i, len(seen))
		}
	}
	return errs
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
