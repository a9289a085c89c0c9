package dedup

import (
	"time"

	"github.com/cleared-dev/sfimport/internal/model"
)

// Mark reports, for each candidate, whether it duplicates an existing entry
// dated within window of it on the same account. A zero window only compares
// same-day entries. Within the batch, a candidate is a duplicate only if an
// earlier kept candidate on the same account carries the same SimpleFIN ID:
// id-less twins in one batch are separate real transactions.
func (r *Resolver) Mark(candidates, existing []model.Entry, window time.Duration) []bool {
	dups := make([]bool, len(candidates))
	var kept []model.Entry

	for i, c := range candidates {
		dups[i] = r.matchesExisting(c, existing, window) || repeatsID(c, kept)
		if !dups[i] {
			kept = append(kept, c)
		}
	}
	return dups
}

func (r *Resolver) matchesExisting(c model.Entry, existing []model.Entry, window time.Duration) bool {
	for _, e := range existing {
		if !withinWindow(c.EntryDate(), e.EntryDate(), window) {
			continue
		}
		if !sameAccount(c, e) {
			continue
		}
		if r.IsDuplicate(c, e) {
			return true
		}
	}
	return false
}

// repeatsID reports whether a batch sibling on c's account has c's SimpleFIN ID.
func repeatsID(c model.Entry, kept []model.Entry) bool {
	id := SimpleFINID(c)
	if id == "" {
		return false
	}
	for _, k := range kept {
		if c.Kind() == k.Kind() && sameAccount(c, k) && SimpleFINID(k) == id {
			return true
		}
	}
	return false
}

// Mark runs Resolver.Mark with the default rules.
func Mark(candidates, existing []model.Entry, window time.Duration) []bool {
	return defaultResolver.Mark(candidates, existing, window)
}

func withinWindow(a, b time.Time, window time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= window
}

// sameAccount reports whether two entries touch the same primary account.
// Entries without an account are compared anyway.
func sameAccount(a, b model.Entry) bool {
	accA, accB := primaryAccount(a), primaryAccount(b)
	if accA == "" || accB == "" {
		return true
	}
	return accA == accB
}

func primaryAccount(e model.Entry) string {
	switch v := e.(type) {
	case model.Transaction:
		if p, ok := v.Primary(); ok {
			return p.Account
		}
	case model.Balance:
		return v.Account
	}
	return ""
}
