// Package dedup decides whether a candidate ledger entry is already present.
package dedup

import (
	"github.com/cleared-dev/sfimport/internal/model"
)

// Rule is one tier of the duplicate comparison. Applies reports whether the
// rule decides the pair; if it does, Decide gives the answer and no later
// rule is consulted. Both functions must be symmetric in their arguments.
type Rule struct {
	Name    string
	Applies func(a, b model.Entry) bool
	Decide  func(a, b model.Entry) bool
}

// Resolver evaluates an ordered list of rules. It holds no state between
// calls and is safe for concurrent use.
type Resolver struct {
	rules []Rule
}

// NewResolver returns a Resolver with the given rules, evaluated in order.
func NewResolver(rules ...Rule) *Resolver {
	return &Resolver{rules: rules}
}

// DefaultRules returns the standard tiers:
//
//  1. entries of different kinds never match
//  2. balance assertions match on date, account and amount
//  3. both transactions carry a simplefin_id: the IDs decide
//  4. exactly one carries a simplefin_id: never a duplicate
//  5. neither does: date, primary account and primary amount must all match
func DefaultRules() []Rule {
	return []Rule{
		{Name: "kind-mismatch", Applies: kindsDiffer, Decide: never},
		{Name: "balance", Applies: bothBalances, Decide: sameBalance},
		{Name: "simplefin-id", Applies: bothHaveID, Decide: sameID},
		{Name: "one-sided-id", Applies: oneHasID, Decide: never},
		{Name: "structural", Applies: always, Decide: sameStructure},
	}
}

var defaultResolver = NewResolver(DefaultRules()...)

// IsDuplicate reports whether candidate and existing are the same logical
// entry using the default rules.
func IsDuplicate(candidate, existing model.Entry) bool {
	return defaultResolver.IsDuplicate(candidate, existing)
}

// IsDuplicate reports whether candidate and existing are the same logical entry.
// Pairs no rule applies to are not duplicates.
func (r *Resolver) IsDuplicate(candidate, existing model.Entry) bool {
	_, dup := r.Explain(candidate, existing)
	return dup
}

// Explain is IsDuplicate that also returns the name of the deciding rule,
// or "" when no rule applied.
func (r *Resolver) Explain(candidate, existing model.Entry) (string, bool) {
	if candidate == nil || existing == nil {
		return "", false
	}
	for _, rule := range r.rules {
		if rule.Applies(candidate, existing) {
			return rule.Name, rule.Decide(candidate, existing)
		}
	}
	return "", false
}

// SimpleFINID returns the simplefin_id of an entry, looking at entry metadata
// first and then at the primary posting. Empty values count as absent.
func SimpleFINID(e model.Entry) string {
	if id := e.Metadata().Get(model.MetaSimpleFINID); id != "" {
		return id
	}
	if txn, ok := e.(model.Transaction); ok {
		if p, ok := txn.Primary(); ok {
			return p.Meta.Get(model.MetaSimpleFINID)
		}
	}
	return ""
}

func always(_, _ model.Entry) bool { return true }

func never(_, _ model.Entry) bool { return false }

func kindsDiffer(a, b model.Entry) bool { return a.Kind() != b.Kind() }

func bothBalances(a, b model.Entry) bool {
	return a.Kind() == model.KindBalance && b.Kind() == model.KindBalance
}

func sameBalance(a, b model.Entry) bool {
	ba, okA := a.(model.Balance)
	bb, okB := b.(model.Balance)
	if !okA || !okB {
		return false
	}
	return ba.Date.Equal(bb.Date) && ba.Account == bb.Account && ba.Amount.Equal(&bb.Amount)
}

func bothHaveID(a, b model.Entry) bool {
	return SimpleFINID(a) != "" && SimpleFINID(b) != ""
}

func sameID(a, b model.Entry) bool {
	return SimpleFINID(a) == SimpleFINID(b)
}

func oneHasID(a, b model.Entry) bool {
	return (SimpleFINID(a) != "") != (SimpleFINID(b) != "")
}

func sameStructure(a, b model.Entry) bool {
	if !a.EntryDate().Equal(b.EntryDate()) {
		return false
	}
	ta, okA := a.(model.Transaction)
	tb, okB := b.(model.Transaction)
	if !okA || !okB {
		return false
	}
	pa, okA := ta.Primary()
	pb, okB := tb.Primary()
	if !okA || !okB {
		return false
	}
	return pa.Account == pb.Account && pa.Units.Equal(pb.Units)
}
