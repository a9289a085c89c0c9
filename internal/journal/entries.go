package journal

import (
	"fmt"

	"github.com/cleared-dev/sfimport/internal/id"
	"github.com/cleared-dev/sfimport/internal/model"
)

// Record is a stored entry together with its journal ID.
type Record struct {
	ID    string // entry ID without leg suffix
	Entry model.Entry
}

// ToRows flattens an entry into journal rows under the given ID.
func ToRows(entryID id.EntryID, e model.Entry) ([]Row, error) {
	switch v := e.(type) {
	case model.Transaction:
		rows := make([]Row, len(v.Postings))
		for i, p := range v.Postings {
			rows[i] = Row{
				EntryID:     entryID.Leg(i),
				Date:        v.Date,
				Type:        model.KindTransaction,
				Flag:        v.Flag,
				Payee:       v.Payee,
				Narration:   v.Narration,
				EntryMeta:   v.Meta,
				Account:     p.Account,
				Units:       p.Units,
				PostingMeta: p.Meta,
			}
		}
		return rows, nil
	case model.Balance:
		amt := v.Amount
		return []Row{{
			EntryID:   entryID.Leg(0),
			Date:      v.Date,
			Type:      model.KindBalance,
			EntryMeta: v.Meta,
			Account:   v.Account,
			Units:     &amt,
		}}, nil
	default:
		return nil, fmt.Errorf("unsupported entry type %T", e)
	}
}

// FromRows groups rows by entry ID, in order of first appearance, and
// rebuilds the entries.
func FromRows(rows []Row) ([]Record, error) {
	var order []string
	groups := make(map[string][]Row)
	for _, row := range rows {
		g := id.Group(row.EntryID)
		if _, seen := groups[g]; !seen {
			order = append(order, g)
		}
		groups[g] = append(groups[g], row)
	}

	records := make([]Record, 0, len(order))
	for _, g := range order {
		e, err := fromGroup(groups[g])
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", g, err)
		}
		records = append(records, Record{ID: g, Entry: e})
	}
	return records, nil
}

func fromGroup(rows []Row) (model.Entry, error) {
	first := rows[0]
	for _, r := range rows[1:] {
		if r.Type != first.Type || !r.Date.Equal(first.Date) {
			return nil, fmt.Errorf("legs disagree on type or date")
		}
	}

	switch first.Type {
	case model.KindBalance:
		if len(rows) != 1 {
			return nil, fmt.Errorf("balance assertion has %d rows", len(rows))
		}
		if first.Units == nil {
			return nil, fmt.Errorf("balance assertion without amount")
		}
		return model.Balance{
			Date:    first.Date,
			Account: first.Account,
			Amount:  *first.Units,
			Meta:    first.EntryMeta,
		}, nil
	default:
		txn := model.Transaction{
			Date:      first.Date,
			Flag:      first.Flag,
			Payee:     first.Payee,
			Narration: first.Narration,
			Meta:      first.EntryMeta,
			Postings:  make([]model.Posting, len(rows)),
		}
		for i, r := range rows {
			txn.Postings[i] = model.Posting{Account: r.Account, Units: r.Units, Meta: r.PostingMeta}
		}
		return txn, nil
	}
}
