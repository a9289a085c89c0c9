package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/sfimport/internal/model"
)

// Header is the CSV header for journal.csv.
const Header = "entry_id,date,type,flag,payee,narration,entry_meta,account,amount,currency,posting_meta"

const (
	numFields    = 11
	dateFormat   = "2006-01-02"
	colEntryID   = 0
	colDate      = 1
	colType      = 2
	colFlag      = 3
	colPayee     = 4
	colNarration = 5
	colEntryMeta = 6
	colAccount   = 7
	colAmount    = 8
	colCurrency  = 9
	colPostMeta  = 10
)

// Row is a single line of journal.csv: one posting of a transaction, or a
// whole balance assertion. Entry-level fields repeat on every leg.
type Row struct {
	EntryID     string // leg ID, e.g. "2025-01-001a"
	Date        time.Time
	Type        model.EntryKind
	Flag        string
	Payee       string
	Narration   string
	EntryMeta   model.Metadata
	Account     string
	Units       *model.Amount // nil for an elided posting amount
	PostingMeta model.Metadata
}

// ReadRows reads all rows from a journal.csv reader.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var rows []Row
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteRows writes rows to a journal.csv writer (including header).
func WriteRows(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(MarshalRow(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendRows appends rows to an existing journal.csv writer (no header).
func AppendRows(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	for i, row := range rows {
		if err := cw.Write(MarshalRow(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRow converts a Row to a CSV record.
func MarshalRow(row Row) []string {
	rec := make([]string, numFields)
	rec[colEntryID] = row.EntryID
	rec[colDate] = row.Date.Format(dateFormat)
	rec[colType] = string(row.Type)
	rec[colFlag] = row.Flag
	rec[colPayee] = row.Payee
	rec[colNarration] = row.Narration
	rec[colEntryMeta] = encodeMeta(row.EntryMeta)
	rec[colAccount] = row.Account
	if row.Units != nil {
		rec[colAmount] = row.Units.Number.String()
		rec[colCurrency] = row.Units.Currency
	}
	rec[colPostMeta] = encodeMeta(row.PostingMeta)
	return rec
}

// UnmarshalRow converts a CSV record to a Row.
func UnmarshalRow(record []string) (Row, error) {
	if len(record) != numFields {
		return Row{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return Row{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	typ := model.EntryKind(record[colType])
	if typ != model.KindTransaction && typ != model.KindBalance {
		return Row{}, fmt.Errorf("unknown entry type %q", record[colType])
	}

	var units *model.Amount
	if record[colAmount] != "" {
		n, err := decimal.NewFromString(record[colAmount])
		if err != nil {
			return Row{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
		}
		units = model.NewAmount(n, record[colCurrency])
	}

	entryMeta, err := decodeMeta(record[colEntryMeta])
	if err != nil {
		return Row{}, fmt.Errorf("parsing entry_meta %q: %w", record[colEntryMeta], err)
	}
	postingMeta, err := decodeMeta(record[colPostMeta])
	if err != nil {
		return Row{}, fmt.Errorf("parsing posting_meta %q: %w", record[colPostMeta], err)
	}

	return Row{
		EntryID:     record[colEntryID],
		Date:        date,
		Type:        typ,
		Flag:        record[colFlag],
		Payee:       record[colPayee],
		Narration:   record[colNarration],
		EntryMeta:   entryMeta,
		Account:     record[colAccount],
		Units:       units,
		PostingMeta: postingMeta,
	}, nil
}

// encodeMeta renders metadata as a query string with sorted keys.
func encodeMeta(m model.Metadata) string {
	if len(m) == 0 {
		return ""
	}
	v := make(url.Values, len(m))
	for k, val := range m {
		v.Set(k, val)
	}
	return v.Encode()
}

func decodeMeta(s string) (model.Metadata, error) {
	if s == "" {
		return nil, nil
	}
	v, err := url.ParseQuery(s)
	if err != nil {
		return nil, err
	}
	m := make(model.Metadata, len(v))
	for k := range v {
		m[k] = v.Get(k)
	}
	return m, nil
}
