package accounts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cleared-dev/sfimport/internal/model"
)

const (
	numFields   = 5
	colName     = 0
	colType     = 1
	colCurrency = 2
	colSourceID = 3
	colDesc     = 4
)

var header = []string{"account", "type", "currency", "simplefin_id", "description"}

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colCurrency] = acct.Currency
	row[colSourceID] = acct.SourceID
	row[colDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an Account. The type column must
// agree with the account's root segment.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	name := record[colName]
	typ := model.TypeOf(name)
	if typ == "" {
		return model.Account{}, fmt.Errorf("account %q has no valid root", name)
	}
	if record[colType] != "" && model.AccountType(record[colType]) != typ {
		return model.Account{}, fmt.Errorf("account %q: type %q does not match root %q", name, record[colType], typ)
	}
	return model.Account{
		Name:        name,
		Type:        typ,
		Currency:    record[colCurrency],
		SourceID:    record[colSourceID],
		Description: record[colDesc],
	}, nil
}
