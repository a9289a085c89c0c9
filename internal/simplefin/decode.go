// Package simplefin decodes SimpleFIN account documents into snapshots.
package simplefin

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/sfimport/internal/model"
)

// DefaultDescription is used for transactions without a description.
const DefaultDescription = "Unknown"

// Options controls decoding.
type Options struct {
	// Location converts unix timestamps to calendar dates. Nil means time.Local.
	Location *time.Location
	// IncludePending keeps transactions flagged pending.
	IncludePending bool
}

// Decode reads every account from r. The input may be a single account
// object, an account-set document with an "accounts" array, or several of
// either separated by whitespace (newline-delimited JSON).
func Decode(r io.Reader, opts Options) ([]model.AccountSnapshot, error) {
	accounts, err := ReadAccounts(r)
	if err != nil {
		return nil, err
	}
	snaps := make([]model.AccountSnapshot, 0, len(accounts))
	for _, acct := range accounts {
		snap, err := ToSnapshot(acct, opts)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// DecodeFile decodes the SimpleFIN document at path.
func DecodeFile(path string, opts Options) ([]model.AccountSnapshot, error) {
	accounts, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	snaps := make([]model.AccountSnapshot, 0, len(accounts))
	for _, acct := range accounts {
		snap, err := ToSnapshot(acct, opts)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// ReadFile returns the raw accounts in the document at path. Nothing beyond
// the JSON structure is validated, so callers can pick accounts before
// converting them with ToSnapshot.
func ReadFile(path string) ([]Account, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	accounts, err := ReadAccounts(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return accounts, nil
}

type probe struct {
	ID       *string         `json:"id"`
	Accounts json.RawMessage `json:"accounts"`
}

// ReadAccounts returns the raw account objects in r without converting them.
func ReadAccounts(r io.Reader) ([]Account, error) {
	dec := json.NewDecoder(r)
	var accounts []Account
	for n := 1; ; n++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("reading document %d: %w", n, err)
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			return nil, fmt.Errorf("document %d: expected a JSON object", n)
		}

		var p probe
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("document %d: %w", n, err)
		}
		switch {
		case p.Accounts != nil:
			var set AccountSet
			if err := json.Unmarshal(raw, &set); err != nil {
				return nil, fmt.Errorf("document %d: parsing account set: %w", n, err)
			}
			accounts = append(accounts, set.Accounts...)
		case p.ID != nil:
			var acct Account
			if err := json.Unmarshal(raw, &acct); err != nil {
				return nil, fmt.Errorf("document %d: parsing account: %w", n, err)
			}
			accounts = append(accounts, acct)
		default:
			return nil, fmt.Errorf("document %d: neither an account nor an account set", n)
		}
	}
	return accounts, nil
}

// ToSnapshot converts a wire account into a snapshot, parsing amounts and dates.
func ToSnapshot(acct Account, opts Options) (model.AccountSnapshot, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	balance, err := parseAmount(acct.Balance)
	if err != nil {
		return model.AccountSnapshot{}, &MalformedRecordError{AccountID: acct.ID, Field: "balance", Value: acct.Balance.String(), Err: err}
	}
	balanceDate, err := ParseDate(acct.BalanceDate, loc)
	if err != nil {
		return model.AccountSnapshot{}, &MalformedRecordError{AccountID: acct.ID, Field: "balance-date", Value: acct.BalanceDate.String(), Err: err}
	}

	snap := model.AccountSnapshot{
		ID:          acct.ID,
		Name:        acct.Name,
		Org:         orgName(acct.Org),
		Currency:    normalizeCurrency(acct.Currency),
		Balance:     balance,
		BalanceDate: balanceDate,
	}
	for _, txn := range acct.Transactions {
		if txn.Pending && !opts.IncludePending {
			continue
		}
		rec, err := toRecord(acct.ID, txn, loc)
		if err != nil {
			return model.AccountSnapshot{}, err
		}
		snap.Transactions = append(snap.Transactions, rec)
	}
	return snap, nil
}

func toRecord(accountID string, txn Transaction, loc *time.Location) (model.TransactionRecord, error) {
	malformed := func(field string, v Scalar, err error) error {
		return &MalformedRecordError{AccountID: accountID, TransactionID: txn.ID, Field: field, Value: v.String(), Err: err}
	}

	// Pending transactions report posted as 0 and carry transacted_at instead.
	field, when := "posted", txn.Posted
	if txn.Pending && (!when.IsSet() || when.String() == "0") && txn.TransactedAt.IsSet() {
		field, when = "transacted_at", txn.TransactedAt
	}
	posted, err := ParseDate(when, loc)
	if err != nil {
		return model.TransactionRecord{}, malformed(field, when, err)
	}
	amount, err := parseAmount(txn.Amount)
	if err != nil {
		return model.TransactionRecord{}, malformed("amount", txn.Amount, err)
	}

	desc := strings.TrimSpace(txn.Description)
	if desc == "" {
		desc = DefaultDescription
	}
	return model.TransactionRecord{
		ID:          txn.ID,
		Posted:      posted,
		Amount:      amount,
		Description: desc,
		Payee:       strings.TrimSpace(txn.Payee),
		Pending:     txn.Pending,
	}, nil
}

var errMissing = errors.New("missing value")

func parseAmount(v Scalar) (decimal.Decimal, error) {
	if !v.IsSet() {
		return decimal.Decimal{}, errMissing
	}
	return decimal.NewFromString(strings.TrimSpace(v.String()))
}

// minUnix is 1980-01-01T00:00:00Z. Smaller numbers are compact dates or
// garbage, never SimpleFIN timestamps.
var minUnix = decimal.NewFromInt(315532800)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate converts a unix timestamp (seconds, as number or numeric string)
// or an ISO-8601 string into a calendar date at UTC midnight. Unix timestamps
// are read in loc; ISO strings keep their own offset.
func ParseDate(v Scalar, loc *time.Location) (time.Time, error) {
	if !v.IsSet() {
		return time.Time{}, errMissing
	}
	s := strings.TrimSpace(v.String())

	if secs, err := decimal.NewFromString(s); err == nil {
		if secs.LessThan(minUnix) {
			return time.Time{}, fmt.Errorf("timestamp %s is before 1980, not unix seconds", s)
		}
		return model.Date(time.Unix(secs.IntPart(), 0).In(loc)), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Date(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func orgName(o Org) string {
	if o.Name != "" {
		return o.Name
	}
	return o.Domain
}

func normalizeCurrency(c string) string {
	c = strings.TrimSpace(c)
	// SimpleFIN uses a URL for custom currencies; only ISO codes are usable here.
	if strings.Contains(c, "://") {
		return ""
	}
	return strings.ToUpper(c)
}

// Identify reports whether path is a JSON file holding at least one SimpleFIN
// account with an ID.
func Identify(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	accounts, err := ReadAccounts(f)
	if err != nil || len(accounts) == 0 {
		return false
	}
	for _, a := range accounts {
		if a.ID == "" {
			return false
		}
	}
	return true
}
