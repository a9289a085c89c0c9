package simplefin

import (
	"errors"
	"fmt"
)

// ErrMalformed matches every MalformedRecordError via errors.Is.
var ErrMalformed = errors.New("malformed simplefin record")

// MalformedRecordError reports a field of a SimpleFIN record that could not be
// parsed. TransactionID is empty for account-level fields.
type MalformedRecordError struct {
	AccountID     string
	TransactionID string
	Field         string
	Value         string
	Err           error
}

func (e *MalformedRecordError) Error() string {
	where := "account " + e.AccountID
	if e.TransactionID != "" {
		where += " transaction " + e.TransactionID
	}
	msg := fmt.Sprintf("%s: field %q", where, e.Field)
	if e.Value != "" {
		msg += fmt.Sprintf(" value %q", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformed }
