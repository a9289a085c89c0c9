package simplefin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Org describes the institution holding an account.
type Org struct {
	Name   string `json:"name,omitempty"`
	Domain string `json:"domain,omitempty"`
	URL    string `json:"sfin-url,omitempty"`
}

// Account is a SimpleFIN account object as returned by /accounts.
type Account struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Org          Org           `json:"org"`
	Currency     string        `json:"currency"`
	Balance      Scalar        `json:"balance"`
	BalanceDate  Scalar        `json:"balance-date"`
	Transactions []Transaction `json:"transactions"`
}

// Transaction is a SimpleFIN transaction object.
type Transaction struct {
	ID           string `json:"id"`
	Posted       Scalar `json:"posted"`
	TransactedAt Scalar `json:"transacted_at,omitempty"`
	Amount       Scalar `json:"amount"`
	Description  string `json:"description"`
	Payee        string `json:"payee,omitempty"`
	Pending      bool   `json:"pending,omitempty"`
}

// AccountSet is the top-level document returned by /accounts.
type AccountSet struct {
	Errors   []string  `json:"errors,omitempty"`
	Accounts []Account `json:"accounts"`
}

// Scalar holds a JSON string or number verbatim. SimpleFIN encodes amounts as
// strings and timestamps as numbers, but exporters are not consistent.
type Scalar struct {
	raw   string
	set   bool
	isNum bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = Scalar{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar{raw: str, set: true}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = Scalar{raw: n.String(), set: true, isNum: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.set {
		return []byte("null"), nil
	}
	if s.isNum {
		return []byte(s.raw), nil
	}
	return json.Marshal(s.raw)
}

// String returns the raw text of the value.
func (s Scalar) String() string { return s.raw }

// IsSet reports whether the field was present and not null.
func (s Scalar) IsSet() bool { return s.set && strings.TrimSpace(s.raw) != "" }

// StringScalar builds a string-valued Scalar.
func StringScalar(v string) Scalar { return Scalar{raw: v, set: true} }

// IntScalar builds a number-valued Scalar.
func IntScalar(v int64) Scalar {
	return Scalar{raw: strconv.FormatInt(v, 10), set: true, isNum: true}
}
