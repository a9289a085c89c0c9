// Package id formats and parses journal entry identifiers.
//
// An entry ID looks like "2025-01-007": year, month and a per-month sequence.
// Each journal row appends a leg letter: "2025-01-007a", "2025-01-007b".
package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EntryID identifies one ledger entry within a monthly journal.
type EntryID struct {
	Year  int
	Month int
	Seq   int
}

// New returns the EntryID for seq in the month of date.
func New(date time.Time, seq int) EntryID {
	return EntryID{Year: date.Year(), Month: int(date.Month()), Seq: seq}
}

func (e EntryID) String() string {
	return fmt.Sprintf("%04d-%02d-%03d", e.Year, e.Month, e.Seq)
}

// Leg returns the row ID of the i-th leg (0='a', 1='b', ...).
func (e EntryID) Leg(i int) string {
	return e.String() + legSuffix(i)
}

func legSuffix(i int) string {
	var b []byte
	for {
		b = append([]byte{byte('a' + i%26)}, b...)
		i = i/26 - 1
		if i < 0 {
			return string(b)
		}
	}
}

// Parse parses an entry or leg ID. The leg suffix, if any, is ignored.
func Parse(s string) (EntryID, error) {
	parts := strings.SplitN(Group(s), "-", 3)
	if len(parts) != 3 {
		return EntryID{}, fmt.Errorf("invalid entry ID format: %q", s)
	}

	var nums [3]int
	for i, name := range []string{"year", "month", "sequence"} {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return EntryID{}, fmt.Errorf("invalid %s in entry ID %q: %w", name, s, err)
		}
		nums[i] = n
	}
	if nums[1] < 1 || nums[1] > 12 {
		return EntryID{}, fmt.Errorf("invalid month in entry ID %q", s)
	}
	return EntryID{Year: nums[0], Month: nums[1], Seq: nums[2]}, nil
}

// Group strips the leg suffix from a leg ID.
// "2025-01-001a" -> "2025-01-001"
func Group(legID string) string {
	i := len(legID)
	for i > 0 && legID[i-1] >= 'a' && legID[i-1] <= 'z' {
		i--
	}
	return legID[:i]
}
