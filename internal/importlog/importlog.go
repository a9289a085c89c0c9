// Package importlog records what each import run did with each file and entry.
package importlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Action names what happened to a file or entry.
type Action string

const (
	ActionImported  Action = "imported"
	ActionDuplicate Action = "duplicate"
	ActionUnmapped  Action = "unmapped"
	ActionArchived  Action = "archived"
	ActionSkipped   Action = "skipped"
	ActionFailed    Action = "failed"
)

// Entry is one row in the import log.
type Entry struct {
	Timestamp   time.Time
	RunID       string
	File        string
	Action      Action
	Details     string
	EntryID     string
	SimpleFINID string
}

// Header is the CSV header for import-log.csv.
const Header = "timestamp,run_id,file,action,details,entry_id,simplefin_id"

const (
	numFields      = 7
	colTimestamp   = 0
	colRunID       = 1
	colFile        = 2
	colAction      = 3
	colDetails     = 4
	colEntryID     = 5
	colSimpleFINID = 6
)

// Path is the log location relative to the repository root.
var Path = filepath.Join("logs", "import-log.csv")

// NewRunID returns a fresh identifier for one import run.
func NewRunID() string {
	return uuid.NewString()
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colFile] = e.File
	row[colAction] = string(e.Action)
	row[colDetails] = e.Details
	row[colEntryID] = e.EntryID
	row[colSimpleFINID] = e.SimpleFINID
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	if record[colRunID] != "" {
		if _, err := uuid.Parse(record[colRunID]); err != nil {
			return Entry{}, fmt.Errorf("parsing run_id %q: %w", record[colRunID], err)
		}
	}
	return Entry{
		Timestamp:   ts,
		RunID:       record[colRunID],
		File:        record[colFile],
		Action:      Action(record[colAction]),
		Details:     record[colDetails],
		EntryID:     record[colEntryID],
		SimpleFINID: record[colSimpleFINID],
	}, nil
}

// Append writes entries to <repoRoot>/logs/import-log.csv, creating the file
// and header if needed.
func Append(repoRoot string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	path := filepath.Join(repoRoot, Path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/import-log.csv.
// Returns nil if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(repoRoot, Path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()
	return readEntries(f)
}

// Run returns the entries of one run, in log order.
func Run(repoRoot, runID string) ([]Entry, error) {
	all, err := Read(repoRoot)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range all {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out, nil
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
