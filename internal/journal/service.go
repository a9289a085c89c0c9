package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cleared-dev/sfimport/internal/id"
	"github.com/cleared-dev/sfimport/internal/model"
)

// ErrValidation is wrapped when appended entries break a journal invariant.
var ErrValidation = errors.New("validation failed")

// Service reads and appends monthly journal files under a repository root:
// <root>/YYYY/MM/journal.csv.
type Service struct {
	repoRoot string
	accounts AccountChecker
	openFile func(name string, flag int, perm os.FileMode) (*os.File, error)
}

// NewService creates a journal Service.
func NewService(repoRoot string, accounts AccountChecker) *Service {
	return &Service{repoRoot: repoRoot, accounts: accounts, openFile: os.OpenFile}
}

type yearMonth struct{ year, month int }

func monthOf(t time.Time) yearMonth { return yearMonth{t.Year(), int(t.Month())} }

// Append assigns IDs to entries, validates each affected month together with
// what is already stored, and appends them. Nothing is written unless every
// month validates, and a failed write truncates the months already appended
// back to their previous length. Returns the entry IDs in input order.
func (s *Service) Append(entries []model.Entry) ([]string, error) {
	var order []yearMonth
	byMonth := make(map[yearMonth][]int)
	for i, e := range entries {
		m := monthOf(e.EntryDate())
		if _, ok := byMonth[m]; !ok {
			order = append(order, m)
		}
		byMonth[m] = append(byMonth[m], i)
	}

	ids := make([]string, len(entries))
	pending := make(map[yearMonth][]Row, len(order))
	for _, m := range order {
		existing, err := s.ReadMonth(m.year, m.month)
		if err != nil {
			return nil, err
		}
		seq := len(existing)

		all := append([]Record(nil), existing...)
		var rows []Row
		for _, i := range byMonth[m] {
			seq++
			eid := id.New(entries[i].EntryDate(), seq)
			r, err := ToRows(eid, entries[i])
			if err != nil {
				return nil, err
			}
			rows = append(rows, r...)
			all = append(all, Record{ID: eid.String(), Entry: entries[i]})
			ids[i] = eid.String()
		}

		if verrs := ValidateRecords(all, s.accounts, m.year, m.month); len(verrs) > 0 {
			msgs := make([]string, len(verrs))
			for i, ve := range verrs {
				msgs[i] = ve.Error()
			}
			return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
		}
		pending[m] = rows
	}

	var written []undo
	for _, m := range order {
		u, err := s.appendMonth(m, pending[m])
		if err != nil {
			if rerr := rollback(written); rerr != nil {
				return nil, errors.Join(err, rerr)
			}
			return nil, err
		}
		written = append(written, u)
	}
	return ids, nil
}

// undo restores a journal file to its length before an append. A size of -1
// means the file did not exist.
type undo struct {
	path string
	size int64
}

func rollback(written []undo) error {
	var errs []error
	for _, u := range written {
		var err error
		if u.size < 0 {
			err = os.Remove(u.path)
		} else {
			err = os.Truncate(u.path, u.size)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("rolling back %s: %w", u.path, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) appendMonth(m yearMonth, rows []Row) (undo, error) {
	journalPath := s.monthPath(m.year, m.month)
	u := undo{path: journalPath, size: -1}
	if err := os.MkdirAll(filepath.Dir(journalPath), 0o755); err != nil {
		return u, fmt.Errorf("creating journal dir: %w", err)
	}

	info, err := os.Stat(journalPath)
	switch {
	case err == nil:
		u.size = info.Size()
	case !errors.Is(err, fs.ErrNotExist):
		return u, fmt.Errorf("stat journal: %w", err)
	}

	f, err := s.openFile(journalPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return u, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if u.size < 0 {
		err = WriteRows(f, rows)
	} else {
		err = AppendRows(f, rows)
	}
	if err == nil {
		err = f.Close()
	}
	if err != nil {
		// Leave nothing half-written for this month either.
		if rerr := rollback([]undo{u}); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return u, fmt.Errorf("appending to %s: %w", journalPath, err)
	}
	return u, nil
}

// ReadMonth reads all records for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]Record, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	records, err := FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return records, nil
}

// ReadRange returns the entries dated within [from, to], oldest month first.
func (s *Service) ReadRange(from, to time.Time) ([]model.Entry, error) {
	from, to = model.Date(from), model.Date(to)
	var entries []model.Entry
	for m := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(to); m = m.AddDate(0, 1, 0) {
		records, err := s.ReadMonth(m.Year(), int(m.Month()))
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			d := r.Entry.EntryDate()
			if d.Before(from) || d.After(to) {
				continue
			}
			entries = append(entries, r.Entry)
		}
	}
	return entries, nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.repoRoot, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "journal.csv")
}
