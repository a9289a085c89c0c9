package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/cleared-dev/sfimport/internal/accounts"
	"github.com/cleared-dev/sfimport/internal/config"
	"github.com/cleared-dev/sfimport/internal/dedup"
	"github.com/cleared-dev/sfimport/internal/importlog"
	"github.com/cleared-dev/sfimport/internal/journal"
	"github.com/cleared-dev/sfimport/internal/logger"
	"github.com/cleared-dev/sfimport/internal/mapper"
	"github.com/cleared-dev/sfimport/internal/model"
	"github.com/cleared-dev/sfimport/internal/simplefin"
)

// Options controls an import run.
type Options struct {
	RepoRoot string
	Config   *config.Config
	// DryRun maps and deduplicates without touching the repository.
	DryRun bool
	// Now stamps import log rows. Defaults to time.Now.
	Now func() time.Time
}

// FileResult summarizes one processed file.
type FileResult struct {
	Name       string
	Accounts   int
	Unmapped   []string
	Entries    []model.Entry
	EntryIDs   []string
	Duplicates int
	Skipped    bool
	Archived   bool
}

// Result summarizes an import run.
type Result struct {
	RunID      string
	Files      []FileResult
	Imported   int
	Duplicates int
}

type run struct {
	opts     Options
	runID    string
	mapper   *mapper.Mapper
	journal  *journal.Service
	decoding simplefin.Options
	// entries kept earlier in this run
	accepted []model.Entry
}

// Run imports every SimpleFIN document in <RepoRoot>/import/. Files are
// processed in name order; a file that fails to decode stops the run after
// earlier files have been committed to the journal.
func Run(ctx context.Context, opts Options) (*Result, error) {
	log := logger.FromContext(ctx)
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("importer: nil config")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	chart, err := loadChart(opts.RepoRoot, cfg, opts.DryRun)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}

	r := &run{
		opts:    opts,
		runID:   importlog.NewRunID(),
		mapper:  mapper.New(cfg.Mapping(), cfg.MapperOptions()),
		journal: journal.NewService(opts.RepoRoot, chart),
		decoding: simplefin.Options{
			Location:       loc,
			IncludePending: cfg.Import.IncludePending,
		},
	}

	files, err := Scan(opts.RepoRoot)
	if err != nil {
		return nil, err
	}
	log.Info().Str("run_id", r.runID).Int("files", len(files)).Bool("dry_run", opts.DryRun).Msg("starting import")

	res := &Result{RunID: r.runID}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		fr, err := r.importFile(ctx, f)
		if err != nil {
			return res, fmt.Errorf("importing %s: %w", f.Name, err)
		}
		res.Files = append(res.Files, *fr)
		res.Imported += len(fr.Entries)
		res.Duplicates += fr.Duplicates
	}

	log.Info().Str("run_id", r.runID).Int("imported", res.Imported).Int("duplicates", res.Duplicates).Msg("import finished")
	return res, nil
}

func (r *run) importFile(ctx context.Context, f FileInfo) (*FileResult, error) {
	log := logger.FromContext(ctx).With().Str("file", f.Name).Logger()
	fr := &FileResult{Name: f.Name}
	var logRows []importlog.Entry
	record := func(action importlog.Action, details, entryID, sfID string) {
		logRows = append(logRows, importlog.Entry{
			Timestamp:   r.opts.Now(),
			RunID:       r.runID,
			File:        f.Name,
			Action:      action,
			Details:     details,
			EntryID:     entryID,
			SimpleFINID: sfID,
		})
	}
	fail := func(err error) error {
		record(importlog.ActionFailed, err.Error(), "", "")
		if lerr := r.writeLog(logRows); lerr != nil {
			log.Error().Err(lerr).Msg("writing import log")
		}
		return err
	}

	if !simplefin.Identify(f.Path) {
		log.Warn().Msg("not a SimpleFIN account document, skipping")
		fr.Skipped = true
		record(importlog.ActionSkipped, "not a SimpleFIN account document", "", "")
		return fr, r.writeLog(logRows)
	}

	accts, err := simplefin.ReadFile(f.Path)
	if err != nil {
		return nil, fail(err)
	}
	fr.Accounts = len(accts)

	var fresh []model.Entry
	for _, acct := range accts {
		if !r.mapper.Tracks(acct.ID) {
			log.Debug().Str("account", acct.ID).Str("name", acct.Name).Msg("account not mapped, skipping")
			fr.Unmapped = append(fr.Unmapped, acct.ID)
			record(importlog.ActionUnmapped, acct.Name, "", acct.ID)
			continue
		}
		snap, err := simplefin.ToSnapshot(acct, r.decoding)
		if err != nil {
			return nil, fail(err)
		}

		// Each snapshot is one batch: it is checked against the journal
		// and against what earlier snapshots of this run kept.
		candidates := r.mapper.Map(snap)
		existing, err := r.existing(candidates)
		if err != nil {
			return nil, err
		}
		dups := dedup.Mark(candidates, existing, r.opts.Config.Lookback())
		for i, c := range candidates {
			if dups[i] {
				sfID := dedup.SimpleFINID(c)
				fr.Duplicates++
				log.Debug().Str("account", acct.ID).Str("simplefin_id", sfID).Msg("duplicate")
				record(importlog.ActionDuplicate, Describe(c), "", sfID)
				continue
			}
			fresh = append(fresh, c)
			r.accepted = append(r.accepted, c)
		}
	}

	if r.opts.DryRun {
		fr.Entries = fresh
		log.Info().Int("new", len(fresh)).Int("duplicates", fr.Duplicates).Msg("dry run")
		return fr, nil
	}

	ids, err := r.journal.Append(fresh)
	if err != nil {
		return nil, err
	}
	fr.Entries = fresh
	fr.EntryIDs = ids
	for i, e := range fresh {
		sfID := dedup.SimpleFINID(e)
		log.Debug().Str("entry_id", ids[i]).Str("simplefin_id", sfID).Msg("imported")
		record(importlog.ActionImported, Describe(e), ids[i], sfID)
	}

	if r.opts.Config.Import.Archive {
		if err := MarkProcessed(r.opts.RepoRoot, f.Name); err != nil {
			return nil, err
		}
		fr.Archived = true
		record(importlog.ActionArchived, "", "", "")
	}

	log.Info().Int("imported", len(ids)).Int("duplicates", fr.Duplicates).Msg("file imported")
	return fr, r.writeLog(logRows)
}

// existing returns journal entries near the candidates' dates plus the
// entries accepted so far in this run. The current file's entries reach the
// journal only after all its snapshots are checked, and dry runs never
// write at all.
func (r *run) existing(candidates []model.Entry) ([]model.Entry, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	from, to := candidates[0].EntryDate(), candidates[0].EntryDate()
	for _, c := range candidates[1:] {
		d := c.EntryDate()
		if d.Before(from) {
			from = d
		}
		if d.After(to) {
			to = d
		}
	}
	window := r.opts.Config.Lookback()
	stored, err := r.journal.ReadRange(from.Add(-window), to.Add(window))
	if err != nil {
		return nil, err
	}
	return append(stored, r.accepted...), nil
}

func (r *run) writeLog(rows []importlog.Entry) error {
	if r.opts.DryRun {
		return nil
	}
	return importlog.Append(r.opts.RepoRoot, rows)
}

// loadChart reads the chart of accounts and adds whatever the config maps
// to. The merged chart is saved back unless this is a dry run.
func loadChart(repoRoot string, cfg *config.Config, dryRun bool) (*accounts.Service, error) {
	chart, err := accounts.Load(repoRoot)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		chart = accounts.NewService(nil)
	case err != nil:
		return nil, err
	}

	merged := chart.Merge(accounts.FromConfig(cfg))
	if dryRun || len(merged.All()) == len(chart.All()) {
		return merged, nil
	}
	if err := merged.Save(repoRoot); err != nil {
		return nil, err
	}
	return merged, nil
}

// Describe renders an entry as a one-line summary for logs.
func Describe(e model.Entry) string {
	date := e.EntryDate().Format(time.DateOnly)
	switch v := e.(type) {
	case model.Transaction:
		text := v.Narration
		if v.Payee != "" {
			text = v.Payee + " | " + text
		}
		if p, ok := v.Primary(); ok {
			return fmt.Sprintf("%s %s %s %s", date, text, p.Account, p.Units)
		}
		return fmt.Sprintf("%s %s", date, text)
	case model.Balance:
		return fmt.Sprintf("%s balance %s %s", date, v.Account, v.Amount.String())
	}
	return date
}
