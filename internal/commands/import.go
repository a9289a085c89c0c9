package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/sfimport/internal/config"
	"github.com/cleared-dev/sfimport/internal/gitops"
	"github.com/cleared-dev/sfimport/internal/importer"
	"github.com/cleared-dev/sfimport/internal/logger"
)

func newImportCommand(s *settings) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import SimpleFIN files from import/ into the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, cfg, err := s.loadConfig()
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), dir, cfg, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be imported without writing")

	return cmd
}

func runImport(ctx context.Context, dir string, cfg *config.Config, dryRun bool) error {
	log := logger.FromContext(ctx)

	res, err := importer.Run(ctx, importer.Options{RepoRoot: dir, Config: cfg, DryRun: dryRun})
	if res != nil {
		printImport(res, dryRun)
	}
	if err != nil {
		return err
	}

	if dryRun || res.Imported == 0 || !cfg.Git.AutoCommit {
		return nil
	}
	if !gitops.IsRepo(dir) {
		log.Debug().Str("repo", dir).Msg("not a git repository, skipping commit")
		return nil
	}

	msg := fmt.Sprintf("import: %d entries from %d files", res.Imported, len(res.Files))
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(ctx, dir, msg, author)
	if err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	fmt.Printf("Committed %s\n", hash)
	return nil
}

func printImport(res *importer.Result, dryRun bool) {
	if len(res.Files) == 0 {
		fmt.Println("No files to import.")
		return
	}
	for _, f := range res.Files {
		switch {
		case f.Skipped:
			fmt.Printf("%s: skipped, not a SimpleFIN account document\n", f.Name)
		case dryRun:
			fmt.Printf("%s: %d new, %d duplicate\n", f.Name, len(f.Entries), f.Duplicates)
			writeEntries(os.Stdout, f.Entries)
		default:
			fmt.Printf("%s: %d imported, %d duplicate\n", f.Name, len(f.EntryIDs), f.Duplicates)
		}
		for _, id := range f.Unmapped {
			fmt.Printf("  unmapped account %s\n", id)
		}
	}
	verb := "Imported"
	if dryRun {
		verb = "Would import"
	}
	fmt.Printf("%s %d entries (%d duplicates skipped)\n", verb, res.Imported, res.Duplicates)
}
