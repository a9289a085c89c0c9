package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/sfimport/internal/mapper"
	"github.com/cleared-dev/sfimport/internal/model"
	"github.com/cleared-dev/sfimport/internal/simplefin"
)

func newMapCommand(s *settings) *cobra.Command {
	var includePending bool

	cmd := &cobra.Command{
		Use:   "map <file>",
		Short: "Print the ledger entries a SimpleFIN file maps to, without writing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := s.loadConfig()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return fmt.Errorf("loading timezone: %w", err)
			}

			accts, err := simplefin.ReadFile(args[0])
			if err != nil {
				return err
			}
			opts := simplefin.Options{
				Location:       loc,
				IncludePending: includePending || cfg.Import.IncludePending,
			}

			m := mapper.New(cfg.Mapping(), cfg.MapperOptions())
			var entries []model.Entry
			for _, acct := range accts {
				if !m.Tracks(acct.ID) {
					fmt.Fprintf(os.Stderr, "unmapped account %s (%s)\n", acct.ID, acct.Name)
					continue
				}
				snap, err := simplefin.ToSnapshot(acct, opts)
				if err != nil {
					return err
				}
				entries = append(entries, m.Map(snap)...)
			}
			return writeEntries(os.Stdout, entries)
		},
	}

	cmd.Flags().BoolVar(&includePending, "pending", false, "include pending transactions")

	return cmd
}
