package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/sfimport/internal/accounts"
	"github.com/cleared-dev/sfimport/internal/config"
)

func newAccountsCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List the chart of accounts and the SimpleFIN accounts mapped to it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, cfg, err := s.loadConfig()
			if err != nil {
				return err
			}
			chart, err := accounts.Load(dir)
			if errors.Is(err, fs.ErrNotExist) {
				chart = accounts.NewService(nil)
			} else if err != nil {
				return err
			}
			return listAccounts(os.Stdout, chart.Merge(accounts.FromConfig(cfg)), cfg)
		},
	}
}

func listAccounts(w io.Writer, chart *accounts.Service, cfg *config.Config) error {
	mapped := make(map[string]string, len(cfg.Accounts))
	for _, a := range cfg.Accounts {
		mapped[a.Account] = a.ID
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tTYPE\tCURRENCY\tSIMPLEFIN")
	for _, a := range chart.All() {
		source := a.SourceID
		if id, ok := mapped[a.Name]; ok {
			source = id
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Name, a.Type, a.Currency, source)
	}
	return tw.Flush()
}
