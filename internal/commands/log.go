package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/sfimport/internal/importlog"
)

func newLogCommand(s *settings) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the import log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := s.repo()
			if err != nil {
				return err
			}
			var entries []importlog.Entry
			if runID != "" {
				entries, err = importlog.Run(dir, runID)
			} else {
				entries, err = importlog.Read(dir)
			}
			if err != nil {
				return err
			}
			return listLog(os.Stdout, entries)
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "only show rows from this run ID")

	return cmd
}

func listLog(w io.Writer, entries []importlog.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No imports logged.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tRUN\tFILE\tACTION\tENTRY\tSIMPLEFIN\tDETAILS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Format(time.RFC3339), shortRun(e.RunID), e.File, e.Action, e.EntryID, e.SimpleFINID, e.Details)
	}
	return tw.Flush()
}

// shortRun abbreviates a run ID the way git abbreviates hashes.
func shortRun(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
