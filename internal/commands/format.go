package commands

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/cleared-dev/sfimport/internal/model"
)

// writeEntries prints entries in Beancount syntax, separated by blank lines.
func writeEntries(w io.Writer, entries []model.Entry) error {
	bw := bufio.NewWriter(w)
	for i, e := range entries {
		if i > 0 {
			bw.WriteString("\n")
		}
		switch v := e.(type) {
		case model.Transaction:
			writeTransaction(bw, v)
		case model.Balance:
			fmt.Fprintf(bw, "%s balance %s  %s\n", v.Date.Format(time.DateOnly), v.Account, v.Amount.String())
			writeMeta(bw, "  ", v.Meta)
		}
	}
	return bw.Flush()
}

func writeTransaction(w *bufio.Writer, t model.Transaction) {
	fmt.Fprintf(w, "%s %s", t.Date.Format(time.DateOnly), t.Flag)
	if t.Payee != "" {
		fmt.Fprintf(w, " %s", strconv.Quote(t.Payee))
	}
	fmt.Fprintf(w, " %s\n", strconv.Quote(t.Narration))
	writeMeta(w, "  ", t.Meta)
	for _, p := range t.Postings {
		if p.Units == nil {
			fmt.Fprintf(w, "  %s\n", p.Account)
		} else {
			fmt.Fprintf(w, "  %s  %s\n", p.Account, p.Units)
		}
		writeMeta(w, "    ", p.Meta)
	}
}

func writeMeta(w *bufio.Writer, indent string, meta model.Metadata) {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s%s: %s\n", indent, k, strconv.Quote(meta[k]))
	}
}
