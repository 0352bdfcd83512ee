package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwulff/fileforge/internal/domain"
	"github.com/jwulff/fileforge/internal/store"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past conversions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(opts.cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			entries := st.LoadHistory()
			updated, err := st.UpdatedAt(store.KeyHistory)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), format, entries, updated)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format: table, json, yaml")
	return cmd
}

func printHistory(w io.Writer, format string, entries []domain.HistoryEntry, updated time.Time) error {
	switch format {
	case formatJSON, formatYAML:
		if entries == nil {
			entries = []domain.HistoryEntry{}
		}
		return printOutput(w, format, entries)
	case formatTable:
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No conversions yet.")
		return nil
	}

	t := NewTable(w, "WHEN", "FILE", "FROM", "TO", "ID")
	for _, e := range entries {
		t.AddRow(e.Timestamp.Local().Format("2006-01-02 15:04"), e.OriginalName, e.FromFormat, e.ToFormat, e.ID)
	}
	t.Render()

	if !updated.IsZero() {
		fmt.Fprintf(w, "\n%d conversions, last written %s\n", len(entries), updated.Local().Format(time.RFC1123))
	}
	return nil
}
