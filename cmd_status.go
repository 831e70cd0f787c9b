package main

import (
	"fmt"

	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch/journal"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var statusLines int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the latest journal entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := journal.ReadLastFromFile(journalFile, statusLines)
		if err != nil {
			return errors.Wrap(err, "failed to read journal")
		}

		// Oldest first, like the journal itself.
		out := cmd.OutOrStdout()
		for i := len(entries) - 1; i >= 0; i-- {
			fmt.Fprintln(out, journal.FormatEvent(entries[i].Time, entries[i].Event))
		}

		return nil
	},
}

func init() {
	statusCmd.Flags().IntVarP(&statusLines, "lines", "n", 20, "number of entries to print")
	rootCmd.AddCommand(statusCmd)
}
