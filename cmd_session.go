package main

import (
	"fmt"

	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch/wts"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Print the state of the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := wts.CurrentSessionID()
		if err != nil {
			return errors.Wrap(err, "failed to get session")
		}

		snap, err := wts.StateSource{}.Query()
		if err != nil {
			return errors.Wrap(err, "failed to query session")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "session:         %d\n", id)
		fmt.Fprintf(out, "state:           %s\n", snap.State)
		fmt.Fprintf(out, "console session: %d\n", snap.ConsoleSessionID)
		fmt.Fprintf(out, "active remote:   %t\n", snap.IsActiveRemote(id))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}
