package main

import (
	"os"

	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch"
	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch/journal"
	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch/service"
	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch/settings"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var restartCmd = &cobra.Command{
	Use:   "restart-services",
	Short: "Restart the configured service pair once",
	Long: `Restart the configured service pair once, the way the service host does
on a disconnect: the dependent service is stopped, then the base service is
stopped and started again. The dependent service is left stopped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load(settingsFile)
		if err != nil {
			return err
		}

		m, err := service.Connect()
		if err != nil {
			return errors.Wrap(err, "failed to connect to service manager")
		}
		defer m.Close()

		j := journal.NewHumanWriter("stderr", os.Stderr)
		r := rdpwatch.NewPairRestarter(service.NewController(m), j)

		if !r.RestartDependentPair(cmd.Context(), s.Pair()) {
			return errors.Errorf("failed to restart %s", s.Services.Base)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(restartCmd)
}
