package main

import (
	"log"
	"os"
	"path/filepath"

	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch/settings"
	"github.com/spf13/cobra"
)

var (
	journalFile  string
	settingsFile string
)

var rootCmd = &cobra.Command{
	Use:   "rdpwatch",
	Short: "Reacts to remote desktop sessions being disconnected",
	Long: `rdpwatch watches the terminal session it runs in. Once the session has
been active as a remote session and then gets disconnected, it either exits
(clipboard relays and remote desktop clients) or restarts the remote desktop
services (the service host).

It watches the session in two ways at once: by polling the session state
every minute and by waiting on session notifications. Whichever notices the
disconnect first reacts; the other does not.`,
	SilenceUsage: true,
}

func init() {
	var journalDefault string
	if configDir, err := os.UserConfigDir(); err == nil {
		journalDefault = filepath.Join(configDir, "rdpwatch", "journal.json")
	}

	rootCmd.PersistentFlags().StringVarP(&journalFile, "journal", "j", journalDefault, "journal file path")
	rootCmd.PersistentFlags().StringVarP(&settingsFile, "settings", "s", settings.DefaultPath(), "settings file path")
}

func main() {
	isService, err := runService()
	if err != nil {
		log.Fatalln(err)
	}
	if isService {
		return
	}

	os.Exit(execute())
}

func execute() int {
	if err := rootCmd.Execute(); err != nil {
		// Already printed by cobra.
		return 1
	}
	return 0
}
