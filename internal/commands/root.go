package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgertools-dev/ledgertools/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ledgertools",
		Short:   "Bank statement importer for plain-text ledgers",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newTrainCommand())
	rootCmd.AddCommand(newRulesCommand())

	return rootCmd
}
