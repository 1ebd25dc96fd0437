package commands

import (
	"github.com/spf13/cobra"

	"github.com/ledgertools-dev/ledgertools/internal/rules"
)

func newRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Work with allocation rules",
	}

	cmd.AddCommand(newRulesLintCommand())

	return cmd
}

func newRulesLintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <file-or-dir>",
		Short: "Check rule files for parse errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := rules.Load(args[0])
			if err != nil {
				return err
			}
			cmd.Printf("%d rules OK\n", rs.Len())
			return nil
		},
	}
}
