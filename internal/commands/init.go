package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ledgertools-dev/ledgertools/internal/config"
	"github.com/ledgertools-dev/ledgertools/internal/gitops"
)

const starterRules = `# Rules are matched top to bottom; the first match wins. Files in this
# directory merge in name order, so prefix names to control precedence.
Bank Service Fee:
  conditions:
    - payee CONTAINS SERVICE FEE
  allocations:
    - REMAINDER Expenses:Bank:Fees
`

func newInitCommand() *cobra.Command {
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, noGit)
		},
	}

	cmd.Flags().BoolVar(&noGit, "no-git", false, "skip git repository setup")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, noGit bool) error {
	for _, d := range []string{"rules", "dat", "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	if err := config.Save(filepath.Join(dir, "ledgertools.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "rules", "00-base.rules"), []byte(starterRules), 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	gitignore := "logs/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if noGit {
		cmd.Printf("Initialized ledger directory at %s\n", dir)
		return nil
	}

	if !gitops.IsRepo(dir) {
		if err := gitops.Init(dir); err != nil {
			return fmt.Errorf("git init: %w", err)
		}
	}
	hash, err := gitops.CommitFiles(dir, "Initialize ledger directory", cfg.Git.AuthorName, cfg.Git.AuthorEmail, ".")
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	cmd.Printf("Initialized ledger directory at %s (%s)\n", dir, hash)
	return nil
}
