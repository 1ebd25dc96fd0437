package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgertools-dev/ledgertools/internal/accounts"
	"github.com/ledgertools-dev/ledgertools/internal/config"
	"github.com/ledgertools-dev/ledgertools/internal/gitops"
	"github.com/ledgertools-dev/ledgertools/internal/importer"
	"github.com/ledgertools-dev/ledgertools/internal/importlog"
	"github.com/ledgertools-dev/ledgertools/internal/rules"
)

func newImportCommand() *cobra.Command {
	var configPath string
	var names []string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import bank statements into the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, configPath, names)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgertools.yaml", "config file")
	cmd.Flags().StringSliceVarP(&names, "account", "a", nil, "account to import (default all)")

	return cmd
}

func runImport(cmd *cobra.Command, configPath string, names []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	root := filepath.Dir(configPath)

	rs := rules.NewRuleSet()
	if cfg.Rules != "" {
		rs, err = rules.Load(resolvePath(root, cfg.Rules))
		if err != nil {
			return err
		}
	}

	svc := accounts.NewService(cfg.Accounts)
	accts := svc.All()
	if len(names) > 0 {
		accts = accts[:0:0]
		for _, name := range names {
			a, ok := svc.ByName(name)
			if !ok {
				return fmt.Errorf("unknown account %q", name)
			}
			accts = append(accts, a)
		}
	}
	if len(accts) == 0 {
		return fmt.Errorf("no accounts configured in %s", configPath)
	}

	// The pipeline works with paths anchored at the config directory; git
	// later gets the original root-relative names.
	resolved := make([]accounts.Account, len(accts))
	for i, a := range accts {
		a.LedgerFile = resolvePath(root, a.LedgerFile)
		resolved[i] = a
	}
	cfgResolved := *cfg
	if cfgResolved.LedgerFile != "" {
		cfgResolved.LedgerFile = resolvePath(root, cfgResolved.LedgerFile)
	}
	if cfgResolved.AssertFile != "" {
		cfgResolved.AssertFile = resolvePath(root, cfgResolved.AssertFile)
	}

	pipeline := importer.NewPipeline(&cfgResolved, rs, nil)
	results := pipeline.Run(resolved)

	now := time.Now()
	entries := make([]importlog.Entry, 0, len(results))
	failures := 0
	var touched []string

	for _, res := range results {
		entry := importlog.Entry{
			Timestamp:    now,
			Account:      res.Account,
			Imported:     res.Imported,
			Duplicates:   res.Duplicates,
			Ignored:      res.Ignored,
			Unclassified: res.Unclassified,
		}
		if res.Err != nil {
			entry.Error = res.Err.Error()
			failures++
			cmd.PrintErrf("%s: %v\n", res.Account, res.Err)
		} else {
			cmd.Printf("%s: %d imported, %d duplicates, %d ignored, %d unclassified\n",
				res.Account, res.Imported, res.Duplicates, res.Ignored, res.Unclassified)
			for _, txnErr := range res.TxnErrs {
				cmd.PrintErrf("%s: skipped %v\n", res.Account, txnErr)
			}
			if a, ok := svc.ByName(res.Account); ok && res.Imported > 0 {
				touched = append(touched, a.LedgerFile)
			}
		}
		entries = append(entries, entry)
	}

	if err := importlog.Append(root, entries); err != nil {
		return err
	}

	if learned := pipeline.Learned(); len(learned) > 0 {
		if err := saveLearned(root, cfg.Rules, learned); err != nil {
			return err
		}
	}

	if cfg.Git.AutoCommit && len(touched) > 0 {
		if err := autoCommit(cmd, root, cfg, touched); err != nil {
			return err
		}
	}

	if failures == len(results) {
		return fmt.Errorf("all %d accounts failed", failures)
	}
	return nil
}

// saveLearned appends classifier-confirmed rules next to the configured
// rules. A rules directory gets a learned.rules file; a single rules file
// grows in place.
func saveLearned(root, rulesPath string, learned []rules.Rule) error {
	if rulesPath == "" {
		return nil
	}
	dest := resolvePath(root, rulesPath)
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		dest = filepath.Join(dest, "learned"+rules.RuleExt)
	}
	return rules.AppendFile(dest, learned)
}

func autoCommit(cmd *cobra.Command, root string, cfg *config.Config, touched []string) error {
	if cfg.LedgerFile != "" {
		touched = append(touched, cfg.LedgerFile)
	}
	if cfg.AssertFile != "" {
		touched = append(touched, cfg.AssertFile)
	}
	if !gitops.IsRepo(root) || !gitops.HasChanges(root, touched...) {
		return nil
	}
	hash, err := gitops.CommitFiles(root, "Import bank statements", cfg.Git.AuthorName, cfg.Git.AuthorEmail, touched...)
	if err != nil {
		return fmt.Errorf("auto-commit: %w", err)
	}
	cmd.Printf("Committed %s\n", hash)
	return nil
}

// resolvePath anchors a relative config path at the config file's directory.
func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
