package commands

import (
	"github.com/spf13/cobra"

	"github.com/ledgertools-dev/ledgertools/internal/classify"
	"github.com/ledgertools-dev/ledgertools/internal/rules"
)

func newTrainCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "train <journal>...",
		Short: "Mine payee rules from existing ledger entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(cmd, args, out)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "rules/learned.rules", "rules file to append to")

	return cmd
}

// pairCollector is a Classifier that only records pairings, used to reuse
// the training walk for rule generation.
type pairCollector struct {
	order []classify.Example
	seen  map[string]bool
}

func (c *pairCollector) Classify(text string) ([]classify.Result, error) { return nil, nil }

func (c *pairCollector) Update(text, account string) error {
	key := text + "\x00" + account
	if c.seen[key] {
		return nil
	}
	c.seen[key] = true
	c.order = append(c.order, classify.Example{Payee: text, Account: account})
	return nil
}

func runTrain(cmd *cobra.Command, journals []string, out string) error {
	collector := &pairCollector{seen: make(map[string]bool)}

	total := 0
	for _, path := range journals {
		n, err := classify.Train(collector, path)
		if err != nil {
			return err
		}
		total += n
	}

	learned := make([]rules.Rule, 0, len(collector.order))
	for _, ex := range collector.order {
		learned = append(learned, rules.MakeRule(ex.Payee, ex.Account))
	}

	if len(learned) > 0 {
		if err := rules.AppendFile(out, learned); err != nil {
			return err
		}
	}

	cmd.Printf("Mined %d rules from %d entries into %s\n", len(learned), total, out)
	return nil
}
