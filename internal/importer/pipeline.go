package importer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledgertools-dev/ledgertools/internal/accounts"
	"github.com/ledgertools-dev/ledgertools/internal/allocate"
	"github.com/ledgertools-dev/ledgertools/internal/classify"
	"github.com/ledgertools-dev/ledgertools/internal/config"
	"github.com/ledgertools-dev/ledgertools/internal/journal"
	"github.com/ledgertools-dev/ledgertools/internal/model"
	"github.com/ledgertools-dev/ledgertools/internal/process"
	"github.com/ledgertools-dev/ledgertools/internal/rules"
)

// AccountResult summarizes one account's import run.
type AccountResult struct {
	Account      string
	Imported     int
	Duplicates   int
	Ignored      int
	Unclassified int
	Failed       int     // transactions dropped by an allocation or process error
	TxnErrs      []error // one entry per failed transaction
	Err          error   // download or parse failure; counts are zero when set
}

// Pipeline runs statement imports end to end: download, parse, dedup,
// classify, split, append.
type Pipeline struct {
	Config     *config.Config
	Rules      *rules.RuleSet
	Registry   *Registry
	Plugins    *process.Registry
	Classifier classify.Classifier // nil disables the statistical fallback
	Writer     *journal.Writer

	learned []rules.Rule
}

// NewPipeline wires a pipeline from configuration with the default parser
// and plugin registries.
func NewPipeline(cfg *config.Config, rs *rules.RuleSet, cls classify.Classifier) *Pipeline {
	fmtr := journal.Formatter{Width: cfg.Journal.Width, Indent: cfg.Journal.Indent}
	return &Pipeline{
		Config:     cfg,
		Rules:      rs,
		Registry:   DefaultRegistry(),
		Plugins:    process.DefaultRegistry(),
		Classifier: cls,
		Writer:     journal.NewWriter(fmtr),
	}
}

// Learned returns the payee rules created from classifier confirmations
// during the run, so callers can persist them.
func (p *Pipeline) Learned() []rules.Rule { return p.learned }

// Run imports every given account, isolating failures per account.
func (p *Pipeline) Run(accts []accounts.Account) []AccountResult {
	results := make([]AccountResult, 0, len(accts))
	for _, acct := range accts {
		results = append(results, p.RunAccount(acct))
	}
	return results
}

// RunAccount imports a single account's statement.
func (p *Pipeline) RunAccount(acct accounts.Account) AccountResult {
	res := AccountResult{Account: acct.Name}

	path, err := p.fetch(acct)
	if err != nil {
		res.Err = err
		return res
	}

	parser := p.Registry.Parser(acct.Parser)
	if parser == nil {
		res.Err = &ParseError{Account: acct.Name, Err: fmt.Errorf("unknown parser %q", acct.Parser)}
		return res
	}
	assertions, txns, err := parser.BuildJournal(path, acct)
	if err != nil {
		res.Err = &ParseError{Account: acct.Name, Err: err}
		return res
	}

	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })

	seen, err := journal.LoadSeen(p.ledgerFiles(acct)...)
	if err != nil {
		res.Err = fmt.Errorf("scanning ledger for %s: %w", acct.Name, err)
		return res
	}

	var keep []*model.Transaction
	for _, txn := range txns {
		if txn.UUID != "" && seen[txn.UUID] {
			res.Duplicates++
			continue
		}
		// Fingerprints hash the raw payee, so scrubbing happens after the
		// duplicate check.
		txn.Payee = scrubPayee(txn.Payee, p.Config.StopWords)
		outcome, err := p.classifyTxn(txn, acct)
		if err != nil {
			// A bad directive or schedule row loses only this transaction;
			// the rest of the batch still imports.
			res.Failed++
			res.TxnErrs = append(res.TxnErrs, fmt.Errorf("%s %q: %w",
				txn.Date.Format(model.DateFormat), txn.Payee, err))
			continue
		}
		if outcome == outcomeIgnored {
			res.Ignored++
			continue
		}
		if outcome == outcomeUnclassified {
			res.Unclassified++
		}
		if txn.UUID != "" {
			seen[txn.UUID] = true
		}
		keep = append(keep, txn)
	}

	if err := p.write(acct, assertions, keep); err != nil {
		res.Err = err
		return res
	}
	res.Imported = len(keep)
	return res
}

// fetch resolves the account's statement path, running its downloader when
// one is configured.
func (p *Pipeline) fetch(acct accounts.Account) (string, error) {
	name := acct.Downloader
	if name == "" {
		name = "file"
	}
	dl := p.Registry.Downloader(name)
	if dl == nil {
		return "", &DownloadError{Account: acct.Name, Err: fmt.Errorf("unknown downloader %q", name)}
	}
	path, err := dl.Download(acct)
	if err != nil {
		return "", &DownloadError{Account: acct.Name, Err: err}
	}
	return path, nil
}

type outcome int

const (
	outcomeMatched outcome = iota
	outcomeIgnored
	outcomeUnclassified
)

// classifyTxn settles one transaction's offset postings, via the first
// matching rule or the classifier fallback.
func (p *Pipeline) classifyTxn(txn *model.Transaction, acct accounts.Account) (outcome, error) {
	rule, err := p.Rules.Resolve(txn)
	if err != nil {
		return outcomeMatched, err
	}
	if rule == nil {
		return p.fallback(txn, acct)
	}
	if rule.Ignore {
		return outcomeIgnored, nil
	}

	switch {
	case rule.Process != nil:
		plugin := p.Plugins.Get(rule.Process.Plugin)
		if plugin == nil {
			return outcomeMatched, fmt.Errorf("rule %q: unknown process plugin %q", rule.Name, rule.Process.Plugin)
		}
		if err := plugin.Process(txn, acct, rule.Process.Args); err != nil {
			return outcomeMatched, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
	case len(rule.Allocations) > 0:
		if err := allocate.Apply(txn, rule.Allocations); err != nil {
			return outcomeMatched, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
	default:
		if err := allocate.Apply(txn, []string{"REMAINDER " + acct.To}); err != nil {
			return outcomeMatched, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
	}

	if rule.ChangePayee {
		txn.Payee = rule.Name
	}
	txn.Tags = append(txn.Tags, rule.Tags...)
	return outcomeMatched, nil
}

// fallback settles an unmatched transaction: best classifier candidate when
// available, the account's configured offset otherwise. A confirmed
// candidate is fed back to the classifier and turned into a payee rule.
func (p *Pipeline) fallback(txn *model.Transaction, acct accounts.Account) (outcome, error) {
	if p.Classifier != nil {
		candidates, err := p.Classifier.Classify(txn.Payee)
		if err != nil {
			return outcomeUnclassified, fmt.Errorf("classifying %q: %w", txn.Payee, err)
		}
		if len(candidates) > 0 {
			account := candidates[0].Account
			if err := allocate.Apply(txn, []string{"100 PERCENT " + account}); err != nil {
				return outcomeMatched, err
			}
			if err := p.Classifier.Update(txn.Payee, account); err != nil {
				return outcomeMatched, fmt.Errorf("updating classifier: %w", err)
			}
			learned := rules.MakeRule(txn.Payee, account)
			p.Rules.Add(learned)
			p.learned = append(p.learned, learned)
			return outcomeMatched, nil
		}
	}
	return outcomeUnclassified, allocate.Apply(txn, []string{"REMAINDER " + acct.To})
}

// write appends imported transactions to the account ledger (and the
// consolidated ledger when configured) and assertions to the assert file.
func (p *Pipeline) write(acct accounts.Account, assertions, txns []*model.Transaction) error {
	if len(txns) > 0 {
		for _, path := range p.ledgerFiles(acct) {
			if err := p.Writer.Append(path, txns); err != nil {
				return fmt.Errorf("writing ledger for %s: %w", acct.Name, err)
			}
		}
	}
	if len(assertions) > 0 {
		dest := p.Config.AssertFile
		if dest == "" {
			dest = acct.LedgerFile
		}
		fresh, err := p.freshAssertions(dest, assertions)
		if err != nil {
			return fmt.Errorf("scanning assertions for %s: %w", acct.Name, err)
		}
		if len(fresh) == 0 {
			return nil
		}
		if err := p.Writer.Append(dest, fresh); err != nil {
			return fmt.Errorf("writing assertions for %s: %w", acct.Name, err)
		}
	}
	return nil
}

// freshAssertions drops balance assertions already recorded in dest, so
// re-importing a statement stays idempotent for the assertion file too.
func (p *Pipeline) freshAssertions(dest string, assertions []*model.Transaction) ([]*model.Transaction, error) {
	seen, err := journal.LoadSeen(dest)
	if err != nil {
		return nil, err
	}
	var fresh []*model.Transaction
	for _, a := range assertions {
		if a.UUID != "" && seen[a.UUID] {
			continue
		}
		if a.UUID != "" {
			seen[a.UUID] = true
		}
		fresh = append(fresh, a)
	}
	return fresh, nil
}

// scrubPayee drops configured stop words from a payee string, collapsing
// the remaining words with single spaces.
func scrubPayee(payee string, stopWords []string) string {
	if len(stopWords) == 0 {
		return payee
	}
	stop := make(map[string]bool, len(stopWords))
	for _, w := range stopWords {
		stop[strings.ToLower(w)] = true
	}
	var kept []string
	for _, w := range strings.Fields(payee) {
		if !stop[strings.ToLower(w)] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// ledgerFiles returns the account's ledger destinations, deduplicated.
func (p *Pipeline) ledgerFiles(acct accounts.Account) []string {
	paths := []string{acct.LedgerFile}
	if p.Config.LedgerFile != "" && p.Config.LedgerFile != acct.LedgerFile {
		paths = append(paths, p.Config.LedgerFile)
	}
	return paths
}
