// Package accounts provides lookup over the per-account import profiles
// configured in ledgertools.yaml.
package accounts

import (
	"fmt"
	"os"
	"strings"
)

// CSVLayout describes the column layout of a bank CSV export.
type CSVLayout struct {
	DateCol    int    `yaml:"date_col"`
	PayeeCol   int    `yaml:"payee_col"`
	AmountCol  int    `yaml:"amount_col"`
	RefCol     int    `yaml:"ref_col"`            // 0 when the bank provides no reference
	DateFormat string `yaml:"date_format"`        // Go reference layout, e.g. 01/02/2006
	Header     bool   `yaml:"header"`
}

// Account maps one external bank account to its ledger accounts and the
// collaborators used to import it.
type Account struct {
	Name       string            `yaml:"name"`
	AcctID     string            `yaml:"acct_id"`
	BankID     string            `yaml:"bank_id,omitempty"`
	From       string            `yaml:"from"`                  // primary (bank) ledger account
	To         string            `yaml:"to"`                    // fallback offset account
	Parser     string            `yaml:"parser"`
	Downloader string            `yaml:"downloader,omitempty"`
	LedgerFile string            `yaml:"ledger_file"`
	CSV        CSVLayout         `yaml:"csv,omitempty"`
	Options    map[string]string `yaml:"options,omitempty"`
}

// MissingKeyError reports a required option absent from an account profile.
type MissingKeyError struct {
	Account string
	Key     string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("account %q: missing required config key %q", e.Account, e.Key)
}

// Option returns a named option value. Values of the form "env:NAME" resolve
// through the environment so credentials stay out of the config file.
func (a Account) Option(key string) (string, error) {
	v, ok := a.Options[key]
	if !ok || v == "" {
		return "", &MissingKeyError{Account: a.Name, Key: key}
	}
	if name, found := strings.CutPrefix(v, "env:"); found {
		v = os.Getenv(name)
		if v == "" {
			return "", &MissingKeyError{Account: a.Name, Key: key + " (env " + name + ")"}
		}
	}
	return v, nil
}

// Service provides in-memory lookup over account profiles.
type Service struct {
	accounts []Account
	byName   map[string]int
}

// NewService creates a Service from configured account profiles.
func NewService(accts []Account) *Service {
	byName := make(map[string]int, len(accts))
	for i, a := range accts {
		byName[a.Name] = i
	}
	return &Service{accounts: accts, byName: byName}
}

// All returns every profile in configuration order.
func (s *Service) All() []Account {
	return s.accounts
}

// ByName returns the profile with the given name.
func (s *Service) ByName(name string) (Account, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Account{}, false
	}
	return s.accounts[i], true
}

// ByAcctID returns the profile whose external account id matches, used to
// route multi-statement files to the right ledger accounts.
func (s *Service) ByAcctID(acctID string) (Account, bool) {
	for _, a := range s.accounts {
		if a.AcctID == acctID {
			return a, true
		}
	}
	return Account{}, false
}
