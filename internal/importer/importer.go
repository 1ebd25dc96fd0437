// Package importer drives statement imports: it obtains raw statement files,
// parses them into transactions, classifies each transaction through the rule
// engine or the classifier collaborator, and appends the result to the
// ledger.
package importer

import (
	"fmt"
	"strings"

	"github.com/ledgertools-dev/ledgertools/internal/accounts"
	"github.com/ledgertools-dev/ledgertools/internal/model"
)

// Parser converts a statement file into journal transactions. The returned
// assertions carry one balance-assertion transaction per statement; txns
// carry one transaction per bank record, each with a single primary posting
// on the account's configured ledger account.
type Parser interface {
	Format() string
	BuildJournal(path string, acct accounts.Account) (assertions, txns []*model.Transaction, err error)
}

// Downloader obtains a statement file for an account and returns its path.
type Downloader interface {
	Name() string
	Download(acct accounts.Account) (string, error)
}

// DownloadError wraps a downloader failure for one account. The import run
// skips the account and continues.
type DownloadError struct {
	Account string
	Err     error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("downloading %s: %v", e.Account, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ParseError wraps a parser failure for one account's statement file.
type ParseError struct {
	Account string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing statement for %s: %v", e.Account, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Registry holds named parsers and downloaders.
type Registry struct {
	parsers     map[string]Parser
	downloaders map[string]Downloader
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers:     make(map[string]Parser),
		downloaders: make(map[string]Downloader),
	}
}

// RegisterParser adds a parser. Panics on duplicate format.
func (r *Registry) RegisterParser(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Parser returns the parser for format, or nil.
func (r *Registry) Parser(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// RegisterDownloader adds a downloader. Panics on duplicate name.
func (r *Registry) RegisterDownloader(d Downloader) {
	key := strings.ToLower(d.Name())
	if _, ok := r.downloaders[key]; ok {
		panic("duplicate downloader: " + key)
	}
	r.downloaders[key] = d
}

// Downloader returns the downloader for name, or nil.
func (r *Registry) Downloader(name string) Downloader {
	return r.downloaders[strings.ToLower(name)]
}

// DefaultRegistry returns a registry with all built-in parsers and
// downloaders.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterParser(&OFXParser{})
	r.RegisterParser(&CSVParser{})
	r.RegisterParser(&JSONParser{})
	r.RegisterDownloader(&FileDownloader{})
	r.RegisterDownloader(&ExecDownloader{})
	return r
}
