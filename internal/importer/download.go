package importer

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ledgertools-dev/ledgertools/internal/accounts"
)

// FileDownloader "downloads" a statement that is already on disk, for banks
// whose exports are fetched by hand.
type FileDownloader struct{}

// Name returns the downloader name.
func (d *FileDownloader) Name() string { return "file" }

// Download returns the configured statement path after checking it exists.
func (d *FileDownloader) Download(acct accounts.Account) (string, error) {
	path, err := acct.Option("file")
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("statement file: %w", err)
	}
	return path, nil
}

// ExecDownloader shells out to an external fetch command (a bank scraper,
// an ofxget wrapper) and returns the configured result path.
type ExecDownloader struct{}

// Name returns the downloader name.
func (d *ExecDownloader) Name() string { return "exec" }

// Download runs the account's fetch command and returns the statement path
// it is expected to produce.
func (d *ExecDownloader) Download(acct accounts.Account) (string, error) {
	cmdline, err := acct.Option("command")
	if err != nil {
		return "", err
	}
	path, err := acct.Option("file")
	if err != nil {
		return "", err
	}

	parts := strings.Fields(cmdline)
	if len(parts) == 0 {
		return "", fmt.Errorf("empty fetch command for %s", acct.Name)
	}
	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Env = os.Environ()
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("running %q: %w: %s", parts[0], err, strings.TrimSpace(string(out)))
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("fetch command produced no statement: %w", err)
	}
	return path, nil
}
