package journal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ledgertools-dev/ledgertools/internal/model"
)

// Writer appends rendered transactions to ledger files. Files are append-only;
// imported entries are never rewritten in place.
type Writer struct {
	fmtr Formatter
}

// NewWriter creates a Writer using the given formatter.
func NewWriter(fmtr Formatter) *Writer {
	return &Writer{fmtr: fmtr}
}

// Append renders each transaction and appends it to the ledger file at path,
// followed by a blank separator line. The file and its directory are created
// on first use.
func (w *Writer) Append(path string, txns []*model.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating ledger dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	if err := w.WriteTo(f, txns); err != nil {
		return fmt.Errorf("appending to ledger %s: %w", path, err)
	}
	return nil
}

// WriteTo renders each transaction to out, separated by blank lines.
func (w *Writer) WriteTo(out io.Writer, txns []*model.Transaction) error {
	for _, t := range txns {
		if _, err := fmt.Fprintf(out, "%s\n\n", w.fmtr.Transaction(t)); err != nil {
			return err
		}
	}
	return nil
}
