// Package journal renders transactions as fixed-width ledger plain text and
// manages the append-only ledger files the importer writes to.
package journal

import (
	"strings"

	"github.com/ledgertools-dev/ledgertools/internal/model"
)

// Default layout for rendered journal text.
const (
	DefaultWidth  = 80
	DefaultIndent = 4
)

// Formatter renders transactions and postings with a fixed column layout.
// The amount's decimal point is aligned so the last digit of every amount
// lands at the same column.
type Formatter struct {
	Width  int // column the amount field is aligned against
	Indent int // spaces per indentation level
}

// NewFormatter returns a Formatter with the standard 80/4 layout.
func NewFormatter() Formatter {
	return Formatter{Width: DefaultWidth, Indent: DefaultIndent}
}

// Posting renders one posting, including its tag and metadata lines.
func (f Formatter) Posting(p model.Posting) string {
	ind := strings.Repeat(" ", f.Indent)

	amt := p.Currency + " " + p.Amount.StringFixed(2)
	if p.Assertion {
		amt = "= " + amt
	}

	// Fill is computed against the amount's integer part so the decimal
	// point aligns regardless of sign or assertion prefix. The trailing 3
	// accounts for the ".NN" cents.
	intPart := amt
	if i := strings.LastIndex(amt, "."); i >= 0 {
		intPart = amt[:i]
	}
	fill := f.Width - len(p.Account+intPart+ind) - 3
	if fill < 0 {
		fill = 0
	}

	out := []string{ind + p.Account + strings.Repeat(" ", fill) + amt}

	if len(p.Tags) > 0 {
		out = append(out, tagLine(p.Tags, ind+ind))
	}
	if len(p.Metadata) > 0 {
		out = append(out, metaLines(p.Metadata, ind+ind))
	}

	return strings.Join(out, "\n")
}

// Transaction renders a full journal entry: header line, transaction tags and
// metadata, then every posting. No trailing blank line; callers separate
// entries when appending to a file.
func (f Formatter) Transaction(t *model.Transaction) string {
	ind := strings.Repeat(" ", f.Indent)

	out := []string{t.Date.Format(model.DateFormat) + string(t.Flag) + t.Payee}

	if len(t.Tags) > 0 {
		out = append(out, tagLine(t.Tags, ind))
	}
	if len(t.Metadata) > 0 {
		out = append(out, metaLines(t.Metadata, ind))
	}

	for _, p := range t.Postings {
		out = append(out, f.Posting(p))
	}

	return strings.Join(out, "\n")
}

// tagLine renders tags as "<indent>; :tag1:tag2:".
func tagLine(tags []string, indent string) string {
	return indent + "; :" + strings.Join(tags, ":") + ":"
}

// metaLines renders one "<indent>; key: value" line per pair, in order.
func metaLines(metadata []model.MetaPair, indent string) string {
	lines := make([]string, len(metadata))
	for i, m := range metadata {
		lines[i] = indent + "; " + m.Key + ": " + m.Value
	}
	return strings.Join(lines, "\n")
}
