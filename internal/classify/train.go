package classify

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	headerRe  = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s*([!*])?\s*(.+)$`)
	postingRe = regexp.MustCompile(`^\s+(\S.*?)\s{2,}=?\s*([$A-Z]+) (-?\d+\.\d{2})\s*$`)
)

// Example pairs a payee string with the offset account it was booked to.
type Example struct {
	Payee   string
	Account string
}

// Extract mines training examples from ledger plain text. Each entry
// contributes its payee and the account of its last posting, which for
// imported transactions is the classified offset side. Comment lines and
// balance assertions yield nothing.
func Extract(journal string) []Example {
	var examples []Example

	for _, block := range strings.Split(journal, "\n\n") {
		var payee, account string
		assertion := false

		for _, line := range strings.Split(block, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), ";") {
				continue
			}
			if m := headerRe.FindStringSubmatch(line); m != nil && payee == "" {
				payee = strings.TrimSpace(m[3])
				continue
			}
			if m := postingRe.FindStringSubmatch(line); m != nil {
				account = strings.TrimSpace(m[1])
				if strings.Contains(line, "= ") {
					assertion = true
				}
			}
		}

		if payee == "" || account == "" || assertion {
			continue
		}
		examples = append(examples, Example{Payee: payee, Account: account})
	}

	return examples
}

// Train feeds every example found in a ledger file to the classifier and
// returns how many examples were used.
func Train(c Classifier, journalPath string) (int, error) {
	data, err := os.ReadFile(journalPath)
	if err != nil {
		return 0, fmt.Errorf("reading journal %s: %w", journalPath, err)
	}

	examples := Extract(string(data))
	for _, ex := range examples {
		if err := c.Update(ex.Payee, ex.Account); err != nil {
			return 0, fmt.Errorf("training on %q: %w", ex.Payee, err)
		}
	}
	return len(examples), nil
}
