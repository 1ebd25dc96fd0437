// Package classify defines the text-classification collaborator used when no
// rule matches a transaction, and extracts training examples from existing
// ledger text.
package classify

// Result is one ranked candidate account for a payee string.
type Result struct {
	Account string
	Score   float64
}

// Classifier is the statistical oracle consulted for unmatched transactions.
// Implementations rank candidate accounts for a payee string and learn from
// confirmed pairings. The ranking algorithm itself lives outside this
// repository.
type Classifier interface {
	// Classify returns candidates ordered best-first, or an empty slice
	// when the model has nothing to offer.
	Classify(text string) ([]Result, error)
	// Update records a confirmed payee/account pairing for online learning.
	Update(text, account string) error
}
