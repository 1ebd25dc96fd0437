package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical journal date form.
const DateFormat = "2006-01-02"

// DefaultCurrency is the commodity symbol used when a statement gives none.
const DefaultCurrency = "$"

// Flag marks the cleared state of a transaction in the header line.
type Flag string

const (
	FlagUnmarked Flag = "  "
	FlagPending  Flag = " ! "
	FlagCleared  Flag = " * "
)

// MetaPair is one key/value metadata line. Insertion order is preserved and
// duplicate keys are allowed.
type MetaPair struct {
	Key   string
	Value string
}

// Posting is a single account/amount line within a transaction (a "split").
type Posting struct {
	Account   string // colon-delimited path, e.g. Expenses:Flex:General
	Amount    decimal.Decimal
	Currency  string // commodity symbol, e.g. "$"
	Assertion bool   // balance assertion, renders "= $ 1425.59"
	Tags      []string
	Metadata  []MetaPair
}

// Transaction is one dated journal entry and its postings.
type Transaction struct {
	Date          time.Time
	Flag          Flag
	Payee         string
	Tags          []string
	Metadata      []MetaPair
	Postings      []Posting // first posting is the bank-account side
	UUID          string    // content fingerprint, see internal/fingerprint
	SourceAccount string    // external account id, used to route output files
}

// Add appends a posting for account with the given amount and currency.
func (t *Transaction) Add(account string, amount decimal.Decimal, currency string) {
	if currency == "" {
		currency = DefaultCurrency
	}
	t.Postings = append(t.Postings, Posting{
		Account:  account,
		Amount:   amount,
		Currency: currency,
	})
}

// AddMeta appends a metadata pair to the transaction.
func (t *Transaction) AddMeta(key, value string) {
	t.Metadata = append(t.Metadata, MetaPair{Key: key, Value: value})
}

// Primary returns the first posting, conventionally the bank-account side.
// Returns nil when the transaction has no postings yet.
func (t *Transaction) Primary() *Posting {
	if len(t.Postings) == 0 {
		return nil
	}
	return &t.Postings[0]
}

// Sum returns the sum of all posting amounts. A fully allocated non-assertion
// transaction sums to zero.
func (t *Transaction) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, p := range t.Postings {
		total = total.Add(p.Amount)
	}
	return total
}

// Field returns the string value of a named transaction attribute for rule
// matching. Field names are case-insensitive; unknown names yield "".
func (t *Transaction) Field(name string) string {
	switch strings.ToLower(name) {
	case "date":
		return t.Date.Format(DateFormat)
	case "payee":
		return t.Payee
	case "amount":
		if p := t.Primary(); p != nil {
			return p.Amount.String()
		}
		return ""
	case "uuid", "hash":
		return t.UUID
	case "account":
		return t.SourceAccount
	case "flag":
		return string(t.Flag)
	case "currency":
		if p := t.Primary(); p != nil {
			return p.Currency
		}
		return ""
	default:
		return ""
	}
}
