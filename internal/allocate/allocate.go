// Package allocate converts a matched rule's allocation directives into
// concrete offsetting postings, enforcing the zero-sum invariant.
package allocate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgertools-dev/ledgertools/internal/model"
)

// Directive types.
const (
	TypePercent   = "PERCENT"
	TypeDollars   = "DOLLARS"
	TypeRemainder = "REMAINDER"
)

// Error reports a directive that could not be applied to a transaction.
type Error struct {
	Directive string
	Msg       string
}

func (e *Error) Error() string {
	if e.Directive == "" {
		return "allocation: " + e.Msg
	}
	return fmt.Sprintf("allocation %q: %s", e.Directive, e.Msg)
}

var oneHundred = decimal.NewFromInt(100)

// Apply splits the transaction's primary-posting amount across the rule's
// allocation directives, appending one offsetting posting per directive.
// Directives run strictly in listed order against a running allocated total;
// REMAINDER must come last and any directive after it is an error. A zero-amount
// allocation emits no posting. On return the transaction's postings sum to
// zero exactly, or an *Error describes why they cannot.
func Apply(t *model.Transaction, directives []string) error {
	primary := t.Primary()
	if primary == nil {
		return &Error{Msg: "transaction has no primary posting"}
	}

	total := primary.Amount
	allocated := decimal.Zero
	remainderDone := false

	for _, raw := range directives {
		d, err := parseDirective(raw)
		if err != nil {
			return err
		}
		// A later directive would re-split what REMAINDER already took;
		// clamping would silently zero it out, so reject it outright.
		if remainderDone {
			return &Error{Directive: raw, Msg: "directive follows REMAINDER"}
		}

		var amount decimal.Decimal
		switch d.kind {
		case TypePercent:
			amount = total.Mul(d.value).Div(oneHundred)
			if amount.Add(allocated).Abs().GreaterThan(total.Abs()) {
				amount = total.Sub(allocated)
			}
		case TypeDollars:
			amount = d.value
			if amount.Add(allocated).Abs().GreaterThan(total.Abs()) {
				amount = total.Sub(allocated)
			}
		case TypeRemainder:
			if total.Abs().GreaterThan(allocated.Abs()) {
				amount = total.Sub(allocated)
			} else {
				amount = decimal.Zero
			}
			remainderDone = true
		}

		allocated = allocated.Add(amount)
		if amount.IsZero() {
			continue
		}
		t.Add(d.account, amount.Neg(), primary.Currency)
	}

	if !t.Sum().IsZero() {
		return &Error{Msg: fmt.Sprintf("postings sum to %s, not zero (REMAINDER missing or misplaced?)", t.Sum())}
	}
	return nil
}

type directive struct {
	value   decimal.Decimal
	kind    string
	account string
}

// parseDirective splits "<value> <type> <account>". REMAINDER carries no
// value: "REMAINDER <account>". Account paths may contain spaces.
func parseDirective(raw string) (directive, error) {
	parts := strings.Fields(raw)

	if len(parts) >= 2 && strings.EqualFold(parts[0], TypeRemainder) {
		return directive{
			kind:    TypeRemainder,
			account: strings.Join(parts[1:], " "),
		}, nil
	}

	if len(parts) < 3 {
		return directive{}, &Error{Directive: raw, Msg: "want \"<value> <type> <account>\""}
	}

	value, err := decimal.NewFromString(parts[0])
	if err != nil {
		return directive{}, &Error{Directive: raw, Msg: "bad value " + parts[0]}
	}

	kind := strings.ToUpper(parts[1])
	switch kind {
	case TypePercent, TypeDollars:
	case TypeRemainder:
		// "0 REMAINDER Expenses:X" is tolerated; the value is ignored.
	default:
		return directive{}, &Error{Directive: raw, Msg: "unknown type " + parts[1]}
	}

	return directive{
		value:   value,
		kind:    kind,
		account: strings.Join(parts[2:], " "),
	}, nil
}
