package process

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgertools-dev/ledgertools/internal/accounts"
	"github.com/ledgertools-dev/ledgertools/internal/model"
)

// AmortSchedule splits a mortgage payment using an amortization schedule CSV.
//
// Rule arguments: "file" names the schedule; every other argument maps a
// schedule column to a ledger account. A column absent from the CSV receives
// the remaining unallocated balance and must be the only such mapping. The
// schedule row closest in date to the transaction is used.
type AmortSchedule struct{}

// Name returns the plugin name used in rule files.
func (p *AmortSchedule) Name() string { return "amort_schedule" }

// Process appends one posting per mapped schedule column.
func (p *AmortSchedule) Process(t *model.Transaction, acct accounts.Account, args map[string]string) error {
	primary := t.Primary()
	if primary == nil {
		return fmt.Errorf("amort_schedule: transaction has no primary posting")
	}

	path, ok := args["file"]
	if !ok {
		return fmt.Errorf("amort_schedule: missing \"file\" argument")
	}

	row, err := nearestRow(path, t.Date)
	if err != nil {
		return fmt.Errorf("amort_schedule: %w", err)
	}

	// Deterministic order: schedule columns alphabetically, the remainder
	// mapping last so the running sum is complete.
	var columns []string
	remainder := ""
	for key := range args {
		if key == "file" || key == "currency" {
			continue
		}
		val, inHeader := row[key]
		switch {
		case !inHeader && remainder != "":
			return fmt.Errorf("amort_schedule: columns %q and %q both missing from schedule", remainder, key)
		case !inHeader:
			remainder = key
		case val == "":
			// The column exists but this row has no value; allocating it
			// as remainder would misbook the payment.
			return fmt.Errorf("amort_schedule: column %q empty in schedule row for %s", key, t.Date.Format(model.DateFormat))
		default:
			columns = append(columns, key)
		}
	}
	sort.Strings(columns)

	currency := args["currency"]
	if currency == "" {
		currency = primary.Currency
	}

	allocated := decimal.Zero
	for _, col := range columns {
		amount, err := decimal.NewFromString(row[col])
		if err != nil {
			return fmt.Errorf("amort_schedule: column %q: bad amount %q", col, row[col])
		}
		t.Add(args[col], amount, currency)
		allocated = allocated.Add(amount)
	}

	if remainder != "" {
		t.Add(args[remainder], primary.Amount.Neg().Sub(allocated), currency)
	}

	if !t.Sum().IsZero() {
		return fmt.Errorf("amort_schedule: postings sum to %s, not zero", t.Sum())
	}
	return nil
}

// nearestRow returns the schedule row whose date column is closest to the
// transaction date. A schedule without a usable row is a hard error for the
// transaction being processed.
func nearestRow(path string, date time.Time) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening schedule: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading schedule: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("schedule %s has no rows", path)
	}

	header := records[0]
	var best map[string]string
	var bestDiff time.Duration

	for i, rec := range records[1:] {
		// Every header column gets an entry so a short or sparse row reads
		// as an empty cell, not a missing column.
		row := make(map[string]string, len(header))
		for j, col := range header {
			row[col] = ""
			if j < len(rec) {
				row[col] = rec[j]
			}
		}

		rowDate, err := time.Parse(model.DateFormat, row["date"])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad date %q", i+2, row["date"])
		}

		diff := date.Sub(rowDate)
		if diff < 0 {
			diff = -diff
		}
		if best == nil || diff < bestDiff {
			best = row
			bestDiff = diff
		}
	}

	return best, nil
}
