package importer

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgertools-dev/ledgertools/internal/accounts"
	"github.com/ledgertools-dev/ledgertools/internal/fingerprint"
	"github.com/ledgertools-dev/ledgertools/internal/model"
)

// csvDefaultDateFormat matches the common US bank export layout.
const csvDefaultDateFormat = "01/02/2006"

// CSVParser parses bank CSV exports using the per-account column layout.
type CSVParser struct{}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// BuildJournal reads a bank CSV and returns one transaction per row. CSV
// exports carry no statement balance, so no assertions are produced.
func (p *CSVParser) BuildJournal(path string, acct accounts.Account) ([]*model.Transaction, []*model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading statement CSV: %w", err)
	}

	layout := acct.CSV
	if layout.DateFormat == "" {
		layout.DateFormat = csvDefaultDateFormat
	}
	if layout.Header && len(records) > 0 {
		records = records[1:]
	}

	importDate := time.Now().Format(model.DateFormat)
	var txns []*model.Transaction
	for i, rec := range records {
		txn, err := parseCSVRow(rec, layout, acct, importDate)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		txns = append(txns, txn)
	}
	return nil, txns, nil
}

func parseCSVRow(rec []string, layout accounts.CSVLayout, acct accounts.Account, importDate string) (*model.Transaction, error) {
	col := func(i int) (string, error) {
		if i < 0 || i >= len(rec) {
			return "", fmt.Errorf("column %d out of range (%d fields)", i, len(rec))
		}
		return rec[i], nil
	}

	rawDate, err := col(layout.DateCol)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse(layout.DateFormat, rawDate)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", rawDate, err)
	}

	payee, err := col(layout.PayeeCol)
	if err != nil {
		return nil, err
	}

	rawAmount, err := col(layout.AmountCol)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", rawAmount, err)
	}

	ref := ""
	if layout.RefCol > 0 {
		if ref, err = col(layout.RefCol); err != nil {
			return nil, err
		}
	}

	uuid := fingerprint.New(ref, "", date, payee, amount)
	txn := &model.Transaction{
		Date:          date,
		Flag:          model.FlagUnmarked,
		Payee:         payee,
		UUID:          uuid,
		SourceAccount: acct.AcctID,
	}
	txn.Add(acct.From, amount, model.DefaultCurrency)
	txn.AddMeta("UUID", uuid)
	txn.AddMeta("ImportDate", importDate)
	return txn, nil
}
