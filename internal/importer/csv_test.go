package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgertools-dev/ledgertools/internal/accounts"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func checkingAccount() accounts.Account {
	return accounts.Account{
		Name:       "checking",
		AcctID:     "1234",
		From:       "Assets:Checking",
		To:         "Expenses:Unknown",
		Parser:     "csv",
		LedgerFile: "checking.ledger",
		CSV: accounts.CSVLayout{
			DateCol:   0,
			PayeeCol:  1,
			AmountCol: 2,
			RefCol:    3,
			Header:    true,
		},
	}
}

func TestCSVParserBuildJournal(t *testing.T) {
	path := writeFile(t, "checking.csv",
		"Date,Description,Amount,Reference\n"+
			"01/15/2026,GROCERY MART,-54.23,900101\n"+
			"01/16/2026,EMPLOYER PAYROLL,1500.00,900102\n")

	p := &CSVParser{}
	assertions, txns, err := p.BuildJournal(path, checkingAccount())
	require.NoError(t, err)
	assert.Empty(t, assertions)
	require.Len(t, txns, 2)

	first := txns[0]
	assert.Equal(t, date(t, "2026-01-15"), first.Date)
	assert.Equal(t, "GROCERY MART", first.Payee)
	assert.Equal(t, "1234", first.SourceAccount)
	require.Len(t, first.Postings, 1)
	assert.Equal(t, "Assets:Checking", first.Postings[0].Account)
	assert.True(t, dec(t, "-54.23").Equal(first.Postings[0].Amount))
	assert.NotEmpty(t, first.UUID)
	assert.NotEqual(t, first.UUID, txns[1].UUID)
}

func TestCSVParserCustomDateFormat(t *testing.T) {
	path := writeFile(t, "export.csv", "2026-01-15,COFFEE,-4.50\n")

	acct := checkingAccount()
	acct.CSV = accounts.CSVLayout{DateCol: 0, PayeeCol: 1, AmountCol: 2, DateFormat: "2006-01-02"}

	p := &CSVParser{}
	_, txns, err := p.BuildJournal(path, acct)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, date(t, "2026-01-15"), txns[0].Date)
}

func TestCSVParserShortRow(t *testing.T) {
	path := writeFile(t, "export.csv", "01/15/2026,COFFEE\n")

	acct := checkingAccount()
	acct.CSV.Header = false

	p := &CSVParser{}
	_, _, err := p.BuildJournal(path, acct)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestCSVParserBadAmount(t *testing.T) {
	path := writeFile(t, "export.csv", "01/15/2026,COFFEE,notanumber,1\n")

	acct := checkingAccount()
	acct.CSV.Header = false

	p := &CSVParser{}
	_, _, err := p.BuildJournal(path, acct)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")
}

func TestCSVParserIdenticalRowsShareFingerprint(t *testing.T) {
	path := writeFile(t, "export.csv",
		"01/15/2026,COFFEE,-4.50,7\n"+
			"01/15/2026,COFFEE,-4.50,7\n")

	acct := checkingAccount()
	acct.CSV.Header = false

	p := &CSVParser{}
	_, txns, err := p.BuildJournal(path, acct)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, txns[0].UUID, txns[1].UUID)
}
