package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONParserBuildJournal(t *testing.T) {
	path := writeFile(t, "statement.json", `[
  {"date": "2026-01-15", "payee": "GROCERY MART", "amount": "-54.23", "currency": "$"},
  {"date": "2026-01-20", "payee": "CHECK #1042 RENT", "amount": -950.00}
]`)

	acct := checkingAccount()
	acct.Parser = "json"

	p := &JSONParser{}
	assertions, txns, err := p.BuildJournal(path, acct)
	require.NoError(t, err)
	assert.Empty(t, assertions)
	require.Len(t, txns, 2)

	first := txns[0]
	assert.Equal(t, date(t, "2026-01-15"), first.Date)
	assert.Equal(t, "GROCERY MART", first.Payee)
	require.Len(t, first.Postings, 1)
	assert.True(t, dec(t, "-54.23").Equal(first.Postings[0].Amount))
	assert.Equal(t, "$", first.Postings[0].Currency)

	// Missing currency field falls back to the default marker, and the
	// check number lands in metadata.
	second := txns[1]
	assert.Equal(t, "$", second.Postings[0].Currency)
	assert.True(t, dec(t, "-950").Equal(second.Postings[0].Amount))
	found := false
	for _, m := range second.Metadata {
		if m.Key == "check" {
			found = true
			assert.Equal(t, "1042", m.Value)
		}
	}
	assert.True(t, found, "check metadata missing")
}

func TestJSONParserCustomPaths(t *testing.T) {
	path := writeFile(t, "statement.json", `[
  {"posted": {"on": "2026-02-01"}, "merchant": "HARDWARE CO", "amt": "12.99"}
]`)

	acct := checkingAccount()
	acct.Parser = "json"
	acct.Options = map[string]string{
		"date_path":   "$.posted.on",
		"payee_path":  "$.merchant",
		"amount_path": "$.amt",
	}

	p := &JSONParser{}
	_, txns, err := p.BuildJournal(path, acct)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "HARDWARE CO", txns[0].Payee)
	assert.True(t, dec(t, "12.99").Equal(txns[0].Postings[0].Amount))
}

func TestJSONParserBadDate(t *testing.T) {
	path := writeFile(t, "statement.json", `[{"date": "01/15/2026", "payee": "X", "amount": "1.00"}]`)

	acct := checkingAccount()
	acct.Parser = "json"

	p := &JSONParser{}
	_, _, err := p.BuildJournal(path, acct)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing date")
}
