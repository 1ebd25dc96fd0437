package rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgertools-dev/ledgertools/internal/model"
)

func txn(payee, amount string) *model.Transaction {
	amt, _ := decimal.NewFromString(amount)
	return &model.Transaction{
		Date:     time.Date(2017, 3, 4, 0, 0, 0, 0, time.UTC),
		Flag:     model.FlagUnmarked,
		Payee:    payee,
		Postings: []model.Posting{{Account: "Assets:Checking", Amount: amt, Currency: "$"}},
	}
}

func parseSet(t *testing.T, doc string) *RuleSet {
	t.Helper()
	rs := NewRuleSet()
	require.NoError(t, Parse(rs, []byte(doc)))
	return rs
}

const payrollRule = `
Payroll:
  conditions:
    - AND:
      - payee CONTAINS Employer
      - amount GT 800.00
  allocations:
    - 100 PERCENT Income:Salary
`

func TestResolvePayrollRule(t *testing.T) {
	rs := parseSet(t, payrollRule)

	match, err := rs.Resolve(txn("ACME Employer Payroll", "1500.00"))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "Payroll", match.Name)

	match, err = rs.Resolve(txn("ACME Employer Payroll", "500.00"))
	require.NoError(t, err)
	assert.Nil(t, match, "amount below GT threshold")

	match, err = rs.Resolve(txn("Corner Store", "1500.00"))
	require.NoError(t, err)
	assert.Nil(t, match, "payee does not contain Employer")
}

func TestResolveFirstDefinitionWins(t *testing.T) {
	rs := parseSet(t, `
First:
  conditions:
    - payee CONTAINS store
  allocations:
    - 100 PERCENT Expenses:A
Second:
  conditions:
    - payee CONTAINS store
  allocations:
    - 100 PERCENT Expenses:B
`)

	match, err := rs.Resolve(txn("CORNER STORE", "-12.00"))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "First", match.Name, "both match; definition order decides")
}

func TestNestedLogic(t *testing.T) {
	rs := parseSet(t, `
Utilities:
  conditions:
    - OR:
      - payee STARTS_WITH city water
      - AND:
        - payee CONTAINS electric
        - amount LT 0
  allocations:
    - 100 PERCENT Expenses:Utilities
`)

	for _, tc := range []struct {
		payee  string
		amount string
		want   bool
	}{
		{"CITY WATER 443", "-30.00", true},
		{"TOWN ELECTRIC CO", "-81.50", true},
		{"TOWN ELECTRIC CO", "81.50", false},
		{"GAS STATION", "-20.00", false},
	} {
		match, err := rs.Resolve(txn(tc.payee, tc.amount))
		require.NoError(t, err)
		assert.Equal(t, tc.want, match != nil, "payee %q amount %s", tc.payee, tc.amount)
	}
}

func TestBareConditionListDefaultsToAND(t *testing.T) {
	rs := parseSet(t, `
Rent:
  conditions:
    - payee CONTAINS property
    - amount LT 0
  allocations:
    - 100 PERCENT Expenses:Rent
`)

	match, err := rs.Resolve(txn("CITY PROPERTY MGMT", "-900.00"))
	require.NoError(t, err)
	assert.NotNil(t, match)

	match, err = rs.Resolve(txn("CITY PROPERTY MGMT", "900.00"))
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestRuleFlagsAndProcess(t *testing.T) {
	rs := parseSet(t, `
Transfer:
  conditions:
    - payee CONTAINS transfer
  ignore: true
Mortgage:
  conditions:
    - payee CONTAINS mortgage co
  change_payee: true
  tags: [home]
  process:
    amort_schedule:
      file: schedule.csv
      interest: Expenses:Home:Interest
`)

	match, err := rs.Resolve(txn("ONLINE TRANSFER 42", "-100.00"))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.True(t, match.Ignore)

	match, err = rs.Resolve(txn("MORTGAGE CO 992", "-1100.00"))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.True(t, match.ChangePayee)
	assert.Equal(t, []string{"home"}, match.Tags)
	require.NotNil(t, match.Process)
	assert.Equal(t, "amort_schedule", match.Process.Plugin)
	assert.Equal(t, "schedule.csv", match.Process.Args["file"])
}

func TestParseRejectsUnknownComparator(t *testing.T) {
	err := Parse(NewRuleSet(), []byte(`
Bad:
  conditions:
    - payee RESEMBLES store
`))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Bad", pe.Rule)
	assert.Contains(t, pe.Msg, "RESEMBLES")
}

func TestParseRejectsUnknownOperator(t *testing.T) {
	err := Parse(NewRuleSet(), []byte(`
Bad:
  conditions:
    - MAYBE:
      - payee CONTAINS store
`))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Msg, "MAYBE")
}

func TestParseRejectsMalformedCondition(t *testing.T) {
	err := Parse(NewRuleSet(), []byte(`
Bad:
  conditions:
    - payee CONTAINS
`))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestLoadDirectoryMergesLexicographically(t *testing.T) {
	dir := t.TempDir()
	// 20-bank.rules redefines Coffee; the later file wins but keeps the
	// original definition position.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "10-common.rules"), []byte(`
Coffee:
  conditions:
    - payee CONTAINS coffee
  allocations:
    - 100 PERCENT Expenses:Flex:Dining
Fuel:
  conditions:
    - payee CONTAINS fuel
  allocations:
    - 100 PERCENT Expenses:Auto:Fuel
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20-bank.rules"), []byte(`
Coffee:
  conditions:
    - payee CONTAINS coffee
  allocations:
    - 100 PERCENT Expenses:Flex:Coffee
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	rs, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 2, rs.Len())

	all := rs.Rules()
	assert.Equal(t, "Coffee", all[0].Name)
	assert.Equal(t, []string{"100 PERCENT Expenses:Flex:Coffee"}, all[0].Allocations)
	assert.Equal(t, "Fuel", all[1].Name)
}

func TestMakeRule(t *testing.T) {
	r := MakeRule("STAR-MART #42", "Expenses:Flex:General")
	assert.Equal(t, "STARMART 42", r.Name, "punctuation stripped")
	assert.Equal(t, []string{"100 PERCENT Expenses:Flex:General"}, r.Allocations)

	match, err := r.Conditions.Eval(txn("STAR-MART #42 POS", "-9.99"))
	require.NoError(t, err)
	assert.False(t, match, "sanitized payee no longer matches raw text containing punctuation")

	match, err = r.Conditions.Eval(txn("STARMART 42 POS", "-9.99"))
	require.NoError(t, err)
	assert.True(t, match)
}
