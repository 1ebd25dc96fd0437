package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalCmp(t *testing.T, name, ruleValue, tranValue string) bool {
	t.Helper()
	fn, ok := comparators[name]
	require.True(t, ok, "comparator %s", name)
	got, err := fn(ruleValue, tranValue)
	require.NoError(t, err)
	return got
}

func TestContains(t *testing.T) {
	assert.True(t, evalCmp(t, "CONTAINS", "employer", "ACME Employer Payroll"))
	assert.True(t, evalCmp(t, "CONTAINS", "EMPLOYER", "acme employer payroll"))
	assert.False(t, evalCmp(t, "CONTAINS", "landlord", "ACME Employer Payroll"))
}

func TestStartsAndEndsWith(t *testing.T) {
	assert.True(t, evalCmp(t, "STARTS_WITH", "acme", "  ACME Employer  "))
	assert.False(t, evalCmp(t, "STARTS_WITH", "employer", "ACME Employer"))
	assert.True(t, evalCmp(t, "ENDS_WITH", "payroll", "ACME Payroll  "))
	assert.False(t, evalCmp(t, "ENDS_WITH", "acme", "ACME Payroll"))
}

func TestEqualsNumericCoercion(t *testing.T) {
	assert.True(t, evalCmp(t, "EQUALS", "100", "100.00"))
	assert.True(t, evalCmp(t, "EQUALS", "ABC", "abc"))
	assert.True(t, evalCmp(t, "EQUALS", "abc", " ABC "))
	assert.False(t, evalCmp(t, "EQUALS", "100", "100.01"))
}

func TestOrderedComparatorsAreRuleValueRelative(t *testing.T) {
	// GT("50", "100") tests 50 < 100.
	assert.True(t, evalCmp(t, "GT", "50", "100"))
	assert.False(t, evalCmp(t, "GT", "100", "50"))
	assert.False(t, evalCmp(t, "GT", "100", "100"))

	assert.True(t, evalCmp(t, "GE", "100", "100"))
	assert.True(t, evalCmp(t, "LT", "100", "50"))
	assert.False(t, evalCmp(t, "LT", "50", "100"))
	assert.True(t, evalCmp(t, "LE", "100", "100"))
}

func TestOrderedComparatorsOnDates(t *testing.T) {
	// YYYY-MM-DD strings compare lexically in date order.
	assert.True(t, evalCmp(t, "GT", "2017-01-01", "2017-03-04"))
	assert.False(t, evalCmp(t, "GT", "2017-03-04", "2017-01-01"))
}

func TestMod(t *testing.T) {
	assert.True(t, evalCmp(t, "MOD", "25", "100"))
	assert.False(t, evalCmp(t, "MOD", "30", "100"))

	_, err := comparators["MOD"]("x", "100")
	assert.Error(t, err, "MOD on non-numeric values")
	_, err = comparators["MOD"]("0", "100")
	assert.Error(t, err, "MOD by zero")
}

func TestCombinators(t *testing.T) {
	assert.True(t, and([]bool{true, true}))
	assert.False(t, and([]bool{true, false}))
	assert.True(t, and(nil), "AND of no children is vacuously true")

	assert.True(t, or([]bool{false, true}))
	assert.False(t, or([]bool{false, false}))

	assert.False(t, nand([]bool{true, true}))
	assert.True(t, nor([]bool{false, false}))

	assert.True(t, xor([]bool{true, true, true}), "odd count of true")
	assert.False(t, xor([]bool{true, true}), "even count of true")
	assert.False(t, xor([]bool{false, false}))
}
