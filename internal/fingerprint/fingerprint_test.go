package fingerprint

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestStableAcrossImports(t *testing.T) {
	a := New("REF123", "", date(2017, 3, 4), "ACME PAYROLL", dec("1500.00"))
	b := New("REF123", "", date(2017, 3, 4), "ACME PAYROLL", dec("1500.00"))
	assert.Equal(t, a, b, "same record must fingerprint identically")
	assert.Len(t, a, 32, "md5 hex digest")
}

func TestAmountScaleDoesNotChangeFingerprint(t *testing.T) {
	a := New("REF123", "", date(2017, 3, 4), "ACME PAYROLL", dec("1500"))
	b := New("REF123", "", date(2017, 3, 4), "ACME PAYROLL", dec("1500.00"))
	assert.Equal(t, a, b, "amount is normalized to two decimals before hashing")
}

func TestFallsBackToFiTID(t *testing.T) {
	withRef := New("REF123", "FIT9", date(2017, 3, 4), "ACME", dec("10.00"))
	withFit := New("", "FIT9", date(2017, 3, 4), "ACME", dec("10.00"))
	assert.NotEqual(t, withRef, withFit)

	again := New("", "FIT9", date(2017, 3, 4), "ACME", dec("10.00"))
	assert.Equal(t, withFit, again)
}

func TestDistinctRecordsDiffer(t *testing.T) {
	base := New("REF1", "", date(2017, 3, 4), "ACME", dec("10.00"))
	assert.NotEqual(t, base, New("REF2", "", date(2017, 3, 4), "ACME", dec("10.00")))
	assert.NotEqual(t, base, New("REF1", "", date(2017, 3, 5), "ACME", dec("10.00")))
	assert.NotEqual(t, base, New("REF1", "", date(2017, 3, 4), "ACME CO", dec("10.00")))
	assert.NotEqual(t, base, New("REF1", "", date(2017, 3, 4), "ACME", dec("10.01")))
}
