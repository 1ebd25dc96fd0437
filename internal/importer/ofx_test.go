package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20260120120000
<LANGUAGE>ENG
<FI>
<ORG>FAKEBANK
<FID>1000
</FI>
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>999999
<ACCTID>1234
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20260101120000
<DTEND>20260120120000
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260115120000
<TRNAMT>-54.23
<FITID>900101
<NAME>GROCERY MART
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20260116120000
<TRNAMT>1500.00
<FITID>900102
<CHECKNUM>1042
<NAME>EMPLOYER PAYROLL
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1425.59
<DTASOF>20260120120000
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func TestOFXParserBuildJournal(t *testing.T) {
	path := writeFile(t, "statement.ofx", sampleOFX)

	acct := checkingAccount()
	acct.Parser = "ofx"

	p := &OFXParser{}
	assertions, txns, err := p.BuildJournal(path, acct)
	require.NoError(t, err)

	require.Len(t, assertions, 1)
	a := assertions[0]
	assert.Equal(t, "Balance for FAKEBANK-1234", a.Payee)
	assert.Equal(t, "2026-01-20", a.Date.Format("2006-01-02"))
	require.Len(t, a.Postings, 1)
	assert.Equal(t, "Assets:Checking", a.Postings[0].Account)
	assert.True(t, dec(t, "1425.59").Equal(a.Postings[0].Amount))
	assert.True(t, a.Postings[0].Assertion)
	assert.NotEmpty(t, a.UUID, "assertions are fingerprinted for dedup")

	require.Len(t, txns, 2)
	first := txns[0]
	assert.Equal(t, "GROCERY MART", first.Payee)
	assert.Equal(t, "2026-01-15", first.Date.Format("2006-01-02"))
	require.Len(t, first.Postings, 1)
	assert.True(t, dec(t, "-54.23").Equal(first.Postings[0].Amount))
	assert.Equal(t, "$", first.Postings[0].Currency)
	assert.NotEmpty(t, first.UUID)

	second := txns[1]
	assert.Equal(t, "EMPLOYER PAYROLL", second.Payee)
	check := ""
	for _, m := range second.Metadata {
		if m.Key == "check" {
			check = m.Value
		}
	}
	assert.Equal(t, "1042", check)
	assert.NotEqual(t, first.UUID, second.UUID)
}

func TestCurrencySymbol(t *testing.T) {
	assert.Equal(t, "$", CurrencySymbol("USD"))
	assert.Equal(t, "$", CurrencySymbol("usd"))
	assert.Equal(t, "€", CurrencySymbol("EUR"))
	assert.Equal(t, "$", CurrencySymbol("XXX-NOT-A-CODE"))
}
