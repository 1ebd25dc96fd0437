package importer

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/ledgertools-dev/ledgertools/internal/accounts"
	"github.com/ledgertools-dev/ledgertools/internal/fingerprint"
	"github.com/ledgertools-dev/ledgertools/internal/model"
)

// OFXParser parses OFX and QFX bank statement downloads.
type OFXParser struct{}

// Format returns the parser name.
func (p *OFXParser) Format() string { return "ofx" }

// BuildJournal reads an OFX file and returns a balance assertion per
// statement plus one transaction per statement entry.
func (p *OFXParser) BuildJournal(path string, acct accounts.Account) ([]*model.Transaction, []*model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	resp, err := ofxgo.ParseResponse(f)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing OFX: %w", err)
	}

	org := resp.Signon.Org.String()
	importDate := time.Now().Format(model.DateFormat)

	var assertions []*model.Transaction
	var txns []*model.Transaction

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		symbol := CurrencySymbol(stmt.CurDef.String())

		if a := balanceAssertion(stmt, acct, org, symbol); a != nil {
			assertions = append(assertions, a)
		}

		if stmt.BankTranList == nil {
			continue
		}
		for _, st := range stmt.BankTranList.Transactions {
			txn, err := statementTxn(st, acct, symbol, importDate)
			if err != nil {
				return nil, nil, err
			}
			txns = append(txns, txn)
		}
	}

	return assertions, txns, nil
}

// balanceAssertion builds a cleared transaction asserting the statement's
// ledger balance as of its date.
func balanceAssertion(stmt *ofxgo.StatementResponse, acct accounts.Account, org, symbol string) *model.Transaction {
	balance, err := decimal.NewFromString(stmt.BalAmt.FloatString(2))
	if err != nil {
		return nil
	}
	payee := fmt.Sprintf("Balance for %s-%s", org, stmt.BankAcctFrom.AcctID.String())
	uuid := fingerprint.New("", "", stmt.DtAsOf.Time, payee, balance)
	txn := &model.Transaction{
		Date:          stmt.DtAsOf.Time,
		Flag:          model.FlagCleared,
		Payee:         payee,
		UUID:          uuid,
		SourceAccount: acct.AcctID,
	}
	txn.Postings = append(txn.Postings, model.Posting{
		Account:   acct.From,
		Amount:    balance,
		Currency:  symbol,
		Assertion: true,
	})
	txn.AddMeta("UUID", uuid)
	return txn
}

func statementTxn(st ofxgo.Transaction, acct accounts.Account, symbol, importDate string) (*model.Transaction, error) {
	amount, err := decimal.NewFromString(st.TrnAmt.FloatString(2))
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", st.TrnAmt.String(), err)
	}

	payee := st.Name.String()
	if payee == "" && st.Payee != nil {
		payee = st.Payee.Name.String()
	}

	uuid := fingerprint.New(st.RefNum.String(), st.FiTID.String(), st.DtPosted.Time, payee, amount)
	txn := &model.Transaction{
		Date:          st.DtPosted.Time,
		Flag:          model.FlagUnmarked,
		Payee:         payee,
		UUID:          uuid,
		SourceAccount: acct.AcctID,
	}
	txn.Add(acct.From, amount, symbol)

	if ck := st.CheckNum.String(); ck != "" {
		txn.AddMeta("check", ck)
	}
	txn.AddMeta("UUID", uuid)
	txn.AddMeta("ImportDate", importDate)
	return txn, nil
}

// CurrencySymbol maps an ISO 4217 code to its display symbol, falling back
// to the default currency marker for unknown codes.
func CurrencySymbol(code string) string {
	if c := money.GetCurrency(strings.ToUpper(code)); c != nil {
		return c.Grapheme
	}
	return model.DefaultCurrency
}
