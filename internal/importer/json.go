package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/ledgertools-dev/ledgertools/internal/accounts"
	"github.com/ledgertools-dev/ledgertools/internal/fingerprint"
	"github.com/ledgertools-dev/ledgertools/internal/model"
)

// Default field paths for JSON statement records.
const (
	jsonDefaultDatePath     = "$.date"
	jsonDefaultPayeePath    = "$.payee"
	jsonDefaultAmountPath   = "$.amount"
	jsonDefaultCurrencyPath = "$.currency"
)

var checkNumRe = regexp.MustCompile(`CHECK\s+#(\d+)`)

// JSONParser parses JSON statement exports: a top-level array of records.
// Field locations default to the flat date/payee/amount/currency layout but
// can be overridden per account with JSONPath options (date_path, payee_path,
// amount_path, currency_path) for banks that nest their records.
type JSONParser struct{}

// Format returns the parser name.
func (p *JSONParser) Format() string { return "json" }

// BuildJournal reads a JSON statement and returns one transaction per
// record. JSON exports carry no statement balance, so no assertions are
// produced.
func (p *JSONParser) BuildJournal(path string, acct accounts.Account) ([]*model.Transaction, []*model.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening statement: %w", err)
	}

	var records []interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil, fmt.Errorf("parsing statement JSON: %w", err)
	}

	opt := func(key, fallback string) string {
		if v, ok := acct.Options[key]; ok && v != "" {
			return v
		}
		return fallback
	}
	datePath := opt("date_path", jsonDefaultDatePath)
	payeePath := opt("payee_path", jsonDefaultPayeePath)
	amountPath := opt("amount_path", jsonDefaultAmountPath)
	currencyPath := opt("currency_path", jsonDefaultCurrencyPath)

	importDate := time.Now().Format(model.DateFormat)
	var txns []*model.Transaction

	for i, rec := range records {
		rawDate, err := jsonString(datePath, rec)
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i, err)
		}
		date, err := time.Parse(model.DateFormat, rawDate)
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: parsing date %q: %w", i, rawDate, err)
		}

		payee, err := jsonString(payeePath, rec)
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i, err)
		}

		amount, err := jsonAmount(amountPath, rec)
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i, err)
		}

		currency, err := jsonString(currencyPath, rec)
		if err != nil {
			currency = model.DefaultCurrency
		}

		uuid := fingerprint.New("", "", date, payee, amount)
		txn := &model.Transaction{
			Date:          date,
			Flag:          model.FlagUnmarked,
			Payee:         payee,
			UUID:          uuid,
			SourceAccount: acct.AcctID,
		}
		txn.Add(acct.From, amount, currency)

		if m := checkNumRe.FindStringSubmatch(payee); m != nil {
			txn.AddMeta("check", m[1])
		}
		txn.AddMeta("UUID", uuid)
		txn.AddMeta("ImportDate", importDate)

		txns = append(txns, txn)
	}

	return nil, txns, nil
}

func jsonString(path string, record interface{}) (string, error) {
	v, err := jsonpath.Get(path, record)
	if err != nil {
		return "", fmt.Errorf("field %s: %w", path, err)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s: want string, got %T", path, v)
	}
	return s, nil
}

func jsonAmount(path string, record interface{}) (decimal.Decimal, error) {
	v, err := jsonpath.Get(path, record)
	if err != nil {
		return decimal.Zero, fmt.Errorf("field %s: %w", path, err)
	}
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, fmt.Errorf("field %s: bad amount %q", path, n)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	default:
		return decimal.Zero, fmt.Errorf("field %s: want number, got %T", path, v)
	}
}
