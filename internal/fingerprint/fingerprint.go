// Package fingerprint derives stable identifiers for imported bank records.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
)

// New computes the dedup fingerprint for an external transaction record.
//
// The digest covers the bank-provided reference id (refNum, falling back to
// fiTID when the bank omits it), the posted date, the raw payee string as it
// appeared in the statement, and the amount. The same external record must
// hash to the same value on every import, so the payee goes in before any
// stop-word stripping and the amount is formatted with a fixed scale.
func New(refNum, fiTID string, posted time.Time, rawPayee string, amount decimal.Decimal) string {
	id := refNum
	if id == "" {
		id = fiTID
	}
	sum := md5.Sum([]byte(id + posted.Format("2006-01-02") + rawPayee + amount.StringFixed(2)))
	return hex.EncodeToString(sum[:])
}
