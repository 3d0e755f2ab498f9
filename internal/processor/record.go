// record.go - The structured expense record produced by field extraction

package processor

import "time"

// UnknownStore is the vendor sentinel used when no store name can be inferred.
const UnknownStore = "UnknownStore"

// rawTextLimit bounds the debug snippet kept on a record.
const rawTextLimit = 200

// ExpenseRecord holds the structured fields extracted from one document.
type ExpenseRecord struct {
	Date    string  `json:"date"` // compact YYMMDD form
	Store   string  `json:"store"`
	Payment string  `json:"payment"` // "Cash", "Check[-number]", "PayPal" or "Card-<last4|XXXX>"
	Amount  float64 `json:"amount"`
	RawText string  `json:"raw_text_debug"` // diagnostic only, never used downstream
}

// ISODate converts the compact date to YYYY-MM-DD. Falls back to today when
// the stored value does not parse.
func (r ExpenseRecord) ISODate() string {
	if dt, err := time.Parse("060102", r.Date); err == nil {
		return dt.Format("2006-01-02")
	}
	return time.Now().Format("2006-01-02")
}

// snippet returns a bounded-length prefix of text for debugging.
func snippet(text string) string {
	if len(text) > rawTextLimit {
		return text[:rawTextLimit]
	}
	return text
}
