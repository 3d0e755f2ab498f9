// parser.go - Combines the field extraction cascades into one record

package processor

import "time"

// FieldParser turns raw extracted text into a structured ExpenseRecord. The
// four field extractors are independent: each consumes the full text and
// falls back to its own default, so one noisy field never poisons the rest.
type FieldParser struct {
	vendors []VendorEntry
	now     func() time.Time
}

// NewFieldParser creates a FieldParser with the given vendor dictionary.
// A nil dictionary selects the built-in one.
func NewFieldParser(vendors []VendorEntry) *FieldParser {
	if vendors == nil {
		vendors = DefaultVendors()
	}
	return &FieldParser{vendors: vendors, now: time.Now}
}

// Parse extracts all fields from text. It always returns a usable record;
// for empty or garbage input every field carries its documented default.
func (p *FieldParser) Parse(text string) ExpenseRecord {
	return ExpenseRecord{
		Date:    parseDate(text, p.now()),
		Store:   parseStore(text, p.vendors),
		Payment: parsePayment(text),
		Amount:  parseAmount(text),
		RawText: snippet(text),
	}
}
