// store.go - Vendor name extraction

package processor

import (
	"regexp"
	"strings"
)

// VendorEntry maps a lower-case substring to the canonical display name.
// Order is priority order: the first matching entry wins.
type VendorEntry struct {
	Keyword string
	Display string
}

// DefaultVendors returns the built-in vendor dictionary. Domain-specific
// entries come first so they beat the generic chains.
func DefaultVendors() []VendorEntry {
	return []VendorEntry{
		{"snappic", "Snappic"},
		{"paddle", "Snappic"},
		{"semrush", "SEMRush"},
		{"amazon", "Amazon"},
		{"uber", "Uber"},
		{"lyft", "Lyft"},
		{"starbucks", "Starbucks"},
		{"target", "Target"},
		{"walmart", "Walmart"},
		{"google", "Google"},
		{"microsoft", "Microsoft"},
		{"adobe", "Adobe"},
		{"apple", "Apple"},
		{"netflix", "Netflix"},
		{"costco", "Costco"},
		{"shell", "Shell"},
		{"chevron", "Chevron"},
		{"ihop", "IHOP"},
		{"mcdonalds", "McDonalds"},
		{"burger king", "BurgerKing"},
		{"domino", "Dominos"},
		{"home depot", "HomeDepot"},
		{"lowes", "Lowes"},
		{"best buy", "BestBuy"},
		{"kroger", "Kroger"},
		{"publix", "Publix"},
		{"whole foods", "WholeFoods"},
		{"trader joes", "TraderJoes"},
		{"walgreens", "Walgreens"},
		{"cvs", "CVS"},
		{"7-eleven", "7-Eleven"},
	}
}

// storeStoplist holds generic receipt words that disqualify a line from being
// treated as the vendor name.
var storeStoplist = map[string]bool{
	"via":           true,
	"receipt":       true,
	"invoice":       true,
	"payment":       true,
	"welcome":       true,
	"customer copy": true,
}

var nonAlnumRe = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

// maxStoreWordLen bounds the fallback vendor word.
const maxStoreWordLen = 15

// parseStore infers the vendor. The dictionary is checked first; failing
// that, the first clean line of the receipt is assumed to be the store header.
func parseStore(text string, vendors []VendorEntry) string {
	lower := strings.ToLower(text)
	for _, v := range vendors {
		if strings.Contains(lower, v.Keyword) {
			return v.Display
		}
	}

	// Fallback: first meaningful line.
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 3 || storeStoplist[strings.ToLower(line)] {
			continue
		}

		clean := strings.TrimSpace(nonAlnumRe.ReplaceAllString(line, ""))
		words := strings.Fields(clean)
		if len(words) == 0 {
			continue
		}

		word := words[0]
		// OCR often splinters a leading logo character; prefer the second
		// word over a one or two letter fragment.
		if len(word) <= 2 && len(words) > 1 {
			word = words[1]
		}
		return capitalize(truncate(word, maxStoreWordLen))
	}

	return UnknownStore
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
