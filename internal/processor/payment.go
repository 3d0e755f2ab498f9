// payment.go - Payment method extraction

package processor

import (
	"regexp"
	"strings"
)

var (
	cashRe      = regexp.MustCompile(`\bcash\b`)
	checkNumRe  = regexp.MustCompile(`\bcheck\b[^\d]{0,10}(\d+)`)
	maskedRunRe = regexp.MustCompile(`[*x]{4,}\s?-?\d{4}`)
	lastFourRe  = regexp.MustCompile(`(?:#|x|\*|\s)(\d{4})\b`)
)

// cardBrandKeywords identify an explicit card payment.
var cardBrandKeywords = []string{"visa", "mastercard", "amex", "american express", "discover"}

// cardGenericKeywords identify a card payment without naming the brand.
var cardGenericKeywords = []string{"credit card", "debit card", "ending in", "card #"}

// cardYearPrefixes mark 4-digit groups that are almost certainly a printed
// calendar year rather than a card suffix.
var cardYearPrefixes = []string{"201", "202"}

// parsePayment classifies the payment method. A card payment with an unknown
// suffix ("Card-XXXX") is the default: for expense bookkeeping that guess is
// right far more often than an empty field.
func parsePayment(text string) string {
	lower := strings.ToLower(text)

	// Cash first, with a word boundary so "cashback" does not trigger it. A
	// "change" line means the total was tendered in cash anyway, but it also
	// appears on card receipts with cash back, so its presence vetoes.
	if cashRe.MatchString(lower) && !strings.Contains(lower, "change") {
		return "Cash"
	}

	for _, kw := range cardBrandKeywords {
		if strings.Contains(lower, kw) {
			return "Card-" + extractLastFour(lower)
		}
	}
	for _, kw := range cardGenericKeywords {
		if strings.Contains(lower, kw) {
			return "Card-" + extractLastFour(lower)
		}
	}
	if maskedRunRe.MatchString(lower) {
		return "Card-" + extractLastFour(lower)
	}

	if strings.Contains(lower, "paypal") {
		return "PayPal"
	}

	if strings.Contains(lower, "check") {
		if m := checkNumRe.FindStringSubmatch(lower); m != nil {
			return "Check-" + m[1]
		}
		return "Check"
	}

	return "Card-XXXX"
}

// extractLastFour scans for 4-digit groups preceded by a mask character or
// whitespace and returns the last plausible one; card numbers are printed
// near the bottom of a receipt. Groups that look like a calendar year are
// discarded.
func extractLastFour(lower string) string {
	matches := lastFourRe.FindAllStringSubmatch(lower, -1)
	last := ""
	for _, m := range matches {
		if looksLikeYear(m[1]) {
			continue
		}
		last = m[1]
	}
	if last == "" {
		return "XXXX"
	}
	return last
}

func looksLikeYear(digits string) bool {
	for _, prefix := range cardYearPrefixes {
		if strings.HasPrefix(digits, prefix) {
			return true
		}
	}
	return false
}
