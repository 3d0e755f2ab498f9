// amount.go - Total amount extraction

package processor

import (
	"regexp"
	"strconv"
	"strings"
)

// currencyRe matches currency-shaped tokens: optional dollar sign, optional
// thousands separators, exactly two decimal digits.
var currencyRe = regexp.MustCompile(`\$?\s?(\d{1,3}(?:,\d{3})+\.\d{2}|\d+\.\d{2})`)

// parseAmount returns the largest currency-shaped value in the text. The
// grand total is empirically the largest number printed: line items sum to
// less than it and tax lines are smaller. Returns 0 when nothing matches.
func parseAmount(text string) float64 {
	matches := currencyRe.FindAllStringSubmatch(text, -1)

	best := 0.0
	for _, m := range matches {
		clean := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			continue
		}
		if v > best {
			best = v
		}
	}
	return best
}
