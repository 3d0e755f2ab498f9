// date.go - Transaction date extraction

package processor

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// footerTimestampRe matches the MM/DD/YY-plus-time stamp that POS systems
// print in the receipt footer, the most trustworthy date on the page.
var footerTimestampRe = regexp.MustCompile(`(\d{2}/\d{2}/\d{2})\s+\d{1,2}:\d{2}\s*(?i:[ap]m)?`)

// datePatterns are the general date shapes scanned per line, in priority order.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`),                                                               // 12/31/2025, 12-31-25
	regexp.MustCompile(`\d{4}[/-]\d{1,2}[/-]\d{1,2}`),                                                                 // 2025-12-31
	regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}`),          // Dec 31, 2025
	regexp.MustCompile(`(?i)\d{1,2}\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?,?\s+\d{4}`),          // 31 Dec 2025
}

// dateFormats are the layouts each matched substring is tried against.
var dateFormats = []string{
	"1/2/2006",
	"1/2/06",
	"2006-1-2",
	"2006/1/2",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"1-2-2006",
	"1-2-06",
}

// parseDate extracts the transaction date from text and returns it in compact
// YYMMDD form. Candidates with years outside [2000, currentYear+1] are OCR
// noise and get dropped. The most recent surviving date wins: receipts can
// carry secondary dates (expiration and the like) but the latest valid one is
// empirically the transaction date. With no candidates the processing date is
// returned.
func parseDate(text string, now time.Time) string {
	maxYear := now.Year() + 1

	var found []time.Time
	keep := func(dt time.Time) {
		if dt.Year() >= 2000 && dt.Year() <= maxYear {
			found = append(found, dt)
		}
	}

	// Footer timestamp first: the tight shape rarely false-positives.
	if m := footerTimestampRe.FindStringSubmatch(text); m != nil {
		if dt, err := time.Parse("1/2/06", m[1]); err == nil {
			keep(dt)
		}
	}

	if len(found) == 0 {
		for _, line := range strings.Split(text, "\n") {
			for _, pat := range datePatterns {
				raw := pat.FindString(line)
				if raw == "" {
					continue
				}
				for _, layout := range dateFormats {
					if dt, err := time.Parse(layout, raw); err == nil {
						keep(dt)
					}
				}
			}
		}
	}

	if len(found) == 0 {
		return now.Format("060102")
	}

	sort.Slice(found, func(i, j int) bool { return found[i].After(found[j]) })
	return found[0].Format("060102")
}
