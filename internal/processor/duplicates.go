// duplicates.go - Fuzzy detection of re-submitted expenses

package processor

import (
	"context"
	"math"
	"strings"

	"github.com/rs/zerolog"
)

// StoredRecord is an existing expense entry as returned by the record store.
type StoredRecord struct {
	Title    string
	Vendor   string
	Subtotal float64
	Tax      float64
	URL      string
}

// RecordStore is the queryable ledger of already-recorded expenses.
type RecordStore interface {
	// QueryByDate returns every record whose date equals the given ISO date
	// (YYYY-MM-DD). The date is the only server-side filter: OCR-derived text
	// varies too much for anything stricter.
	QueryByDate(ctx context.Context, isoDate string) ([]StoredRecord, error)
}

// MatchReason names why a candidate is suspected to be the same expense.
type MatchReason string

const (
	VendorNameMatch    MatchReason = "Store Name"
	ExactTitleMatch    MatchReason = "Exact Filename"
	ExactSubtotalMatch MatchReason = "Exact Subtotal Match"
	TotalWithTaxMatch  MatchReason = "Matches Existing Total (Subtotal + Tax)"
	SimilarAmount      MatchReason = "Similar Amount (Possible Tax Diff)"
)

// DuplicateMatch reports the first candidate that matched and every reason it
// matched for. An empty reason set means no duplicate was found.
type DuplicateMatch struct {
	Record  StoredRecord
	Reasons []MatchReason
}

// IsDuplicate reports whether any reason fired.
func (m DuplicateMatch) IsDuplicate() bool {
	return len(m.Reasons) > 0
}

// ReasonText joins the reasons for display.
func (m DuplicateMatch) ReasonText() string {
	parts := make([]string, len(m.Reasons))
	for i, r := range m.Reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

// DetectorConfig holds the amount-comparison tolerances.
type DetectorConfig struct {
	// ExactTolerance is the absolute dollar tolerance for exact matches.
	ExactTolerance float64
	// RelativeTolerance is the relative difference allowed by the loose
	// similar-amount fallback, which covers tax-inclusion ambiguity.
	RelativeTolerance float64
}

// DefaultDetectorConfig returns the tuned tolerances.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{ExactTolerance: 0.01, RelativeTolerance: 0.20}
}

// DuplicateDetector guards against posting the same expense twice. It is a
// heuristic safety net, not a transactional guarantee: two documents for the
// same date processed concurrently can both pass the check.
type DuplicateDetector struct {
	store RecordStore
	cfg   DetectorConfig
	log   zerolog.Logger
}

// NewDuplicateDetector creates a detector, filling zero tolerances with
// defaults.
func NewDuplicateDetector(store RecordStore, cfg DetectorConfig, log zerolog.Logger) *DuplicateDetector {
	def := DefaultDetectorConfig()
	if cfg.ExactTolerance <= 0 {
		cfg.ExactTolerance = def.ExactTolerance
	}
	if cfg.RelativeTolerance <= 0 {
		cfg.RelativeTolerance = def.RelativeTolerance
	}
	return &DuplicateDetector{store: store, cfg: cfg, log: log}
}

// Check queries the store for records on the same date and evaluates each
// candidate. The first candidate that accumulates one or more reasons wins;
// all reason checks are evaluated for that candidate. A failed query is
// treated as "no duplicate found": forward progress beats strict
// deduplication here, and the warning surfaces it to an operator.
func (d *DuplicateDetector) Check(ctx context.Context, record ExpenseRecord, filename string) DuplicateMatch {
	candidates, err := d.store.QueryByDate(ctx, record.ISODate())
	if err != nil {
		d.log.Warn().Err(err).Str("date", record.ISODate()).Msg("duplicate query failed, proceeding as no duplicate")
		return DuplicateMatch{}
	}

	storeLower := strings.ToLower(record.Store)
	fileLower := strings.ToLower(filename)

	for _, cand := range candidates {
		var reasons []MatchReason

		titleLower := strings.ToLower(cand.Title)
		vendorLower := strings.ToLower(cand.Vendor)

		if storeLower != "" && !strings.Contains(storeLower, "unknown") &&
			(strings.Contains(titleLower, storeLower) || strings.Contains(vendorLower, storeLower)) {
			reasons = append(reasons, VendorNameMatch)
		}

		if fileLower != "" && fileLower == titleLower {
			reasons = append(reasons, ExactTitleMatch)
		}

		exactSubtotal := math.Abs(cand.Subtotal-record.Amount) < d.cfg.ExactTolerance
		totalWithTax := math.Abs((cand.Subtotal+cand.Tax)-record.Amount) < d.cfg.ExactTolerance
		if exactSubtotal {
			reasons = append(reasons, ExactSubtotalMatch)
		}
		if totalWithTax {
			reasons = append(reasons, TotalWithTaxMatch)
		}
		if !exactSubtotal && !totalWithTax && record.Amount > 0 && cand.Subtotal > 0 {
			diff := math.Abs(cand.Subtotal - record.Amount)
			higher := math.Max(cand.Subtotal, record.Amount)
			if diff/higher < d.cfg.RelativeTolerance {
				reasons = append(reasons, SimilarAmount)
			}
		}

		if len(reasons) > 0 {
			d.log.Info().
				Str("title", cand.Title).
				Str("url", cand.URL).
				Strs("reasons", reasonStrings(reasons)).
				Msg("duplicate suspected")
			return DuplicateMatch{Record: cand, Reasons: reasons}
		}
	}

	return DuplicateMatch{}
}

func reasonStrings(reasons []MatchReason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}
