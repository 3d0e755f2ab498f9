package processor

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
)

// fakeRecordStore returns canned candidates for any date.
type fakeRecordStore struct {
	records []StoredRecord
	err     error
	gotDate string
}

func (f *fakeRecordStore) QueryByDate(ctx context.Context, isoDate string) ([]StoredRecord, error) {
	f.gotDate = isoDate
	return f.records, f.err
}

var _ = Describe("DuplicateDetector", func() {
	var (
		store    *fakeRecordStore
		detector *DuplicateDetector
		record   ExpenseRecord
	)

	BeforeEach(func() {
		store = &fakeRecordStore{}
		detector = NewDuplicateDetector(store, DefaultDetectorConfig(), zerolog.Nop())
		record = ExpenseRecord{Date: "251109", Store: "Kroger", Payment: "Card-1234", Amount: 45.67}
	})

	It("queries by the record's ISO date", func() {
		detector.Check(context.Background(), record, "receipt.jpg")
		Expect(store.gotDate).To(Equal("2025-11-09"))
	})

	It("reports no duplicate when there are no candidates", func() {
		match := detector.Check(context.Background(), record, "receipt.jpg")
		Expect(match.IsDuplicate()).To(BeFalse())
		Expect(match.Reasons).To(BeEmpty())
	})

	It("treats a failed query as no duplicate", func() {
		store.err = errors.New("notion is down")
		match := detector.Check(context.Background(), record, "receipt.jpg")
		Expect(match.IsDuplicate()).To(BeFalse())
	})

	It("matches on the store name appearing in the candidate title", func() {
		store.records = []StoredRecord{{Title: "251109-Kroger-Card-1234.jpg", Subtotal: 99.99}}
		match := detector.Check(context.Background(), record, "other.jpg")
		Expect(match.Reasons).To(ContainElement(VendorNameMatch))
	})

	It("matches on the store name appearing in the candidate vendor", func() {
		store.records = []StoredRecord{{Title: "something.pdf", Vendor: "Kroger #123", Subtotal: 99.99}}
		match := detector.Check(context.Background(), record, "other.jpg")
		Expect(match.Reasons).To(ContainElement(VendorNameMatch))
	})

	It("never matches an unknown store by name", func() {
		record.Store = UnknownStore
		store.records = []StoredRecord{{Title: "unknownstore receipt", Vendor: "UnknownStore"}}
		match := detector.Check(context.Background(), record, "other.jpg")
		Expect(match.Reasons).NotTo(ContainElement(VendorNameMatch))
	})

	It("matches an identical filename case-insensitively", func() {
		store.records = []StoredRecord{{Title: "251109-KROGER-Card-1234.JPG"}}
		match := detector.Check(context.Background(), ExpenseRecord{Date: "251109"}, "251109-Kroger-Card-1234.jpg")
		Expect(match.Reasons).To(ContainElement(ExactTitleMatch))
	})

	It("matches an exact subtotal within tolerance", func() {
		store.records = []StoredRecord{{Title: "x", Subtotal: 45.675}}
		match := detector.Check(context.Background(), record, "other.jpg")
		Expect(match.Reasons).To(ContainElement(ExactSubtotalMatch))
	})

	It("matches when the amount equals subtotal plus tax", func() {
		record.Amount = 10.79
		store.records = []StoredRecord{{Title: "x", Subtotal: 9.99, Tax: 0.80}}
		match := detector.Check(context.Background(), record, "other.jpg")
		Expect(match.Reasons).To(ContainElement(TotalWithTaxMatch))
		Expect(match.Reasons).NotTo(ContainElement(SimilarAmount))
	})

	It("can report subtotal and total-with-tax together on a tax-free candidate", func() {
		record.Amount = 25.00
		store.records = []StoredRecord{{Title: "x", Subtotal: 25.00, Tax: 0}}
		match := detector.Check(context.Background(), record, "other.jpg")
		Expect(match.Reasons).To(ContainElement(ExactSubtotalMatch))
		Expect(match.Reasons).To(ContainElement(TotalWithTaxMatch))
	})

	It("falls back to the loose similar-amount check", func() {
		record.Amount = 50.00
		store.records = []StoredRecord{{Title: "x", Subtotal: 45.00, Tax: 3.00}}
		match := detector.Check(context.Background(), record, "other.jpg")
		Expect(match.Reasons).To(ConsistOf(SimilarAmount))
	})

	It("does not fire the similar-amount check across a wide gap", func() {
		record.Amount = 50.00
		store.records = []StoredRecord{{Title: "x", Subtotal: 20.00}}
		match := detector.Check(context.Background(), record, "other.jpg")
		Expect(match.IsDuplicate()).To(BeFalse())
	})

	It("skips the similar-amount check when either amount is zero", func() {
		record.Amount = 0
		store.records = []StoredRecord{{Title: "x", Subtotal: 0}}
		match := detector.Check(context.Background(), record, "other.jpg")
		Expect(match.Reasons).NotTo(ContainElement(SimilarAmount))
	})

	It("returns the first candidate that accumulates any reason", func() {
		store.records = []StoredRecord{
			{Title: "clean.pdf", Subtotal: 999.99, URL: "https://notion.so/first"},
			{Title: "kroger run.jpg", Subtotal: 1.00, URL: "https://notion.so/second"},
			{Title: "also kroger.jpg", Subtotal: 45.67, URL: "https://notion.so/third"},
		}
		match := detector.Check(context.Background(), record, "other.jpg")
		Expect(match.Record.URL).To(Equal("https://notion.so/second"))
	})

	It("joins reasons for display", func() {
		m := DuplicateMatch{Reasons: []MatchReason{VendorNameMatch, ExactSubtotalMatch}}
		Expect(m.ReasonText()).To(Equal("Store Name, Exact Subtotal Match"))
	})
})
