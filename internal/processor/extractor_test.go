package processor

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/ninjaforhire/mighty-gobbla/internal/ocr"
)

// minimalPDF builds a one-page PDF with the given text in its content stream.
func minimalPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 18 Tf 72 720 Td (%s) Tj ET", text)
	return []byte(fmt.Sprintf(`%%PDF-1.4
1 0 obj<</Type/Catalog/Pages 2 0 R>>endobj
2 0 obj<</Type/Pages/Kids[3 0 R]/Count 1>>endobj
3 0 obj<</Type/Page/Parent 2 0 R/MediaBox[0 0 612 792]/Contents 4 0 R/Resources<</Font<</F1 5 0 R>>>>>>endobj
4 0 obj<</Length %d>>stream
%s
endstream
endobj
5 0 obj<</Type/Font/Subtype/Type1/BaseFont/Helvetica>>endobj
trailer<</Root 1 0 R>>
%%%%EOF`, len(content), content))
}

var _ = Describe("TextExtractor", func() {
	var recognizer *stubRecognizer

	BeforeEach(func() {
		recognizer = &stubRecognizer{text: "VISA ****1234"}
	})

	It("prefers the embedded text layer of a digital pdf", func() {
		extractor := NewTextExtractor(nil, recognizer, 10, zerolog.Nop())
		text := extractor.ExtractPDF(context.Background(), minimalPDF("KROGER TOTAL $45.67"))

		Expect(text).To(ContainSubstring("KROGER"))
		Expect(recognizer.calls).To(BeZero())
	})

	It("falls back to rendering and recognition for a sparse text layer", func() {
		extractor := NewTextExtractor(nil, recognizer, 10000, zerolog.Nop())
		text := extractor.ExtractPDF(context.Background(), minimalPDF("KROGER"))

		Expect(recognizer.calls).To(Equal(1))
		Expect(recognizer.gotLayout).To(Equal(ocr.LayoutColumn))
		Expect(text).To(ContainSubstring("VISA ****1234"))
	})

	It("returns empty text for an unreadable pdf", func() {
		extractor := NewTextExtractor(nil, recognizer, 0, zerolog.Nop())
		Expect(extractor.ExtractPDF(context.Background(), []byte("not a pdf"))).To(BeEmpty())
	})
})
