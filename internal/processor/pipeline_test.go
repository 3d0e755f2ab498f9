package processor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/ninjaforhire/mighty-gobbla/internal/logger"
	"github.com/ninjaforhire/mighty-gobbla/internal/ocr"
)

// stubRecognizer returns canned text and records the layout hint it was
// given.
type stubRecognizer struct {
	text      string
	err       error
	gotLayout ocr.Layout
	calls     int
}

func (s *stubRecognizer) Recognize(ctx context.Context, img image.Image, layout ocr.Layout) (string, error) {
	s.calls++
	s.gotLayout = layout
	return s.text, s.err
}

func pngBytes(rect image.Rectangle) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, receiptOnBackground(rect.Dx(), rect.Dy(), image.Rect(20, 20, rect.Dx()-20, rect.Dy()-20)))
	return buf.Bytes()
}

var _ = Describe("Pipeline", func() {
	var (
		recognizer *stubRecognizer
		pipeline   *Pipeline
	)

	BeforeEach(func() {
		recognizer = &stubRecognizer{text: "KROGER\n11/09/25 07:01pm\nTOTAL $45.67\nVISA ****1234"}
		extractor := NewTextExtractor(NewSegmenter(DefaultSegmenterConfig()), recognizer, 0, zerolog.Nop())
		pipeline = NewPipeline(extractor, NewFieldParser(nil), zerolog.Nop())
	})

	It("recognizes images with the uniform-block layout hint", func() {
		record := pipeline.ProcessDocument(context.Background(), "photo.jpg", pngBytes(image.Rect(0, 0, 300, 400)))

		Expect(recognizer.calls).To(Equal(1))
		Expect(recognizer.gotLayout).To(Equal(ocr.LayoutBlock))
		Expect(record.Store).To(Equal("Kroger"))
		Expect(record.Payment).To(Equal("Card-1234"))
		Expect(record.Amount).To(Equal(45.67))
		Expect(record.Date).To(Equal("251109"))
	})

	It("dispatches on the lower-cased extension", func() {
		record := pipeline.ProcessDocument(context.Background(), "PHOTO.PNG", pngBytes(image.Rect(0, 0, 300, 400)))
		Expect(recognizer.calls).To(Equal(1))
		Expect(record.Store).To(Equal("Kroger"))
	})

	It("returns a default record for unsupported extensions and warns", func() {
		var logs bytes.Buffer
		log := logger.NewWithWriter(&logs)
		extractor := NewTextExtractor(nil, recognizer, 0, log)
		pipeline = NewPipeline(extractor, NewFieldParser(nil), log)

		record := pipeline.ProcessDocument(context.Background(), "notes.txt", []byte("whatever"))

		Expect(recognizer.calls).To(BeZero())
		Expect(record.Store).To(Equal(UnknownStore))
		Expect(record.Payment).To(Equal("Card-XXXX"))
		Expect(record.Amount).To(Equal(0.0))
		Expect(logs.String()).To(ContainSubstring("unsupported extension"))
	})

	It("returns a default record when the image cannot be decoded", func() {
		record := pipeline.ProcessDocument(context.Background(), "broken.jpg", []byte("not an image"))

		Expect(recognizer.calls).To(BeZero())
		Expect(record.Store).To(Equal(UnknownStore))
	})

	It("returns a default record when recognition fails", func() {
		recognizer.err = errors.New("tesseract missing")
		record := pipeline.ProcessDocument(context.Background(), "photo.jpg", pngBytes(image.Rect(0, 0, 300, 400)))

		Expect(record.Store).To(Equal(UnknownStore))
		Expect(record.Amount).To(Equal(0.0))
	})

	It("works without a segmenter", func() {
		extractor := NewTextExtractor(nil, recognizer, 0, zerolog.Nop())
		pipeline = NewPipeline(extractor, NewFieldParser(nil), zerolog.Nop())

		record := pipeline.ProcessDocument(context.Background(), "photo.png", pngBytes(image.Rect(0, 0, 300, 400)))
		Expect(record.Store).To(Equal("Kroger"))
	})
})
