// extractor.go - Raw text extraction for PDFs and photographed receipts

package processor

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"

	"github.com/ninjaforhire/mighty-gobbla/internal/ocr"
)

// defaultMinPDFTextLen is the embedded-text-layer length below which a PDF is
// assumed to be a scan and gets rasterized for recognition.
const defaultMinPDFTextLen = 50

// TextExtractor produces raw text for a document. Digital documents prefer
// their embedded text layer; photos go through segmentation and recognition.
// Every internal failure degrades to an empty string so the pipeline keeps
// moving.
type TextExtractor struct {
	segmenter  *Segmenter
	recognizer ocr.Recognizer
	minTextLen int
	log        zerolog.Logger
}

// NewTextExtractor wires a TextExtractor. minTextLen <= 0 selects the default.
func NewTextExtractor(segmenter *Segmenter, recognizer ocr.Recognizer, minTextLen int, log zerolog.Logger) *TextExtractor {
	if minTextLen <= 0 {
		minTextLen = defaultMinPDFTextLen
	}
	return &TextExtractor{
		segmenter:  segmenter,
		recognizer: recognizer,
		minTextLen: minTextLen,
		log:        log,
	}
}

// ExtractPDF reads the embedded text layer page by page. When the result is
// too short the document is likely a scanned PDF without a text layer, so the
// first page is rendered and recognized as a fallback.
func (e *TextExtractor) ExtractPDF(ctx context.Context, data []byte) string {
	var sb strings.Builder

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		e.log.Warn().Err(err).Msg("opening pdf failed")
		return ""
	}
	defer doc.Close()

	for n := 0; n < doc.NumPage(); n++ {
		pageText, err := doc.Text(n)
		if err != nil {
			e.log.Warn().Err(err).Int("page", n).Msg("reading pdf text layer failed")
			continue
		}
		if pageText != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n")
		}
	}

	text := sb.String()
	if len(text) >= e.minTextLen {
		return text
	}

	// Text layer too sparse: rasterize the first page and recognize it.
	e.log.Debug().Int("text_len", len(text)).Msg("pdf text layer too short, falling back to ocr")
	img, err := doc.Image(0)
	if err != nil {
		e.log.Warn().Err(err).Msg("rendering pdf page failed")
		return text
	}
	recognized, err := e.recognizer.Recognize(ctx, img, ocr.LayoutColumn)
	if err != nil {
		e.log.Warn().Err(err).Msg("pdf page recognition failed")
		return text
	}
	return text + recognized
}

// ExtractImage segments the receipt out of the photo and recognizes it with
// the uniform-block layout hint: receipts are single-column top-to-bottom
// text.
func (e *TextExtractor) ExtractImage(ctx context.Context, data []byte) string {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		e.log.Warn().Err(err).Msg("decoding image failed")
		return ""
	}

	seg := SegmentResult{Image: img}
	if e.segmenter != nil {
		seg = e.segmenter.Segment(img)
	}
	if !seg.Segmented {
		e.log.Debug().Msg("no receipt region found, recognizing original image")
	}

	text, err := e.recognizer.Recognize(ctx, seg.Image, ocr.LayoutBlock)
	if err != nil {
		e.log.Warn().Err(err).Msg("image recognition failed")
		return ""
	}
	return text
}
