// pipeline.go - Per-document processing: extract text, then parse fields

package processor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Pipeline runs the full extraction sequence for one document. It holds no
// per-document state, so one Pipeline can process independent documents from
// concurrent goroutines.
type Pipeline struct {
	extractor *TextExtractor
	parser    *FieldParser
	log       zerolog.Logger
}

// NewPipeline wires the extraction pipeline.
func NewPipeline(extractor *TextExtractor, parser *FieldParser, log zerolog.Logger) *Pipeline {
	return &Pipeline{extractor: extractor, parser: parser, log: log}
}

// ProcessDocument extracts a structured record from raw document bytes. The
// filename is used only for extension-based dispatch. A best-effort record is
// always returned: on any extraction failure each field carries its default,
// which is more useful to a human reviewer than a hard error.
func (p *Pipeline) ProcessDocument(ctx context.Context, filename string, data []byte) ExpenseRecord {
	ext := strings.ToLower(filepath.Ext(filename))

	var text string
	switch ext {
	case ".pdf":
		text = p.extractor.ExtractPDF(ctx, data)
	case ".jpg", ".jpeg", ".png":
		text = p.extractor.ExtractImage(ctx, data)
	default:
		p.log.Warn().Str("filename", filename).Msg("unsupported extension, parsing with empty text")
	}

	record := p.parser.Parse(text)
	p.log.Info().
		Str("filename", filename).
		Str("date", record.Date).
		Str("store", record.Store).
		Str("payment", record.Payment).
		Float64("amount", record.Amount).
		Msg("document processed")
	return record
}
