// interface.go - Common interface for optical text recognition

package ocr

import (
	"context"
	"image"
)

// Layout hints tell the recognizer what text arrangement to assume.
type Layout int

const (
	// LayoutColumn assumes a single column of text of variable sizes.
	LayoutColumn Layout = iota
	// LayoutBlock assumes a single uniform block of text.
	LayoutBlock
)

// Recognizer converts a rasterized image of text into machine-readable text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, layout Layout) (string, error)
}
