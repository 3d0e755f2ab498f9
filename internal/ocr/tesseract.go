// tesseract.go - Recognizer backed by the tesseract command line binary

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
)

// TesseractConfig configures the external tesseract binary.
type TesseractConfig struct {
	Binary   string // binary name or absolute path; if empty -> "tesseract"
	Language string // default "eng"
}

// Tesseract shells out to the tesseract binary for recognition.
type Tesseract struct {
	cfg TesseractConfig
}

// NewTesseract creates a Tesseract recognizer with defaults filled in.
func NewTesseract(cfg TesseractConfig) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Tesseract{cfg: cfg}
}

// psm maps a layout hint to a tesseract page segmentation mode.
func psm(layout Layout) string {
	switch layout {
	case LayoutBlock:
		return "6"
	default:
		return "4"
	}
}

// Recognize runs tesseract over the image and returns the extracted text.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, layout Layout) (string, error) {
	var in bytes.Buffer
	if err := png.Encode(&in, img); err != nil {
		return "", fmt.Errorf("encoding image for ocr: %w", err)
	}

	cmd := exec.CommandContext(ctx, t.cfg.Binary,
		"stdin", "stdout",
		"-l", t.cfg.Language,
		"--psm", psm(layout),
	)
	cmd.Stdin = &in

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, stderr.String())
	}
	return out.String(), nil
}
