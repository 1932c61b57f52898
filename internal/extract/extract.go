// Package extract turns an uploaded file into UTF-8 text. Dispatch is by the
// closed set of formats in domain/format, resolved once per file.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/unicode/norm"

	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/domain/format"
)

// Strategy extracts text from one format.
type Strategy interface {
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractionError describes why a strategy produced no text.
// It matches domain.ErrExtractionFailed with errors.Is.
type ExtractionError struct {
	Format format.Format
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.Format, e.Reason)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ExtractionError) Unwrap() []error {
	if e.Err != nil {
		return []error{domain.ErrExtractionFailed, e.Err}
	}
	return []error{domain.ErrExtractionFailed}
}

func failed(f format.Format, reason string, err error) error {
	return &ExtractionError{Format: f, Reason: reason, Err: err}
}

// Config tunes strategies that need external tools.
type Config struct {
	OCRCommand  string
	OCRLanguage string
}

// Registry maps each format to its strategy.
type Registry struct {
	strategies map[format.Format]Strategy
}

// NewRegistry registers the built-in strategy for every supported format.
func NewRegistry(cfg Config) *Registry {
	if cfg.OCRCommand == "" {
		cfg.OCRCommand = "tesseract"
	}
	if cfg.OCRLanguage == "" {
		cfg.OCRLanguage = "eng"
	}
	return &Registry{strategies: map[format.Format]Strategy{
		format.PDF:      &PDF{},
		format.DOCX:     &DOCX{},
		format.Text:     &Text{},
		format.Markdown: &Text{},
		format.Code:     &Code{},
		format.Image:    &OCR{Command: cfg.OCRCommand, Language: cfg.OCRLanguage},
	}}
}

// WithStrategy replaces the strategy for a format.
func (r *Registry) WithStrategy(f format.Format, s Strategy) *Registry {
	r.strategies[f] = s
	return r
}

// Resolve returns the format for a filename or ErrUnsupportedFormat.
func (r *Registry) Resolve(filename string) (format.Format, error) {
	f, ok := format.FromFilename(filename)
	if !ok {
		return "", fmt.Errorf("extension %q: %w", format.Extension(filename), domain.ErrUnsupportedFormat)
	}
	if _, ok := r.strategies[f]; !ok {
		return "", fmt.Errorf("format %q: %w", f, domain.ErrUnsupportedFormat)
	}
	return f, nil
}

// Extract runs the strategy for declared (or, when empty, the one resolved from
// the path) and returns NFC-normalised text. Blank output is an extraction failure.
func (r *Registry) Extract(ctx context.Context, path string, declared format.Format) (string, error) {
	f := declared
	if f == "" {
		var err error
		if f, err = r.Resolve(path); err != nil {
			return "", err
		}
	}
	s, ok := r.strategies[f]
	if !ok {
		return "", fmt.Errorf("format %q: %w", f, domain.ErrUnsupportedFormat)
	}

	text, err := s.Extract(ctx, path)
	if err != nil {
		var ee *ExtractionError
		if errors.As(err, &ee) {
			return "", err
		}
		return "", failed(f, "read", err)
	}

	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return "", failed(f, "no text extracted", nil)
	}
	return text, nil
}

// Sniff checks that the file content agrees with the declared format family.
// Text-like formats must not be binary; PDFs, images and DOCX must carry their magic.
func Sniff(path string, f format.Format) error {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return failed(f, "detect content type", err)
	}
	ok := false
	switch f {
	case format.Text, format.Markdown, format.Code:
		ok = isA(mt, "text/plain")
	case format.PDF:
		ok = mt.Is("application/pdf")
	case format.Image:
		ok = strings.HasPrefix(mt.String(), "image/")
	case format.DOCX:
		ok = isA(mt, "application/zip") || isA(mt, "application/x-ole-storage")
	}
	if !ok {
		return failed(f, fmt.Sprintf("content looks like %s", mt.String()), nil)
	}
	return nil
}

func isA(mt *mimetype.MIME, target string) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is(target) {
			return true
		}
	}
	return false
}

// WordCount counts whitespace-separated fields.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
