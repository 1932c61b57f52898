package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/kailas-cloud/docrag/internal/domain/format"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Text reads plain text and markdown files.
type Text struct{}

// Extract implements Strategy.
func (t *Text) Extract(_ context.Context, path string) (string, error) {
	return readText(path, format.Text)
}

// Code reads a source file and wraps it in a fenced block tagged with its extension.
type Code struct{}

// Extract implements Strategy.
func (c *Code) Extract(_ context.Context, path string) (string, error) {
	src, err := readText(path, format.Code)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	lang := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return fmt.Sprintf("```%s\n%s\n```", lang, strings.TrimRight(src, "\n")), nil
}

func readText(path string, f format.Format) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", failed(f, "read file", err)
	}
	if err := Sniff(path, f); err != nil {
		return "", err
	}
	text, err := decode(data)
	if err != nil {
		return "", failed(f, "decode", err)
	}
	return text, nil
}

// decode returns UTF-8 text. UTF-16 is detected by BOM, invalid UTF-8 falls back to Windows-1252.
func decode(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		out, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("utf-16: %w", err)
		}
		return string(out), nil
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("windows-1252: %w", err)
	}
	return string(out), nil
}
