// Package format defines the closed set of ingestible source formats.
package format

import (
	"path/filepath"
	"sort"
	"strings"
)

// Format is a source format family. The set is closed: every value below has
// exactly one extraction strategy.
type Format string

// Supported formats.
const (
	PDF      Format = "pdf"
	DOCX     Format = "docx"
	Text     Format = "text"
	Markdown Format = "markdown"
	Image    Format = "image"
	Code     Format = "code"
)

// All lists every supported format in a stable order.
var All = []Format{PDF, DOCX, Text, Markdown, Image, Code}

var byExtension = map[string]Format{
	"pdf":      PDF,
	"docx":     DOCX,
	"doc":      DOCX,
	"txt":      Text,
	"md":       Markdown,
	"markdown": Markdown,
	"png":      Image,
	"jpg":      Image,
	"jpeg":     Image,
	"gif":      Image,
	"bmp":      Image,
	"py":       Code,
	"js":       Code,
	"ts":       Code,
	"go":       Code,
	"java":     Code,
	"cpp":      Code,
	"c":        Code,
	"h":        Code,
	"rs":       Code,
	"rb":       Code,
	"html":     Code,
	"css":      Code,
	"json":     Code,
	"xml":      Code,
	"yaml":     Code,
	"yml":      Code,
	"sh":       Code,
	"sql":      Code,
}

// Extension returns the normalized extension of a filename: lower case, no dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// FromFilename resolves a format from a filename's extension.
func FromFilename(filename string) (Format, bool) {
	return FromExtension(Extension(filename))
}

// FromExtension resolves a format from a normalized or dotted extension.
func FromExtension(ext string) (Format, bool) {
	f, ok := byExtension[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return f, ok
}

// IsValid checks if the format is one of the supported values.
func (f Format) IsValid() bool {
	for _, v := range All {
		if f == v {
			return true
		}
	}
	return false
}

// Extensions returns all accepted extensions, sorted.
func Extensions() []string {
	out := make([]string, 0, len(byExtension))
	for ext := range byExtension {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
