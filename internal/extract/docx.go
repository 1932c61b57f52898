package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/docrag/internal/domain/format"
)

// DOCX reads paragraphs then table rows from word/document.xml.
// Legacy binary .doc files are rejected.
type DOCX struct{}

type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
		Tables     []table     `xml:"tbl"`
	} `xml:"body"`
}

type table struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []paragraph `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

type paragraph struct {
	Runs       []run `xml:"r"`
	Hyperlinks []struct {
		Runs []run `xml:"r"`
	} `xml:"hyperlink"`
}

type run struct {
	Text []struct {
		Content string `xml:",chardata"`
	} `xml:"t"`
}

func (p paragraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			b.WriteString(t.Content)
		}
	}
	for _, h := range p.Hyperlinks {
		for _, r := range h.Runs {
			for _, t := range r.Text {
				b.WriteString(t.Content)
			}
		}
	}
	return b.String()
}

// Extract implements Strategy.
func (d *DOCX) Extract(_ context.Context, path string) (string, error) {
	if err := Sniff(path, format.DOCX); err != nil {
		return "", err
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", failed(format.DOCX, "not an OOXML document", err)
	}
	defer zr.Close()

	for _, file := range zr.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", failed(format.DOCX, "open document.xml", err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", failed(format.DOCX, "read document.xml", err)
		}
		return parseDocumentXML(content)
	}
	return "", failed(format.DOCX, "word/document.xml missing", nil)
}

func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", failed(format.DOCX, "parse document.xml", err)
	}

	var b strings.Builder
	for _, p := range doc.Body.Paragraphs {
		b.WriteString(p.text())
		b.WriteByte('\n')
	}
	for _, t := range doc.Body.Tables {
		for _, row := range t.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, c := range row.Cells {
				parts := make([]string, 0, len(c.Paragraphs))
				for _, p := range c.Paragraphs {
					parts = append(parts, p.text())
				}
				cells = append(cells, strings.Join(parts, " "))
			}
			fmt.Fprintln(&b, strings.Join(cells, "\t"))
		}
	}
	return b.String(), nil
}
