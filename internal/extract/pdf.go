package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kailas-cloud/docrag/internal/domain/format"
)

// PDF extracts the text layer page by page. Scanned PDFs without a text layer
// yield nothing and fail as empty.
type PDF struct{}

// Extract implements Strategy.
func (p *PDF) Extract(ctx context.Context, path string) (text string, err error) {
	if err := Sniff(path, format.PDF); err != nil {
		return "", err
	}

	// The parser panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			err = failed(format.PDF, "corrupt document", fmt.Errorf("%v", r))
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", failed(format.PDF, "open", err)
	}
	defer f.Close()

	if !r.Trailer().Key("Encrypt").IsNull() {
		return "", failed(format.PDF, "encrypted document", nil)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", failed(format.PDF, fmt.Sprintf("page %d", i), err)
		}
		b.WriteString(content)
		fmt.Fprintf(&b, "\n\n--- Page %d ---\n\n", i)
	}
	return b.String(), nil
}
