package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kailas-cloud/docrag/internal/domain/format"
)

// OCR runs an external OCR engine (tesseract CLI compatible) over an image.
type OCR struct {
	Command  string
	Language string
}

// Extract implements Strategy.
func (o *OCR) Extract(ctx context.Context, path string) (string, error) {
	if err := Sniff(path, format.Image); err != nil {
		return "", err
	}
	bin, err := exec.LookPath(o.Command)
	if err != nil {
		return "", failed(format.Image, "OCR engine unavailable", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, path, "stdout", "-l", o.Language)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		return "", failed(format.Image, fmt.Sprintf("OCR failed: %s", msg), err)
	}
	return stdout.String(), nil
}
