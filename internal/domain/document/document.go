package document

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/docrag/internal/domain/format"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Document is an uploaded source file (immutable value object).
// Only the derived chunk count and last job reference change after creation.
type Document struct {
	id         string
	filename   string
	format     format.Format
	sizeBytes  int64
	uploadedAt time.Time
	storedPath string
	chunkCount int
	lastJobID  string
}

// New validates and creates a Document.
func New(
	id, filename string, f format.Format, sizeBytes int64, uploadedAt time.Time, storedPath string,
) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("document ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID must be alphanumeric with underscores and hyphens")
	}
	if filename == "" {
		return Document{}, fmt.Errorf("filename is required")
	}
	if !f.IsValid() {
		return Document{}, fmt.Errorf("unsupported format %q", f)
	}
	if sizeBytes < 0 {
		return Document{}, fmt.Errorf("size must be non-negative")
	}

	return Document{
		id:         id,
		filename:   filename,
		format:     f,
		sizeBytes:  sizeBytes,
		uploadedAt: uploadedAt.UTC(),
		storedPath: storedPath,
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id, filename string, f format.Format, sizeBytes int64, uploadedAt time.Time,
	storedPath string, chunkCount int, lastJobID string,
) Document {
	return Document{
		id: id, filename: filename, format: f, sizeBytes: sizeBytes, uploadedAt: uploadedAt,
		storedPath: storedPath, chunkCount: chunkCount, lastJobID: lastJobID,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Filename returns the original upload filename.
func (d *Document) Filename() string { return d.filename }

// Format returns the source format family.
func (d *Document) Format() format.Format { return d.format }

// SizeBytes returns the upload size in bytes.
func (d *Document) SizeBytes() int64 { return d.sizeBytes }

// UploadedAt returns the upload time (UTC).
func (d *Document) UploadedAt() time.Time { return d.uploadedAt }

// StoredPath returns where the upload is kept on disk for (re)ingestion.
func (d *Document) StoredPath() string { return d.storedPath }

// ChunkCount returns the number of chunks recorded at the last completed ingestion.
func (d *Document) ChunkCount() int { return d.chunkCount }

// LastJobID returns the id of the most recent ingestion job.
func (d *Document) LastJobID() string { return d.lastJobID }

// WithChunkCount returns a copy with the chunk count set.
func (d *Document) WithChunkCount(n int) Document {
	c := *d
	c.chunkCount = n
	return c
}

// WithLastJob returns a copy referencing the given job.
func (d *Document) WithLastJob(jobID string) Document {
	c := *d
	c.lastJobID = jobID
	return c
}
