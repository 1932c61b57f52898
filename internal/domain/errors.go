package domain

import (
	"errors"
)

var (
	// ErrUnsupportedFormat signals a file extension no extraction strategy handles.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrExtractionFailed signals that a strategy could not produce text.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrEmbeddingFailed signals malformed or empty embedding input, or a provider failure.
	ErrEmbeddingFailed = errors.New("embedding failed")
	// ErrVectorStore signals a vector store failure.
	ErrVectorStore = errors.New("vector store error")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrJobNotFound signals a missing ingestion job.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobExists signals a duplicate ingestion job id.
	ErrJobExists = errors.New("job already exists")
	// ErrInvalidTransition signals a job update that would regress its status or progress.
	ErrInvalidTransition = errors.New("invalid job transition")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidConfiguration signals an unusable configuration value (e.g. overlap >= chunk size).
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrGenerationFailed signals an error or timeout from the generation capability.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrWebSearchFailed signals an error from the web search capability.
	ErrWebSearchFailed = errors.New("web search failed")
	// ErrUnknownMode signals an interaction mode missing from the mode table.
	ErrUnknownMode = errors.New("unknown mode")
	// ErrPayloadTooLarge signals an upload over the configured ceiling.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrInvalidInput signals a malformed request.
	ErrInvalidInput = errors.New("invalid input")
)
