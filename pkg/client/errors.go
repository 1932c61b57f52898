package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/docrag/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrUnsupportedFormat = domain.ErrUnsupportedFormat
	ErrPayloadTooLarge   = domain.ErrPayloadTooLarge
	ErrJobNotFound       = domain.ErrJobNotFound
	ErrDocumentNotFound  = domain.ErrDocumentNotFound
	ErrUnknownMode       = domain.ErrUnknownMode
	ErrInvalidInput      = domain.ErrInvalidInput
	ErrGenerationFailed  = domain.ErrGenerationFailed
	ErrEmbeddingFailed   = domain.ErrEmbeddingFailed
	ErrExtractionFailed  = domain.ErrExtractionFailed
)

// Client-side errors.
var (
	// ErrJobFailed is returned by WaitForJob when the job ends in the failed state.
	ErrJobFailed = errors.New("job failed")
	// ErrWaitExhausted is returned by WaitForJob when the attempt cap is reached.
	ErrWaitExhausted = errors.New("job did not finish within the polling limit")
	// ErrUnauthorized is returned for 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
)

// codeSentinels maps server error codes to sentinels.
var codeSentinels = map[string]error{
	"unsupported_format": ErrUnsupportedFormat,
	"payload_too_large":  ErrPayloadTooLarge,
	"job_not_found":      ErrJobNotFound,
	"document_not_found": ErrDocumentNotFound,
	"unknown_mode":       ErrUnknownMode,
	"validation_failed":  ErrInvalidInput,
	"generation_failed":  ErrGenerationFailed,
	"embedding_failed":   ErrEmbeddingFailed,
	"extraction_failed":  ErrExtractionFailed,
	"unauthorized":       ErrUnauthorized,
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("docrag: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("docrag: HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap exposes the matching sentinel so errors.Is works on API errors.
func (e *APIError) Unwrap() error {
	return codeSentinels[e.Code]
}

// Transient reports whether a retry may succeed.
func (e *APIError) Transient() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}
