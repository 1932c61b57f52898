package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrag/internal/domain"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		maxBytesHandler,
		generationHandler,
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusUnsupportedMediaType, codeUnsupportedFormat),
		sentinelHandler(domain.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, codePayloadTooLarge),
		sentinelHandler(domain.ErrJobNotFound, http.StatusNotFound, codeJobNotFound),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrUnknownMode, http.StatusBadRequest, codeUnknownMode),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusConflict, codeVectorDimMismatch),
		sentinelHandler(domain.ErrExtractionFailed, http.StatusUnprocessableEntity, codeExtractionFailed),
		sentinelHandler(domain.ErrEmbeddingFailed, http.StatusBadGateway, codeEmbeddingFailed),
		sentinelHandler(domain.ErrWebSearchFailed, http.StatusBadGateway, codeWebSearchFailed),
	}
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnsupportedFormat,
		domain.ErrPayloadTooLarge,
		domain.ErrJobNotFound,
		domain.ErrDocumentNotFound,
		domain.ErrUnknownMode,
		domain.ErrInvalidInput,
		domain.ErrVectorDimMismatch,
		domain.ErrExtractionFailed,
		domain.ErrEmbeddingFailed,
		domain.ErrWebSearchFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			if s == domain.ErrInvalidInput || s == domain.ErrUnknownMode {
				return err.Error()
			}
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// generationHandler surfaces generation failures verbatim.
func generationHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrGenerationFailed) {
		return false
	}
	writeError(w, http.StatusBadGateway, codeGenerationFailed, err.Error())
	return true
}

func maxBytesHandler(w http.ResponseWriter, err error, _ string) bool {
	var mbe *http.MaxBytesError
	if !errors.As(err, &mbe) {
		return false
	}
	writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge, domain.ErrPayloadTooLarge.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := loggerFrom(r, s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
