// Package chi is the HTTP API: upload, job status, chat, search and document
// management routes on a chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/domain/conversation"
	domdoc "github.com/kailas-cloud/docrag/internal/domain/document"
	"github.com/kailas-cloud/docrag/internal/domain/job"
	"github.com/kailas-cloud/docrag/internal/domain/mode"
	"github.com/kailas-cloud/docrag/internal/domain/search/result"
	chatuc "github.com/kailas-cloud/docrag/internal/usecase/chat"
	documentuc "github.com/kailas-cloud/docrag/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docrag/internal/usecase/health"
	"github.com/kailas-cloud/docrag/internal/usecase/ingest"
)

// Default search bounds when the request leaves them unset.
const (
	defaultSearchTopK      = 5
	defaultSearchThreshold = 0.0
	// multipartOverhead is allowed on top of the file ceiling for form framing.
	multipartOverhead = 1 << 20
	maxJSONBody       = 1 << 20
)

// Ingestor accepts uploads and reports job progress.
type Ingestor interface {
	Submit(ctx context.Context, up ingest.Upload) (job.Job, error)
	Reingest(ctx context.Context, documentID string) (job.Job, error)
	Status(ctx context.Context, jobID string) (job.Job, error)
	Jobs(ctx context.Context) ([]job.Job, error)
	MaxBytes() int64
}

// Chatter answers chat turns.
type Chatter interface {
	Chat(ctx context.Context, req chatuc.Request) (chatuc.Response, error)
}

// Searcher runs explicit similarity searches.
type Searcher interface {
	Search(ctx context.Context, query string, topK int, threshold float64) ([]result.Result, error)
}

// Documents lists and deletes documents.
type Documents interface {
	List(ctx context.Context) (documentuc.Listing, error)
	Delete(ctx context.Context, id string) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	ingest        Ingestor
	chat          Chatter
	search        Searcher
	documents     Documents
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingestor Ingestor,
	chat Chatter,
	search Searcher,
	documents Documents,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	return &Server{
		ingest:        ingestor,
		chat:          chat,
		search:        search,
		documents:     documents,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Mount registers every route on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.Upload)
		r.Get("/upload/status", s.ListUploads)
		r.Get("/upload/status/{fileId}", s.UploadStatus)
		r.Post("/chat", s.Chat)
		r.Post("/search", s.Search)
		r.Get("/documents", s.ListDocuments)
		r.Delete("/documents/{documentId}", s.DeleteDocument)
		r.Post("/documents/{documentId}/reindex", s.ReindexDocument)
	})
}

// Upload handles POST /api/upload (multipart field "file").
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	limit := s.ingest.MaxBytes()
	if r.ContentLength > limit+multipartOverhead {
		writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge, domain.ErrPayloadTooLarge.Error())
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "expected multipart/form-data body")
		return
	}
	part, err := filePart(mr)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	defer func() { _ = part.Close() }()

	j, err := s.ingest.Submit(r.Context(), ingest.Upload{
		Filename: part.FileName(),
		Size:     -1,
		Body:     part,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, uploadResponse{
		FileID:     j.ID,
		Filename:   j.Filename,
		DocumentID: j.DocumentID,
		Status:     string(j.Status),
		Message:    j.Message,
	})
}

func filePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("multipart field \"file\" is required: %w", domain.ErrInvalidInput)
		}
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return nil, err
			}
			return nil, fmt.Errorf("read multipart: %v: %w", err, domain.ErrInvalidInput)
		}
		if part.FormName() == "file" && part.FileName() != "" {
			return part, nil
		}
		_ = part.Close()
	}
}

// UploadStatus handles GET /api/upload/status/{fileId}.
func (s *Server) UploadStatus(w http.ResponseWriter, r *http.Request) {
	j, err := s.ingest.Status(r.Context(), chi.URLParam(r, "fileId"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobToResponse(j))
}

// ListUploads handles GET /api/upload/status.
func (s *Server) ListUploads(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.ingest.Jobs(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]jobResponse, len(jobs))
	for i, j := range jobs {
		items[i] = jobToResponse(j)
	}
	writeJSON(w, http.StatusOK, jobListResponse{Uploads: items, Count: len(items)})
}

// Chat handles POST /api/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	history := make([]conversation.Turn, 0, len(req.ConversationHistory))
	for _, t := range req.ConversationHistory {
		turn, err := conversation.NewTurn(t.Role, t.Content)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		history = append(history, turn)
	}

	m := mode.Mode(req.Mode)
	if m == "" {
		m = mode.Chat
	}
	useRAG := true
	if req.UseRAG != nil {
		useRAG = *req.UseRAG
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.chat.Chat(ctx, chatuc.Request{
		Message: req.Message,
		Mode:    m,
		UseRAG:  useRAG,
		History: history,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, chatToResponse(resp))
}

// Search handles POST /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	topK := defaultSearchTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	threshold := defaultSearchThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.search.Search(ctx, req.Query, topK, threshold)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]searchResultResponse, len(results))
	for i, res := range results {
		items[i] = searchResultResponse{
			ChunkID:    res.Chunk.ID,
			DocumentID: res.Chunk.DocumentID,
			Filename:   res.Chunk.Source,
			Ordinal:    res.Chunk.Ordinal,
			Text:       res.Chunk.Text,
			Score:      res.Score,
		}
	}
	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchResponse{Results: items, Count: len(items)})
}

// ListDocuments handles GET /api/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	l, err := s.documents.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	docs := make([]documentResponse, len(l.Documents))
	for i := range l.Documents {
		docs[i] = documentToResponse(&l.Documents[i])
	}
	writeJSON(w, http.StatusOK, documentListResponse{
		Documents:       docs,
		TotalChunks:     l.TotalChunks,
		UniqueDocuments: l.UniqueDocuments,
	})
}

// DeleteDocument handles DELETE /api/documents/{documentId}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Delete(r.Context(), chi.URLParam(r, "documentId")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReindexDocument handles POST /api/documents/{documentId}/reindex.
func (s *Server) ReindexDocument(w http.ResponseWriter, r *http.Request) {
	j, err := s.ingest.Reingest(r.Context(), chi.URLParam(r, "documentId"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, uploadResponse{
		FileID:     j.ID,
		Filename:   j.Filename,
		DocumentID: j.DocumentID,
		Status:     string(j.Status),
		Message:    j.Message,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func setUsageHeaders(w http.ResponseWriter, u *domain.Usage) {
	if u == nil {
		return
	}
	if u.Embedded {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(u.EmbeddingTokens))
	}
	if u.GenerationTokens > 0 {
		w.Header().Set("X-Generation-Tokens", strconv.Itoa(u.GenerationTokens))
	}
}

func jobToResponse(j job.Job) jobResponse {
	resp := jobResponse{
		FileID:     j.ID,
		DocumentID: j.DocumentID,
		Filename:   j.Filename,
		Status:     string(j.Status),
		Progress:   j.Progress,
		Message:    j.Message,
		FileType:   string(j.DetectedFormat),
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}
	if j.Status == job.Completed {
		n := j.ChunksAdded
		resp.ChunksAdded = &n
	}
	if j.WordCount > 0 {
		n := j.WordCount
		resp.WordCount = &n
	}
	return resp
}

// chatToResponse puts the answer under the mode's response field
// (response, summary or research).
func chatToResponse(r chatuc.Response) map[string]any {
	sources := make([]sourceResponse, len(r.Sources))
	for i, src := range r.Sources {
		sources[i] = sourceResponse{
			DocumentID: src.DocumentID,
			Filename:   src.Filename,
			Ordinal:    src.Ordinal,
			Score:      src.Score,
		}
	}
	web := make([]webSourceResponse, len(r.WebSources))
	for i, ws := range r.WebSources {
		web[i] = webSourceResponse{Title: ws.Title, URL: ws.URL}
	}

	field := r.ResponseField
	if field == "" {
		field = "response"
	}
	return map[string]any{
		field:        r.Text,
		"mode":       string(r.Mode),
		"usedRag":    r.UsedRAG,
		"degraded":   r.Degraded,
		"sources":    sources,
		"webSources": web,
	}
}

func documentToResponse(d *domdoc.Document) documentResponse {
	return documentResponse{
		DocumentID: d.ID(),
		Filename:   d.Filename(),
		Format:     string(d.Format()),
		SizeBytes:  d.SizeBytes(),
		UploadedAt: d.UploadedAt(),
		ChunkCount: d.ChunkCount(),
		LastJobID:  d.LastJobID(),
	}
}
