package chi

import "time"

// errorCode is the machine-readable error code in error responses.
type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeValidationFailed  errorCode = "validation_failed"
	codeUnauthorized      errorCode = "unauthorized"
	codeUnsupportedFormat errorCode = "unsupported_format"
	codePayloadTooLarge   errorCode = "payload_too_large"
	codeJobNotFound       errorCode = "job_not_found"
	codeDocumentNotFound  errorCode = "document_not_found"
	codeUnknownMode       errorCode = "unknown_mode"
	codeVectorDimMismatch errorCode = "vector_dim_mismatch"
	codeEmbeddingFailed   errorCode = "embedding_failed"
	codeGenerationFailed  errorCode = "generation_failed"
	codeWebSearchFailed   errorCode = "web_search_failed"
	codeExtractionFailed  errorCode = "extraction_failed"
	codeInternalError     errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type uploadResponse struct {
	FileID     string `json:"fileId"`
	Filename   string `json:"filename"`
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

type jobResponse struct {
	FileID      string    `json:"fileId"`
	DocumentID  string    `json:"documentId"`
	Filename    string    `json:"filename"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	Message     string    `json:"message"`
	ChunksAdded *int      `json:"chunksAdded,omitempty"`
	WordCount   *int      `json:"wordCount,omitempty"`
	FileType    string    `json:"fileType,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type jobListResponse struct {
	Uploads []jobResponse `json:"uploads"`
	Count   int           `json:"count"`
}

type turnRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message             string        `json:"message"`
	Mode                string        `json:"mode"`
	UseRAG              *bool         `json:"useRag"`
	ConversationHistory []turnRequest `json:"conversationHistory"`
}

type sourceResponse struct {
	DocumentID string  `json:"documentId"`
	Filename   string  `json:"filename"`
	Ordinal    int     `json:"ordinal"`
	Score      float64 `json:"score"`
}

type webSourceResponse struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

type documentResponse struct {
	DocumentID string    `json:"documentId"`
	Filename   string    `json:"filename"`
	Format     string    `json:"format"`
	SizeBytes  int64     `json:"sizeBytes"`
	UploadedAt time.Time `json:"uploadedAt"`
	ChunkCount int       `json:"chunkCount"`
	LastJobID  string    `json:"lastJobId,omitempty"`
}

type documentListResponse struct {
	Documents       []documentResponse `json:"documents"`
	TotalChunks     int                `json:"totalChunks"`
	UniqueDocuments int                `json:"uniqueDocuments"`
}

type searchRequest struct {
	Query     string   `json:"query"`
	TopK      *int     `json:"topK"`
	Threshold *float64 `json:"threshold"`
}

type searchResultResponse struct {
	ChunkID    string  `json:"chunkId"`
	DocumentID string  `json:"documentId"`
	Filename   string  `json:"filename"`
	Ordinal    int     `json:"ordinal"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

type searchResponse struct {
	Results []searchResultResponse `json:"results"`
	Count   int                    `json:"count"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
