package client

import "time"

// Job statuses reported by the server.
const (
	StatusQueued     = "queued"
	StatusExtracting = "extracting"
	StatusChunking   = "chunking"
	StatusEmbedding  = "embedding"
	StatusIndexing   = "indexing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Chat modes.
const (
	ModeChat         = "chat"
	ModeSummarize    = "summarize"
	ModeDeepResearch = "deep-research"
)

// Upload is the server's acknowledgement of an accepted file.
type Upload struct {
	FileID     string `json:"fileId"`
	Filename   string `json:"filename"`
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// Job is an ingestion job snapshot.
type Job struct {
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

// Terminal reports whether the job has finished.
func (j Job) Terminal() bool { return j.Status == StatusCompleted || j.Status == StatusFailed }

// Turn is one prior conversation message.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a chat turn. Mode defaults to chat and UseRAG to true on the server.
type ChatRequest struct {
	Message string `json:"message"`
	Mode    string `json:"mode,omitempty"`
	UseRAG  *bool  `json:"useRag,omitempty"`
	History []Turn `json:"conversationHistory,omitempty"`
}

// Source is a chunk used as context.
type Source struct {
	DocumentID string  `json:"documentId"`
	Filename   string  `json:"filename"`
	Ordinal    int     `json:"ordinal"`
	Score      float64 `json:"score"`
}

// WebSource is a web result used as context.
type WebSource struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// ChatResponse is the answer. Text holds whichever of response, summary or
// research the mode produced.
type ChatResponse struct {
	Text       string
	Mode       string      `json:"mode"`
	UsedRAG    bool        `json:"usedRag"`
	Degraded   bool        `json:"degraded"`
	Sources    []Source    `json:"sources"`
	WebSources []WebSource `json:"webSources"`

	Response string `json:"response,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Research string `json:"research,omitempty"`
}

// Document is an uploaded file in the catalog.
type Document struct {
	DocumentID string    `json:"documentId"`
	Filename   string    `json:"filename"`
	Format     string    `json:"format"`
	SizeBytes  int64     `json:"sizeBytes"`
	UploadedAt time.Time `json:"uploadedAt"`
	ChunkCount int       `json:"chunkCount"`
	LastJobID  string    `json:"lastJobId,omitempty"`
}

// DocumentList is the catalog with index totals.
type DocumentList struct {
	Documents       []Document `json:"documents"`
	TotalChunks     int        `json:"totalChunks"`
	UniqueDocuments int        `json:"uniqueDocuments"`
}

// SearchRequest is an explicit similarity search. Nil fields use server defaults.
type SearchRequest struct {
	Query     string   `json:"query"`
	TopK      *int     `json:"topK,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// SearchResult is one scored chunk.
type SearchResult struct {
	ChunkID    string  `json:"chunkId"`
	DocumentID string  `json:"documentId"`
	Filename   string  `json:"filename"`
	Ordinal    int     `json:"ordinal"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// Health is the server health report.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
