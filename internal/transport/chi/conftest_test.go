package chi

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/domain/job"
	"github.com/kailas-cloud/docrag/internal/domain/search/result"
	chatuc "github.com/kailas-cloud/docrag/internal/usecase/chat"
	documentuc "github.com/kailas-cloud/docrag/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docrag/internal/usecase/health"
	"github.com/kailas-cloud/docrag/internal/usecase/ingest"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// --- Ingestor mock ---

type mockIngestor struct {
	maxBytes    int64
	gotFilename string
	gotBody     string
	submitErr   error
	jobs        map[string]job.Job
	reingestErr error
}

func (m *mockIngestor) Submit(_ context.Context, up ingest.Upload) (job.Job, error) {
	m.gotFilename = up.Filename
	b, err := io.ReadAll(up.Body)
	if err != nil {
		return job.Job{}, err
	}
	m.gotBody = string(b)
	if m.submitErr != nil {
		return job.Job{}, m.submitErr
	}
	return job.New("job-1", "doc-1", up.Filename, testTime), nil
}

func (m *mockIngestor) Reingest(_ context.Context, documentID string) (job.Job, error) {
	if m.reingestErr != nil {
		return job.Job{}, m.reingestErr
	}
	return job.New("job-2", documentID, "notes.txt", testTime), nil
}

func (m *mockIngestor) Status(_ context.Context, id string) (job.Job, error) {
	j, ok := m.jobs[id]
	if !ok {
		return job.Job{}, domain.ErrJobNotFound
	}
	return j, nil
}

func (m *mockIngestor) Jobs(_ context.Context) ([]job.Job, error) {
	out := make([]job.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (m *mockIngestor) MaxBytes() int64 { return m.maxBytes }

// --- Chatter mock ---

type mockChatter struct {
	got  chatuc.Request
	resp chatuc.Response
	err  error
	// embedTokens and genTokens are added to the request usage collector.
	embedTokens int
	genTokens   int
}

func (m *mockChatter) Chat(ctx context.Context, req chatuc.Request) (chatuc.Response, error) {
	m.got = req
	if m.err != nil {
		return chatuc.Response{}, m.err
	}
	u := domain.UsageFromContext(ctx)
	if m.embedTokens > 0 {
		u.AddEmbeddingTokens(m.embedTokens)
	}
	u.AddGenerationTokens(m.genTokens)
	return m.resp, nil
}

// --- Searcher mock ---

type mockSearcher struct {
	gotTopK      int
	gotThreshold float64
	results      []result.Result
	err          error
}

func (m *mockSearcher) Search(_ context.Context, _ string, topK int, threshold float64) ([]result.Result, error) {
	m.gotTopK = topK
	m.gotThreshold = threshold
	return m.results, m.err
}

// --- Documents mock ---

type mockDocuments struct {
	listing   documentuc.Listing
	deleted   string
	deleteErr error
}

func (m *mockDocuments) List(_ context.Context) (documentuc.Listing, error) {
	return m.listing, nil
}

func (m *mockDocuments) Delete(_ context.Context, id string) error {
	m.deleted = id
	return m.deleteErr
}

// --- HealthChecker mock ---

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type testDeps struct {
	ingest    *mockIngestor
	chat      *mockChatter
	search    *mockSearcher
	documents *mockDocuments
	health    *mockHealth
}

func newTestDeps() *testDeps {
	return &testDeps{
		ingest:    &mockIngestor{maxBytes: 1 << 20, jobs: map[string]job.Job{}},
		chat:      &mockChatter{},
		search:    &mockSearcher{},
		documents: &mockDocuments{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"cache": healthuc.CheckOK},
		}},
	}
}

func (d *testDeps) router(apiKeys ...string) http.Handler {
	s := NewServer(d.ingest, d.chat, d.search, d.documents, d.health, zap.NewNop())
	return NewRouter(s, apiKeys, zap.NewNop())
}
