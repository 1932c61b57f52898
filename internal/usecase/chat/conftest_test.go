package chat

import (
	"context"
	"sync"

	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/domain/mode"
	"github.com/kailas-cloud/docrag/internal/usecase/retrieval"
)

type mockRetriever struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, query string, m mode.Mode) (retrieval.Retrieval, error)
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string, md mode.Mode) (retrieval.Retrieval, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.fn != nil {
		return m.fn(ctx, query, md)
	}
	return retrieval.Retrieval{}, nil
}

type mockWeb struct {
	calls int
	res   []domain.WebResult
	err   error
}

func (m *mockWeb) Search(_ context.Context, _ string) ([]domain.WebResult, error) {
	m.calls++
	return m.res, m.err
}

type mockGenerator struct {
	prompt string
	cfg    domain.GenerationConfig
	text   string
	err    error
}

func (m *mockGenerator) Generate(_ context.Context, prompt string, cfg domain.GenerationConfig) (domain.Generation, error) {
	m.prompt, m.cfg = prompt, cfg
	if m.err != nil {
		return domain.Generation{}, m.err
	}
	return domain.Generation{Text: m.text, PromptTokens: 10, CompletionTokens: 5}, nil
}
