package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/domain/chunk"
	"github.com/kailas-cloud/docrag/internal/domain/conversation"
	"github.com/kailas-cloud/docrag/internal/domain/mode"
	"github.com/kailas-cloud/docrag/internal/domain/search/result"
)

func hit(source string, ordinal int, text string) result.Result {
	return result.New(chunk.Chunk{
		ID: chunk.ID("doc", ordinal), DocumentID: "doc", Source: source, Ordinal: ordinal, Text: text,
	}, 0.9)
}

func TestAssemble_Layout(t *testing.T) {
	a := NewAssembler(DefaultHistoryTurns)
	req, err := a.Assemble(Input{
		Mode:    mode.Chat,
		Message: "What is machine learning?",
		History: []conversation.Turn{
			{Role: conversation.User, Content: "hi"},
			{Role: conversation.Assistant, Content: "hello"},
		},
		Retrieved: []result.Result{
			hit("ml.pdf", 2, "Machine learning learns from data."),
			hit("ml.pdf", 5, "Neural networks are one approach."),
		},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	cfg, _ := mode.Lookup(mode.Chat)
	p := req.Prompt
	if !strings.HasPrefix(p, "System: "+strings.TrimSpace(cfg.SystemPrompt)) {
		t.Errorf("prompt does not start with system template:\n%s", p)
	}
	wantInOrder := []string{
		"Context:\n",
		"[Source 1: ml.pdf, chunk 2]\nMachine learning learns from data.",
		"[Source 2: ml.pdf, chunk 5]\nNeural networks are one approach.",
		"User: hi\nAssistant: hello\n",
		"User: What is machine learning?\n\nAssistant:",
	}
	pos := 0
	for _, w := range wantInOrder {
		i := strings.Index(p[pos:], w)
		if i < 0 {
			t.Fatalf("missing or out of order %q in:\n%s", w, p)
		}
		pos += i + len(w)
	}
	if !strings.HasSuffix(p, "Assistant:") {
		t.Errorf("prompt must end with the assistant cue")
	}
	if strings.Contains(p, "Web Results:") {
		t.Error("unexpected web section")
	}
	if req.Config.Temperature != cfg.Temperature || req.Config.MaxTokens != cfg.MaxTokens {
		t.Errorf("config = %+v", req.Config)
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	a := NewAssembler(DefaultHistoryTurns)
	in := Input{
		Mode:      mode.DeepResearch,
		Message:   "compare",
		Retrieved: []result.Result{hit("a.txt", 0, "alpha")},
		Web:       []domain.WebResult{{Title: "T", URL: "https://example.com", Content: "web body"}},
	}
	first, _ := a.Assemble(in)
	for i := 0; i < 5; i++ {
		next, _ := a.Assemble(in)
		if next != first {
			t.Fatalf("run %d differs", i)
		}
	}
	if !strings.Contains(first.Prompt, "Web Results:\n[Web 1: T (https://example.com)]\nweb body") {
		t.Errorf("web section missing:\n%s", first.Prompt)
	}
}

func TestAssemble_HistoryTruncated(t *testing.T) {
	a := NewAssembler(2)
	req, err := a.Assemble(Input{
		Mode:    mode.Coding,
		Message: "now",
		History: []conversation.Turn{
			{Role: conversation.User, Content: "first"},
			{Role: conversation.Assistant, Content: "second"},
			{Role: conversation.User, Content: "third"},
		},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if strings.Contains(req.Prompt, "first") {
		t.Error("oldest turn should be dropped")
	}
	if !strings.Contains(req.Prompt, "Assistant: second\nUser: third\n") {
		t.Errorf("recent turns missing:\n%s", req.Prompt)
	}
}

func TestAssemble_NoContextSections(t *testing.T) {
	req, err := NewAssembler(0).Assemble(Input{
		Mode:    mode.Summarize,
		Message: "Summarize this text.",
		History: []conversation.Turn{{Role: conversation.User, Content: "ignored"}},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if strings.Contains(req.Prompt, "Context:") || strings.Contains(req.Prompt, "ignored") {
		t.Errorf("unexpected sections:\n%s", req.Prompt)
	}
}

func TestAssemble_Errors(t *testing.T) {
	a := NewAssembler(DefaultHistoryTurns)
	if _, err := a.Assemble(Input{Mode: "poetry", Message: "x"}); !errors.Is(err, domain.ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
	if _, err := a.Assemble(Input{Mode: mode.Chat, Message: "   "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAssemble_UnknownSourceFallsBack(t *testing.T) {
	r := result.New(chunk.Chunk{Text: "orphan"}, 0.7)
	req, _ := NewAssembler(DefaultHistoryTurns).Assemble(Input{Mode: mode.Chat, Message: "q", Retrieved: []result.Result{r}})
	if !strings.Contains(req.Prompt, "[Source 1: unknown, chunk 0]") {
		t.Errorf("prompt:\n%s", req.Prompt)
	}
}
