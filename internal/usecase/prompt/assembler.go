// Package prompt assembles generation requests from a mode template, retrieved
// chunks, web results and prior conversation turns.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/domain/conversation"
	"github.com/kailas-cloud/docrag/internal/domain/mode"
	"github.com/kailas-cloud/docrag/internal/domain/search/result"
)

// DefaultHistoryTurns is how many prior turns are kept.
const DefaultHistoryTurns = 6

// Input is everything a prompt is built from.
type Input struct {
	Mode      mode.Mode
	Message   string
	History   []conversation.Turn
	Retrieved []result.Result
	Web       []domain.WebResult
}

// Request is a prompt ready for the generation capability.
type Request struct {
	Prompt string
	Config domain.GenerationConfig
}

// Assembler builds prompts. It holds no mutable state and is safe for concurrent use.
type Assembler struct {
	historyTurns int
}

// NewAssembler creates an assembler keeping at most historyTurns prior turns.
func NewAssembler(historyTurns int) *Assembler {
	if historyTurns < 0 {
		historyTurns = DefaultHistoryTurns
	}
	return &Assembler{historyTurns: historyTurns}
}

// Assemble renders the prompt. Identical inputs produce identical output.
//
// Layout:
//
//	System: <mode prompt>
//
//	Context:
//	[Source 1: <filename>, chunk <ordinal>]
//	<text>
//
//	Web Results:
//	[Web 1: <title> (<url>)]
//	<content>
//
//	<Role>: <turn>
//
//	User: <message>
//
//	Assistant:
func (a *Assembler) Assemble(in Input) (Request, error) {
	cfg, err := mode.Lookup(in.Mode)
	if err != nil {
		return Request{}, err
	}
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return Request{}, fmt.Errorf("message is required: %w", domain.ErrInvalidInput)
	}

	var b strings.Builder
	b.WriteString("System: ")
	b.WriteString(strings.TrimSpace(cfg.SystemPrompt))
	b.WriteString("\n\n")

	if len(in.Retrieved) > 0 {
		b.WriteString("Context:\n")
		for i, r := range in.Retrieved {
			fmt.Fprintf(&b, "[Source %d: %s, chunk %d]\n%s\n\n",
				i+1, sourceName(r), r.Chunk.Ordinal, strings.TrimSpace(r.Chunk.Text))
		}
	}

	if len(in.Web) > 0 {
		b.WriteString("Web Results:\n")
		for i, w := range in.Web {
			fmt.Fprintf(&b, "[Web %d: %s (%s)]\n%s\n\n",
				i+1, strings.TrimSpace(w.Title), w.URL, strings.TrimSpace(w.Content))
		}
	}

	if turns := conversation.Last(in.History, a.historyTurns); len(turns) > 0 {
		for _, t := range turns {
			content := strings.TrimSpace(t.Content)
			if content == "" {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", t.Label(), content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User: %s\n\nAssistant:", msg)

	return Request{
		Prompt: b.String(),
		Config: domain.GenerationConfig{Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens},
	}, nil
}

func sourceName(r result.Result) string {
	if r.Chunk.Source != "" {
		return r.Chunk.Source
	}
	if r.Chunk.DocumentID != "" {
		return r.Chunk.DocumentID
	}
	return "unknown"
}
