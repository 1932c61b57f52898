// Package mode holds the immutable per-mode behavior table.
package mode

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/docrag/internal/domain"
)

// Mode is an interaction mode.
type Mode string

// Supported modes.
const (
	Chat         Mode = "chat"
	Summarize    Mode = "summarize"
	DeepResearch Mode = "deep-research"
	Coding       Mode = "coding"
)

// DefaultThreshold is the minimum retrieval score for every mode.
const DefaultThreshold = 0.5

// Config is the static behavior for one mode.
type Config struct {
	SystemPrompt string
	Temperature  float32
	TopK         int
	MaxTokens    int
	UseRetrieval bool
	UseWebSearch bool
	Threshold    float64
	// ResponseField names the JSON field the answer is returned under.
	ResponseField string
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	_, ok := table[m]
	return ok
}

// Lookup returns the configuration for m.
func Lookup(m Mode) (Config, error) {
	cfg, ok := table[m]
	if !ok {
		return Config{}, fmt.Errorf("%q: %w", m, domain.ErrUnknownMode)
	}
	return cfg, nil
}

// All returns the supported modes in sorted order.
func All() []Mode {
	out := make([]Mode, 0, len(table))
	for m := range table {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var table = map[Mode]Config{
	Chat: {
		SystemPrompt:  chatPrompt,
		Temperature:   0.7,
		TopK:          3,
		MaxTokens:     1024,
		UseRetrieval:  true,
		Threshold:     DefaultThreshold,
		ResponseField: "response",
	},
	Summarize: {
		SystemPrompt:  summarizePrompt,
		Temperature:   0.3,
		TopK:          0,
		MaxTokens:     512,
		UseRetrieval:  false,
		Threshold:     DefaultThreshold,
		ResponseField: "summary",
	},
	DeepResearch: {
		SystemPrompt:  researchPrompt,
		Temperature:   0.5,
		TopK:          10,
		MaxTokens:     2048,
		UseRetrieval:  true,
		UseWebSearch:  true,
		Threshold:     DefaultThreshold,
		ResponseField: "research",
	},
	Coding: {
		SystemPrompt:  codingPrompt,
		Temperature:   0.2,
		TopK:          5,
		MaxTokens:     1536,
		UseRetrieval:  true,
		Threshold:     DefaultThreshold,
		ResponseField: "response",
	},
}

const chatPrompt = `You are a knowledgeable assistant. Answer directly without introducing yourself.

Formatting:
- Prefer plain paragraphs for conversation.
- For lists use "- " bullets with a blank line before and after the group.
- Indent sub-bullets by two spaces and put group headers in **bold**.

Use the provided context when it is relevant to the question.`

const summarizePrompt = `You write concise structured summaries. Answer directly without introducing yourself.

Formatting:
- Start with a plain-text title line.
- Use numbered sections (1., 2., ...) for the main topics.
- Under each section list the details as "- " bullets, one line each.
- Leave a blank line between sections.`

const researchPrompt = `You are a research assistant producing thorough analysis. Answer directly without introducing yourself.

Write in well-structured paragraphs, not bullet points. Use **bold** section headings when the answer has several parts.

For each query analyse the question, use all of the provided material, cite the sources you rely on by their tag and finish with clear conclusions.`

const codingPrompt = `You are an expert programming assistant. Answer directly without introducing yourself.

Put code in fenced blocks tagged with the language and keep examples complete and runnable.
Comment the code, explain the approach, handle errors and point out relevant optimisations.
Separate code blocks from explanations with blank lines.`
