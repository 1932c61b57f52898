package domain

import "context"

// GenerationConfig carries per-call generation parameters.
type GenerationConfig struct {
	Temperature float32
	MaxTokens   int
}

// Generation is the text produced by the language model.
type Generation struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Generator is the opaque text generation capability.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (Generation, error)
}

// WebResult is one hit from the web search capability.
type WebResult struct {
	Title   string
	URL     string
	Content string
}

// WebSearcher is the opaque web search capability.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]WebResult, error)
}
