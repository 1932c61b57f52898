package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docrag/internal/domain"
)

// GeneratorConfig holds the chat completion settings.
type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Generator produces text through the chat completions endpoint.
type Generator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGenerator creates an OpenAI-compatible generator.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	return &Generator{
		client:  newClient(cfg.APIKey, cfg.BaseURL),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

// Generate implements domain.Generator. The assembled prompt is sent as a single user message.
func (g *Generator) Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig) (domain.Generation, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.Generation{}, fmt.Errorf("generation timed out after %s: %w", g.timeout, domain.ErrGenerationFailed)
		}
		return domain.Generation{}, parseAPIError("generation", err, domain.ErrGenerationFailed)
	}
	if len(resp.Choices) == 0 {
		return domain.Generation{}, fmt.Errorf("empty completion: %w", domain.ErrGenerationFailed)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	g.logger.Debug("Generation completed",
		zap.String("model", g.model),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return domain.Generation{
		Text:             text,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
