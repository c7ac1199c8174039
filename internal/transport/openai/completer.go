package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/metrics"
)

const kindInference = "inference"

// Completer is a chat completion provider using the OpenAI-compatible API.
type Completer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewCompleter creates a chat completion provider.
func NewCompleter(cfg *Config) *Completer {
	return &Completer{
		client: newClient(cfg.APIKey, cfg.BaseURL),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Complete implements domain.Completer. It returns the first choice's content.
func (c *Completer) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.User})

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(kindInference, c.model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(kindInference, c.model, "api_error").Inc()
		return "", parseAPIError(kindInference, err, domain.ErrInferenceProviderError)
	}
	if len(resp.Choices) == 0 {
		metrics.ProviderRequestsTotal.WithLabelValues(kindInference, c.model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(kindInference, c.model, "empty_response").Inc()
		return "", fmt.Errorf("no completion choices: %w", domain.ErrInferenceProviderError)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(kindInference, c.model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(kindInference, c.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.ProviderTokensTotal.WithLabelValues(kindInference, c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.ProviderTokensTotal.WithLabelValues(kindInference, c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	if c.logger != nil {
		c.logger.Debug("completion",
			zap.String("model", c.model),
			zap.Duration("duration", duration),
			zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// HealthCheck verifies API availability via ListModels.
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
