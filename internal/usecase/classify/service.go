// Package classify labels feedback text with sentiment, urgency and themes.
package classify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/classification"
	"github.com/kailas-cloud/feedex/internal/metrics"
)

const systemPrompt = `You are a sentiment analysis engine for product feedback.
Reply with exactly one JSON object and nothing else:
{"sentiment": "positive" | "neutral" | "negative", "score": <number between -1.0 and 1.0>}
Negative scores mean negative sentiment. Do not explain.`

// Defaults for the sentiment completion.
const (
	DefaultTemperature float32 = 0.1
	DefaultMaxTokens           = 100
)

// Service classifies text. The model path covers sentiment only; themes and
// urgency are always rule based.
type Service struct {
	completer   Completer
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// New creates a classifier. A nil completer disables the model path.
func New(completer Completer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		completer:   completer,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		logger:      logger,
	}
}

// WithSampling overrides temperature and max tokens. Non-positive max tokens are ignored.
func (s *Service) WithSampling(temperature float32, maxTokens int) *Service {
	if temperature >= 0 {
		s.temperature = temperature
	}
	if maxTokens > 0 {
		s.maxTokens = maxTokens
	}
	return s
}

// Classify never fails: any model problem falls back to keyword rules.
func (s *Service) Classify(ctx context.Context, text string) classification.Result {
	res := Rules(text)

	if sentiment, score, ok := s.modelSentiment(ctx, text); ok {
		res.Sentiment, res.Score, res.Path = sentiment, score, classification.PathModel
	}

	metrics.ClassifierResultsTotal.WithLabelValues(string(res.Path)).Inc()
	return res.Normalize()
}

func (s *Service) modelSentiment(ctx context.Context, text string) (classification.Sentiment, float64, bool) {
	if s.completer == nil {
		metrics.ClassifierFallbackTotal.WithLabelValues("disabled").Inc()
		return "", 0, false
	}

	reply, err := s.completer.Complete(ctx, domain.CompletionRequest{
		System:      systemPrompt,
		User:        text,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		err = &domain.CallError{Backend: "inference", Err: err}
		metrics.ClassifierFallbackTotal.WithLabelValues("call").Inc()
		s.logger.Warn("inference failed, using keyword fallback", zap.Error(err))
		return "", 0, false
	}

	sentiment, score, err := decodeSentiment(reply)
	if err != nil {
		var de *domain.DecodeError
		if errors.As(err, &de) {
			s.logger.Warn("undecodable model reply, using keyword fallback",
				zap.Error(err), zap.Int("reply_len", len(de.Reply)))
		}
		metrics.ClassifierFallbackTotal.WithLabelValues("decode").Inc()
		return "", 0, false
	}
	return sentiment, score, true
}
