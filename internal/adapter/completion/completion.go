package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"talentforge/internal/config"
	"talentforge/internal/domain"
	"talentforge/internal/logger"
)

const defaultTimeout = 60 * time.Second

// ModelCompletionSource implements domain.CompletionSource on top of a
// langchaingo model. Identical prompts in flight are collapsed through
// singleflight so concurrent quota fills for the same skill cost one call.
type ModelCompletionSource struct {
	model       llms.Model
	timeout     time.Duration
	temperature float64
	group       singleflight.Group
}

// NewFromConfig builds the completion source named by cfg.Source.
func NewFromConfig(cfg config.LLMConfig) (domain.CompletionSource, error) {
	switch strings.ToLower(cfg.Source) {
	case "ollama":
		return NewOllama(cfg)
	case "openai", "":
		return NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unknown completion source: %s", cfg.Source)
	}
}

// NewOpenAI builds a completion source backed by the OpenAI API.
func NewOpenAI(cfg config.LLMConfig) (domain.CompletionSource, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai completion source requires an api key")
	}
	model, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize openai client: %w", err)
	}
	return newSource(model, cfg), nil
}

// NewOllama builds a completion source backed by a local Ollama server.
func NewOllama(cfg config.LLMConfig) (domain.CompletionSource, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	model, err := ollama.New(
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithModel(cfg.Model),
		ollama.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama client: %w", err)
	}
	return newSource(model, cfg), nil
}

// NewWithModel wraps an already constructed model. Used by tests and by
// callers that manage model construction themselves.
func NewWithModel(model llms.Model, cfg config.LLMConfig) domain.CompletionSource {
	return newSource(model, cfg)
}

func newSource(model llms.Model, cfg config.LLMConfig) *ModelCompletionSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ModelCompletionSource{
		model:       model,
		timeout:     timeout,
		temperature: cfg.Temperature,
	}
}

// Complete sends the prompt to the model and returns its raw text.
func (s *ModelCompletionSource) Complete(ctx context.Context, prompt string, opts ...domain.CompletionOption) (string, error) {
	options := domain.CompletionOptions{Temperature: s.temperature}
	for _, opt := range opts {
		opt(&options)
	}

	result, err, shared := s.group.Do(prompt, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		response, err := llms.GenerateFromSinglePrompt(callCtx, s.model, prompt,
			llms.WithTemperature(options.Temperature))
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return "", fmt.Errorf("completion request timed out: %w", err)
			}
			return "", fmt.Errorf("completion call failed: %w", err)
		}
		return response, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		logger.Get().Debug("completion shared with concurrent caller",
			zap.Int("prompt_len", len(prompt)))
	}

	text := result.(string)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("completion returned no text")
	}
	return text, nil
}
