package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"golang.org/x/time/rate"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"

	// refusalAttempts bounds how many times a refused generation is
	// reissued before giving up.
	refusalAttempts = 3

	// transportAttempts bounds retries of rate-limited or transient
	// provider errors within a single generation.
	transportAttempts = 4
)

var errAPIKeyNotSet = errors.New("llm: API key not set")

// OpenAIConfig configures an OpenAI-backed generator.
type OpenAIConfig struct {
	APIKey string
	Model  string
	// RequestsPerSecond throttles outbound calls. Zero disables throttling.
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// OpenAI implements Generator against the OpenAI chat completions API.
type OpenAI struct {
	client  openai.Client
	model   string
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewOpenAI creates a generator from the given config.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errAPIKeyNotSet
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAI{
		client:  openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:   model,
		limiter: limiter,
		logger:  logger.With("component", "llm"),
	}, nil
}

// Generate runs a chat completion. Transient provider failures are retried
// with backoff; refusals are reissued up to refusalAttempts times before
// ErrRefused is returned.
func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	for attempt := 1; attempt <= refusalAttempts; attempt++ {
		text, err := o.complete(ctx, req)
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
		o.logger.Warn("model refused generation, retrying",
			"attempt", attempt, "model", o.model)
	}
	return "", ErrRefused
}

// complete issues one completion call with transport-level retries. An
// empty return with nil error signals a refusal.
func (o *OpenAI) complete(ctx context.Context, req Request) (string, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	var completion *openai.ChatCompletion
	err := retry.Do(
		func() error {
			var err error
			completion, err = o.client.Chat.Completions.New(ctx, params)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(transportAttempts),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isTransient),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}

	choice := completion.Choices[0]
	if choice.Message.Refusal != "" || choice.FinishReason == "content_filter" {
		return "", nil
	}
	return strings.TrimSpace(choice.Message.Content), nil
}

// isTransient reports whether a provider error is worth retrying.
func isTransient(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	// Network-level failures surface as plain errors.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

var _ Generator = (*OpenAI)(nil)
