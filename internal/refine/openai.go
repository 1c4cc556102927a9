package refine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/alnah/go-mdrefine/internal/apierr"
	"github.com/alnah/go-mdrefine/internal/prompt"
)

// Default OpenAI configuration.
const (
	defaultOpenAIModel           = "gpt-4o-mini"
	defaultOpenAIMaxOutputTokens = 8192

	defaultOpenAIMaxRetries = 3
	defaultOpenAIBaseDelay  = 1 * time.Second
	defaultOpenAIMaxDelay   = 30 * time.Second
)

// chatCompleter is an internal interface for OpenAI chat completion.
// *openai.Client implements this implicitly.
// This allows injecting mocks in tests.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compile-time interface compliance check.
var _ ChunkRefiner = (*OpenAIRefiner)(nil)

// OpenAIRefiner refines markdown chunks using OpenAI's chat completion API.
// It paces each request and retries transient errors with exponential backoff.
type OpenAIRefiner struct {
	client          chatCompleter
	model           string
	maxOutputTokens int
	maxRetries      int
	baseDelay       time.Duration
	maxDelay        time.Duration
	pace            pacer
}

// OpenAIOption configures an OpenAIRefiner.
type OpenAIOption func(*OpenAIRefiner)

// WithOpenAIModel sets the completion model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(r *OpenAIRefiner) {
		if model != "" {
			r.model = model
		}
	}
}

// WithOpenAIMaxOutputTokens sets the completion token ceiling.
func WithOpenAIMaxOutputTokens(max int) OpenAIOption {
	return func(r *OpenAIRefiner) {
		if max > 0 {
			r.maxOutputTokens = max
		}
	}
}

// WithOpenAIMaxRetries sets the maximum number of retry attempts.
func WithOpenAIMaxRetries(n int) OpenAIOption {
	return func(r *OpenAIRefiner) {
		if n >= 0 {
			r.maxRetries = n
		}
	}
}

// WithOpenAIRetryDelays sets the base and max delays for exponential backoff.
func WithOpenAIRetryDelays(base, max time.Duration) OpenAIOption {
	return func(r *OpenAIRefiner) {
		if base > 0 {
			r.baseDelay = base
		}
		if max > 0 {
			r.maxDelay = max
		}
	}
}

// WithOpenAIRateLimitDelay sets the fixed pause before each request.
// Each concurrent worker paces its own calls; use WithOpenAIRateLimiter
// for an aggregate bound instead.
func WithOpenAIRateLimitDelay(d time.Duration) OpenAIOption {
	return func(r *OpenAIRefiner) {
		if d >= 0 {
			r.pace.delay = d
		}
	}
}

// WithOpenAIRateLimiter replaces the fixed per-call pause with a shared
// limiter bounding the aggregate request rate across all workers.
func WithOpenAIRateLimiter(l *rate.Limiter) OpenAIOption {
	return func(r *OpenAIRefiner) {
		r.pace.limiter = l
	}
}

// withChatCompleter sets a custom chat completer (for testing).
func withChatCompleter(cc chatCompleter) OpenAIOption {
	return func(r *OpenAIRefiner) {
		r.client = cc
	}
}

// NewOpenAIRefiner creates an OpenAIRefiner with the given client.
func NewOpenAIRefiner(client *openai.Client, opts ...OpenAIOption) *OpenAIRefiner {
	r := &OpenAIRefiner{
		client:          client,
		model:           defaultOpenAIModel,
		maxOutputTokens: defaultOpenAIMaxOutputTokens,
		maxRetries:      defaultOpenAIMaxRetries,
		baseDelay:       defaultOpenAIBaseDelay,
		maxDelay:        defaultOpenAIMaxDelay,
		pace:            pacer{delay: defaultRateLimitDelay},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RefineChunk sends one chunk through the chat completion API.
// The pacing pause is applied before the request; transient errors are
// retried with exponential backoff.
func (r *OpenAIRefiner) RefineChunk(ctx context.Context, chunkText, systemPrompt, userTemplate string) (string, error) {
	if err := r.pace.wait(ctx); err != nil {
		return "", err
	}

	userPrompt := strings.ReplaceAll(userTemplate, prompt.Placeholder, chunkText)

	req := openai.ChatCompletionRequest{
		Model:               r.model,
		MaxCompletionTokens: r.maxOutputTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		Temperature: 0, // Deterministic output for reproducibility
	}

	schedule := apierr.Backoff{
		Retries: r.maxRetries,
		Base:    r.baseDelay,
		Cap:     r.maxDelay,
	}

	return apierr.Do(ctx, schedule, isRetryableError, func() (string, error) {
		resp, err := r.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", classifyOpenAIError(err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no choices returned: %w", apierr.ErrInvalidResponse)
		}
		return resp.Choices[0].Message.Content, nil
	})
}

// classifyOpenAIError maps OpenAI API errors to apierr sentinels.
// Uses errors.As for robust error type checking instead of string matching.
func classifyOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrRateLimit)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrAuthFailed)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrTimeout)
		case http.StatusBadRequest:
			if isContextLengthMessage(apiErr.Message) {
				return fmt.Errorf("API rejected: %w", apierr.ErrContextTooLong)
			}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	// Fallback: some errors arrive untyped.
	if isContextLengthMessage(err.Error()) {
		return fmt.Errorf("API rejected: %w", apierr.ErrContextTooLong)
	}

	return err
}

// isRetryableError determines if an error is transient and should be retried.
func isRetryableError(err error) bool {
	if errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrTimeout) ||
		errors.Is(err, apierr.ErrServer) {
		return true
	}

	// Server errors (5xx) are retryable.
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}
