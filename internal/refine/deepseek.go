package refine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alnah/go-mdrefine/internal/apierr"
	"github.com/alnah/go-mdrefine/internal/prompt"
)

// DeepSeek API configuration.
const (
	defaultDeepSeekBaseURL = "https://api.deepseek.com"

	defaultDeepSeekModel           = "deepseek-chat"
	defaultDeepSeekMaxOutputTokens = 8192

	defaultDeepSeekMaxRetries  = 3
	defaultDeepSeekBaseDelay   = 1 * time.Second
	defaultDeepSeekMaxDelay    = 30 * time.Second
	defaultDeepSeekHTTPTimeout = 5 * time.Minute

	// Response size limit to prevent OOM from malformed responses (10MB).
	maxResponseSize = 10 * 1024 * 1024
)

// httpDoer abstracts the HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Compile-time interface compliance check.
var _ ChunkRefiner = (*DeepSeekRefiner)(nil)

// DeepSeekRefiner refines markdown chunks using DeepSeek's chat completion
// API. It paces each request and retries transient errors with exponential
// backoff.
type DeepSeekRefiner struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	maxRetries      int
	baseDelay       time.Duration
	maxDelay        time.Duration
	httpTimeout     time.Duration
	httpClient      httpDoer
	pace            pacer
}

// DeepSeekOption configures a DeepSeekRefiner.
type DeepSeekOption func(*DeepSeekRefiner)

// WithDeepSeekModel sets the completion model.
func WithDeepSeekModel(model string) DeepSeekOption {
	return func(r *DeepSeekRefiner) {
		if model != "" {
			r.model = model
		}
	}
}

// WithDeepSeekMaxOutputTokens sets the completion token ceiling.
func WithDeepSeekMaxOutputTokens(max int) DeepSeekOption {
	return func(r *DeepSeekRefiner) {
		if max > 0 {
			r.maxOutputTokens = max
		}
	}
}

// WithDeepSeekMaxRetries sets the maximum number of retry attempts.
func WithDeepSeekMaxRetries(n int) DeepSeekOption {
	return func(r *DeepSeekRefiner) {
		if n >= 0 {
			r.maxRetries = n
		}
	}
}

// WithDeepSeekRetryDelays sets the base and max delays for exponential backoff.
func WithDeepSeekRetryDelays(base, max time.Duration) DeepSeekOption {
	return func(r *DeepSeekRefiner) {
		if base > 0 {
			r.baseDelay = base
		}
		if max > 0 {
			r.maxDelay = max
		}
	}
}

// WithDeepSeekRateLimitDelay sets the fixed pause before each request.
func WithDeepSeekRateLimitDelay(d time.Duration) DeepSeekOption {
	return func(r *DeepSeekRefiner) {
		if d >= 0 {
			r.pace.delay = d
		}
	}
}

// WithDeepSeekRateLimiter replaces the fixed per-call pause with a shared
// limiter bounding the aggregate request rate across all workers.
func WithDeepSeekRateLimiter(l *rate.Limiter) DeepSeekOption {
	return func(r *DeepSeekRefiner) {
		r.pace.limiter = l
	}
}

// WithDeepSeekBaseURL sets a custom base URL (for testing or proxies).
func WithDeepSeekBaseURL(url string) DeepSeekOption {
	return func(r *DeepSeekRefiner) {
		r.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithDeepSeekHTTPTimeout sets the HTTP client timeout.
func WithDeepSeekHTTPTimeout(timeout time.Duration) DeepSeekOption {
	return func(r *DeepSeekRefiner) {
		if timeout > 0 {
			r.httpTimeout = timeout
		}
	}
}

// withDeepSeekHTTPClient sets a custom HTTP client (for testing).
func withDeepSeekHTTPClient(client httpDoer) DeepSeekOption {
	return func(r *DeepSeekRefiner) {
		r.httpClient = client
	}
}

// NewDeepSeekRefiner creates a DeepSeekRefiner.
// Returns ErrEmptyAPIKey if apiKey is empty.
func NewDeepSeekRefiner(apiKey string, opts ...DeepSeekOption) (*DeepSeekRefiner, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}

	r := &DeepSeekRefiner{
		apiKey:          apiKey,
		baseURL:         defaultDeepSeekBaseURL,
		model:           defaultDeepSeekModel,
		maxOutputTokens: defaultDeepSeekMaxOutputTokens,
		maxRetries:      defaultDeepSeekMaxRetries,
		baseDelay:       defaultDeepSeekBaseDelay,
		maxDelay:        defaultDeepSeekMaxDelay,
		httpTimeout:     defaultDeepSeekHTTPTimeout,
		pace:            pacer{delay: defaultRateLimitDelay},
	}
	for _, opt := range opts {
		opt(r)
	}
	// Create the HTTP client after options are applied (timeout may be customized).
	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: r.httpTimeout}
	}
	return r, nil
}

// RefineChunk sends one chunk through the DeepSeek chat completion API.
func (r *DeepSeekRefiner) RefineChunk(ctx context.Context, chunkText, systemPrompt, userTemplate string) (string, error) {
	if err := r.pace.wait(ctx); err != nil {
		return "", err
	}

	req := deepSeekRequest{
		Model:       r.model,
		MaxTokens:   r.maxOutputTokens,
		Temperature: 0, // Deterministic output
		Messages: []deepSeekMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: strings.ReplaceAll(userTemplate, prompt.Placeholder, chunkText)},
		},
	}

	schedule := apierr.Backoff{
		Retries: r.maxRetries,
		Base:    r.baseDelay,
		Cap:     r.maxDelay,
	}

	return apierr.Do(ctx, schedule, isRetryableError, func() (string, error) {
		resp, err := r.callAPI(ctx, req)
		if err != nil {
			return "", classifyDeepSeekError(err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no choices returned: %w", apierr.ErrInvalidResponse)
		}
		return resp.Choices[0].Message.Content, nil
	})
}

// deepSeekRequest is a DeepSeek chat completion request.
type deepSeekRequest struct {
	Model       string            `json:"model"`
	Messages    []deepSeekMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature float64           `json:"temperature"`
}

// deepSeekMessage is a message in the conversation.
type deepSeekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// deepSeekResponse is a DeepSeek chat completion response.
type deepSeekResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// deepSeekErrorResponse is an error payload from the DeepSeek API.
type deepSeekErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// callAPI issues one HTTP request to the DeepSeek API.
func (r *DeepSeekRefiner) callAPI(ctx context.Context, reqBody deepSeekRequest) (_ *deepSeekResponse, err error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := r.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	// Limit response size to prevent OOM from malformed responses.
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseDeepSeekError(resp.StatusCode, respBody)
	}

	var result deepSeekResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &result, nil
}

// parseDeepSeekError converts a non-200 response into a classified error.
func parseDeepSeekError(statusCode int, body []byte) error {
	msg := "unknown error"
	var errResp deepSeekErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", msg, apierr.ErrRateLimit)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w", msg, apierr.ErrAuthFailed)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("%s: %w", msg, apierr.ErrTimeout)
	case http.StatusBadRequest:
		if isContextLengthMessage(msg) {
			return fmt.Errorf("API rejected: %w", apierr.ErrContextTooLong)
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("HTTP %d: %s: %w", statusCode, msg, apierr.ErrServer)
	}

	return fmt.Errorf("DeepSeek API error (HTTP %d): %s", statusCode, msg)
}

// classifyDeepSeekError maps transport-level failures to apierr sentinels.
func classifyDeepSeekError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}
	return err
}
