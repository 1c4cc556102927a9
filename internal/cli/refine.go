package cli

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/alnah/go-mdrefine/internal/prompt"
	"github.com/alnah/go-mdrefine/internal/refine"
	"github.com/alnah/go-mdrefine/internal/reflow"
	"github.com/alnah/go-mdrefine/internal/token"
)

// RefineOptions configures AI Markdown refinement.
type RefineOptions struct {
	// Provider (optional): zero value defaults to DeepSeek
	Provider Provider
	// Model (optional): provider default when empty
	Model string
	// MaxTokens (optional): request token ceiling, formatter default when 0
	MaxTokens int
	// RateLimitDelay (optional): pause before each API call
	RateLimitDelay time.Duration
	// RateLimiter (optional): shared cap on the aggregate request rate;
	// overrides per-worker RateLimitDelay pacing when set
	RateLimiter *rate.Limiter
	// Parallel (optional): max concurrent chunk requests
	Parallel int
	// Prompts (optional): custom prompt set, embedded defaults when nil
	Prompts *prompt.Set
	// OnChunkError is called for each chunk that keeps its original text
	OnChunkError func(index int, err error)
}

// refineContent reformats Markdown content using an LLM.
// Resolves the API key internally based on opts.Provider.
// ext selects the prompt pair; it is the source file's extension.
func refineContent(ctx context.Context, env *Env, content, ext string, opts RefineOptions) (string, reflow.Report, error) {
	// 1. Default provider to DeepSeek if not specified
	opts.Provider = opts.Provider.OrDefault()

	// 2. Resolve API key based on provider
	var apiKey string
	if opts.Provider.IsDeepSeek() {
		apiKey = env.Getenv(EnvDeepSeekAPIKey)
		if apiKey == "" {
			return "", reflow.Report{}, fmt.Errorf("%w (set it with: export %s=sk-...)", ErrDeepSeekKeyMissing, EnvDeepSeekAPIKey)
		}
	} else {
		apiKey = env.Getenv(EnvOpenAIAPIKey)
		if apiKey == "" {
			return "", reflow.Report{}, fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
		}
	}

	// 3. Create refiner through the injectable factory
	refiner, err := env.RefinerFactory.NewRefiner(opts.Provider, apiKey, RefinerOptions{
		Model:          opts.Model,
		RateLimitDelay: opts.RateLimitDelay,
		RateLimiter:    opts.RateLimiter,
	})
	if err != nil {
		return "", reflow.Report{}, err
	}

	// 4. Build the formatter
	var fo []refine.FormatterOption
	if opts.Prompts != nil {
		fo = append(fo, refine.WithPrompts(opts.Prompts))
	}
	if opts.MaxTokens > 0 {
		fo = append(fo, refine.WithMaxTokens(opts.MaxTokens))
	}
	if opts.Parallel > 0 {
		fo = append(fo, refine.WithMaxConcurrency(opts.Parallel))
	}
	if opts.OnChunkError != nil {
		fo = append(fo, refine.WithChunkErrorHandler(opts.OnChunkError))
	}
	// Exact token counting when a model name is known; the formatter
	// falls back to its heuristic estimator otherwise.
	if opts.Model != "" {
		if est, err := token.NewTiktokenEstimator(opts.Model); err == nil {
			fo = append(fo, refine.WithEstimator(est))
		}
	}

	formatter, err := refine.NewFormatter(refiner, fo...)
	if err != nil {
		return "", reflow.Report{}, err
	}

	// 5. Refine content
	return formatter.FormatMarkdown(ctx, content, ext)
}
