// Package refine sends markdown chunks through a remote text-completion
// service (OpenAI or DeepSeek) to normalize their formatting. The
// Formatter ties the pipeline together: prompt selection, budget
// derivation, splitting, and parallel reflow.
package refine

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ChunkRefiner transforms one markdown chunk using a system instruction
// and a user instruction template carrying the {content} placeholder.
// Implementations render the template, pace their own calls, and must be
// safe for concurrent use.
type ChunkRefiner interface {
	RefineChunk(ctx context.Context, chunkText, systemPrompt, userTemplate string) (string, error)
}

// isContextLengthMessage reports whether an API error message indicates
// the request exceeded the model's context window.
func isContextLengthMessage(msg string) bool {
	return strings.Contains(msg, "context_length") ||
		strings.Contains(msg, "maximum context length")
}

// ErrEmptyAPIKey indicates that the API key was not provided.
var ErrEmptyAPIKey = errors.New("API key is required")

// defaultRateLimitDelay is the pause applied before each API request.
const defaultRateLimitDelay = 1 * time.Second

// pacer applies the pre-request pacing discipline. By default each worker
// sleeps rateLimitDelay before its own call; with a shared rate.Limiter
// the aggregate request rate is bounded across all workers instead.
type pacer struct {
	delay   time.Duration
	limiter *rate.Limiter
}

// wait blocks until the next request may be issued or ctx is done.
func (p pacer) wait(ctx context.Context) error {
	if p.limiter != nil {
		return p.limiter.Wait(ctx)
	}
	if p.delay <= 0 {
		return nil
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
