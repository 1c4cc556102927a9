package refine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alnah/go-mdrefine/internal/chunk"
	"github.com/alnah/go-mdrefine/internal/prompt"
	"github.com/alnah/go-mdrefine/internal/reflow"
	"github.com/alnah/go-mdrefine/internal/token"
)

// Formatter defaults.
const (
	// defaultMaxTokens is the per-request token allocation: prompt
	// overhead plus chunk content must fit within it.
	defaultMaxTokens = 3000

	// budgetSafetyMargin is reserved on top of the measured prompt
	// overhead to absorb estimator imprecision and message framing.
	budgetSafetyMargin = 500
)

// ErrBudgetExhausted indicates that prompt overhead plus the safety margin
// leaves no token budget for chunk content.
var ErrBudgetExhausted = errors.New("no token budget left for content")

// Formatter normalizes a markdown document by splitting it into
// token-bounded chunks and sending each through a ChunkRefiner with
// bounded parallelism. Per-chunk failures degrade to the original chunk
// text; only configuration misuse prevents output entirely.
type Formatter struct {
	refiner        ChunkRefiner
	prompts        *prompt.Set
	estimator      token.Estimator
	maxTokens      int
	maxConcurrency int
	chunkTimeout   time.Duration
	onChunkError   func(index int, err error)
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithPrompts sets the prompt configuration.
func WithPrompts(s *prompt.Set) FormatterOption {
	return func(f *Formatter) {
		if s != nil {
			f.prompts = s
		}
	}
}

// WithEstimator sets the token-cost estimator used for budget derivation
// and splitting.
func WithEstimator(est token.Estimator) FormatterOption {
	return func(f *Formatter) {
		if est != nil {
			f.estimator = est
		}
	}
}

// WithMaxTokens sets the per-request token allocation.
func WithMaxTokens(max int) FormatterOption {
	return func(f *Formatter) {
		if max > 0 {
			f.maxTokens = max
		}
	}
}

// WithMaxConcurrency bounds the number of chunks refined in parallel.
func WithMaxConcurrency(n int) FormatterOption {
	return func(f *Formatter) {
		f.maxConcurrency = n
	}
}

// WithChunkTimeout bounds each refinement call individually.
func WithChunkTimeout(d time.Duration) FormatterOption {
	return func(f *Formatter) {
		f.chunkTimeout = d
	}
}

// WithChunkErrorHandler sets a callback invoked for each degraded chunk.
func WithChunkErrorHandler(fn func(index int, err error)) FormatterOption {
	return func(f *Formatter) {
		f.onChunkError = fn
	}
}

// NewFormatter creates a Formatter around a ChunkRefiner.
// Defaults: built-in prompts, heuristic estimator, 3000 token allocation,
// concurrency 4.
func NewFormatter(refiner ChunkRefiner, opts ...FormatterOption) (*Formatter, error) {
	if refiner == nil {
		return nil, errors.New("chunk refiner is required")
	}

	f := &Formatter{
		refiner:        refiner,
		prompts:        prompt.Default(),
		estimator:      token.NewHeuristicEstimator(),
		maxTokens:      defaultMaxTokens,
		maxConcurrency: reflow.DefaultMaxConcurrency,
	}
	for _, opt := range opts {
		opt(f)
	}

	// Validate concurrency eagerly so misconfiguration fails at
	// construction, not per document.
	if f.maxConcurrency <= 0 {
		return nil, fmt.Errorf("got %d: %w", f.maxConcurrency, reflow.ErrInvalidConcurrency)
	}

	return f, nil
}

// FormatMarkdown refines content, selecting the prompt for the source file
// extension. It returns the reassembled document and a Report describing
// which chunks were refined and which degraded to their original text.
//
// Errors are configuration-level only (exhausted budget, invalid split
// input): once splitting succeeds, a document is always produced.
func (f *Formatter) FormatMarkdown(ctx context.Context, content, ext string) (string, reflow.Report, error) {
	p := f.prompts.ForExtension(ext)

	budget, err := f.contentBudget(p)
	if err != nil {
		return "", reflow.Report{}, err
	}

	chunks, err := chunk.Split(content, budget, f.estimator)
	if err != nil {
		return "", reflow.Report{}, err
	}

	orch, err := reflow.New(
		reflow.WithMaxConcurrency(f.maxConcurrency),
		reflow.WithChunkTimeout(f.chunkTimeout),
		reflow.WithErrorHandler(f.onChunkError),
	)
	if err != nil {
		return "", reflow.Report{}, err
	}

	transform := func(ctx context.Context, c chunk.Chunk) (string, error) {
		return f.refiner.RefineChunk(ctx, c.Text, p.System, p.User)
	}

	text, report := orch.Run(ctx, chunks, transform)
	return text, report, nil
}

// contentBudget derives the token budget available for chunk content:
// the request allocation minus system prompt cost, user template overhead,
// and the safety margin.
func (f *Formatter) contentBudget(p prompt.Prompt) (int, error) {
	overhead := f.estimator.Count(p.System) + f.estimator.Count(p.UserShell()) + budgetSafetyMargin
	budget := f.maxTokens - overhead
	if budget <= 0 {
		return 0, fmt.Errorf("allocation %d, prompt overhead %d: %w",
			f.maxTokens, overhead, ErrBudgetExhausted)
	}
	return budget, nil
}
