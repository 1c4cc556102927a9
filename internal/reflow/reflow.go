// Package reflow executes a per-chunk transformation concurrently over an
// ordered chunk sequence and reassembles the results in original order.
// A single chunk's failure never aborts the document: the failed chunk's
// original text is substituted and the degradation is recorded in the
// Report.
package reflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-mdrefine/internal/chunk"
)

// DefaultMaxConcurrency is the number of transform invocations in flight
// when no explicit bound is configured.
const DefaultMaxConcurrency = 4

// ErrInvalidConcurrency indicates a non-positive concurrency bound.
var ErrInvalidConcurrency = errors.New("max concurrency must be positive")

// Transform produces the transformed text for one chunk.
// Implementations must be safe for concurrent invocation.
type Transform func(ctx context.Context, c chunk.Chunk) (string, error)

// Result pairs a chunk index with its transformed text.
// Transformed is false when the original text was substituted because the
// transform failed, timed out, or was never started due to cancellation.
type Result struct {
	Index       int
	Text        string
	Transformed bool
}

// Report describes the outcome of one Run. It lets callers distinguish a
// fully transformed document from one that was partially degraded.
type Report struct {
	Results  []Result
	Degraded int  // number of chunks carrying their original text
	Canceled bool // context was canceled before all chunks were issued
}

// FullyTransformed reports whether every chunk was transformed.
func (r Report) FullyTransformed() bool {
	return r.Degraded == 0 && !r.Canceled
}

// Orchestrator runs transforms with bounded concurrency.
type Orchestrator struct {
	maxConcurrency int
	chunkTimeout   time.Duration
	onError        func(index int, err error)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxConcurrency bounds the number of transform invocations in flight.
func WithMaxConcurrency(n int) Option {
	return func(o *Orchestrator) {
		o.maxConcurrency = n
	}
}

// WithChunkTimeout bounds each transform invocation individually.
// A timed-out chunk is treated like any other transform failure.
// Zero disables the per-chunk bound.
func WithChunkTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.chunkTimeout = d
	}
}

// WithErrorHandler sets a callback invoked for each failed chunk.
// The callback may be invoked concurrently from multiple workers.
func WithErrorHandler(fn func(index int, err error)) Option {
	return func(o *Orchestrator) {
		o.onError = fn
	}
}

// New creates an Orchestrator. A concurrency bound of zero or less set via
// WithMaxConcurrency is a configuration error and fails fast.
func New(opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{maxConcurrency: DefaultMaxConcurrency}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxConcurrency <= 0 {
		return nil, fmt.Errorf("got %d: %w", o.maxConcurrency, ErrInvalidConcurrency)
	}
	return o, nil
}

// Run transforms every chunk with at most maxConcurrency invocations in
// flight and joins the results in index order with blank-line separators.
//
// Failure isolation: a transform error substitutes that chunk's original
// text; processing of sibling chunks continues. Cancelling ctx stops
// issuing new invocations and lets in-flight ones finish; chunks never
// started keep their original text and the Report is marked canceled.
// Completed chunks are never dropped or reordered.
func (o *Orchestrator) Run(ctx context.Context, chunks []chunk.Chunk, transform Transform) (string, Report) {
	if len(chunks) == 0 {
		return "", Report{}
	}

	// One slot per index: workers write disjoint slots, no lock needed.
	results := make([]Result, len(chunks))

	sem := make(chan struct{}, o.maxConcurrency)
	var g errgroup.Group

	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			// Cancellation check before acquiring a slot: already-running
			// transforms finish, new ones are not issued.
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = Result{Index: c.Index, Text: c.Text}
				return nil
			}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				results[i] = Result{Index: c.Index, Text: c.Text}
				return nil
			}

			results[i] = o.transformOne(ctx, c, transform)
			return nil
		})
	}

	// Workers never return errors; Wait is for completion only.
	_ = g.Wait()

	report := Report{Results: results, Canceled: ctx.Err() != nil}
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
		if !r.Transformed {
			report.Degraded++
		}
	}

	return strings.Join(texts, "\n\n"), report
}

// transformOne invokes the transform for a single chunk, applying the
// per-chunk timeout and substituting the original text on failure.
func (o *Orchestrator) transformOne(ctx context.Context, c chunk.Chunk, transform Transform) Result {
	if o.chunkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.chunkTimeout)
		defer cancel()
	}

	text, err := transform(ctx, c)
	if err != nil {
		if o.onError != nil {
			o.onError(c.Index, err)
		}
		return Result{Index: c.Index, Text: c.Text}
	}

	return Result{Index: c.Index, Text: text, Transformed: true}
}
