// Package token provides pluggable token-cost estimation for text spans.
// The chunk splitter calls the estimator once per candidate span, so
// implementations must be cheap and deterministic for a given model.
package token

// Estimator maps a text span to an integer token cost.
// Count must return 0 for empty input and a non-negative value otherwise.
type Estimator interface {
	Count(text string) int
}

// EstimatorFunc adapts a plain function to the Estimator interface.
type EstimatorFunc func(text string) int

// Count implements Estimator.
func (f EstimatorFunc) Count(text string) int {
	return f(text)
}
