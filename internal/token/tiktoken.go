package token

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// defaultEncoding is used when no encoding is registered for a model.
const defaultEncoding = "cl100k_base"

// Compile-time interface compliance check.
var _ Estimator = (*TiktokenEstimator)(nil)

// TiktokenEstimator counts tokens exactly using the tiktoken BPE encoding
// registered for a model. Encoding resolution happens once at construction;
// failure there is a configuration error, Count itself never fails for
// valid Unicode text.
type TiktokenEstimator struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenEstimator creates an estimator for the given model.
// If no encoding is registered for the model, it falls back to cl100k_base.
// An error is returned only if the fallback encoding itself cannot be
// loaded, which indicates a broken installation rather than bad input.
func NewTiktokenEstimator(model string) (*TiktokenEstimator, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(defaultEncoding)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s encoding: %w", defaultEncoding, err)
		}
	}
	return &TiktokenEstimator{encoding: enc}, nil
}

// Count returns the exact token count of text under the configured encoding.
func (e *TiktokenEstimator) Count(text string) int {
	return len(e.encoding.Encode(text, nil, nil))
}
