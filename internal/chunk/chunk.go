// Package chunk partitions Markdown documents into ordered, token-bounded
// chunks suitable for remote text-completion calls. Splitting prefers
// structural boundaries: heading sections first, blank-line paragraphs for
// sections over budget, and single lines as a last resort.
package chunk

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-mdrefine/internal/token"
)

// ErrInvalidBudget indicates a non-positive token budget.
var ErrInvalidBudget = errors.New("token budget must be positive")

// ErrNilEstimator indicates that no token estimator was supplied.
var ErrNilEstimator = errors.New("token estimator is required")

// Chunk is one ordered, 0-indexed piece of a split document.
// Index determines the final output ordering after parallel processing.
// EstimatedTokens is the cost recorded at split time and is advisory only.
type Chunk struct {
	Index           int
	Text            string
	EstimatedTokens int
}

// headingLine matches a Markdown ATX heading: 1-6 '#' followed by whitespace.
var headingLine = regexp.MustCompile(`^#{1,6}\s`)

// blankLine matches one or more blank lines (paragraph boundaries).
var blankLine = regexp.MustCompile(`\n[ \t]*\n+`)

// Split partitions a Markdown document into ordered chunks at or under
// budget tokens each. Units fitting the budget are accumulated greedily;
// a unit over budget is decomposed one level further (section to
// paragraphs, paragraph to lines). A single line over budget is emitted
// as its own oversized chunk rather than being cut mid-line: the remote
// API must tolerate the occasional oversized chunk.
//
// Concatenating the returned chunks in index order reproduces the
// document's content up to whitespace normalization at split boundaries.
// An empty or blank document yields an empty slice.
func Split(document string, budget int, est token.Estimator) ([]Chunk, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("budget %d: %w", budget, ErrInvalidBudget)
	}
	if est == nil {
		return nil, ErrNilEstimator
	}
	if strings.TrimSpace(document) == "" {
		return nil, nil
	}

	return pack(decompose(document, budget, est), budget), nil
}

// unit is a span that is indivisible at its level, together with the
// separator used when appending it after existing chunk content and its
// token cost under the active estimator.
type unit struct {
	text string
	sep  string
	cost int
}

// decompose flattens the document into an ordered unit stream, applying
// the three-level fallback: sections that fit are single units, oversized
// sections break into paragraphs, oversized paragraphs break into lines.
func decompose(document string, budget int, est token.Estimator) []unit {
	var units []unit

	for _, section := range splitSections(document) {
		cost := est.Count(section)
		if cost <= budget {
			units = append(units, unit{text: section, sep: "\n\n", cost: cost})
			continue
		}

		for _, para := range blankLine.Split(section, -1) {
			para = strings.TrimRight(para, " \t\n")
			if strings.TrimSpace(para) == "" {
				continue
			}
			cost := est.Count(para)
			if cost <= budget {
				units = append(units, unit{text: para, sep: "\n\n", cost: cost})
				continue
			}

			// Line level: lines are never split further. A line over
			// budget becomes its own oversized chunk during packing.
			for _, line := range strings.Split(para, "\n") {
				units = append(units, unit{text: line, sep: "\n", cost: est.Count(line)})
			}
		}
	}

	return units
}

// splitSections splits the document immediately before every heading line.
// Content before the first heading, if any, forms a leading section.
// Sections that are empty after trimming are discarded.
func splitSections(document string) []string {
	lines := strings.Split(document, "\n")

	var sections []string
	var current []string

	flush := func() {
		s := strings.TrimSpace(strings.Join(current, "\n"))
		if s != "" {
			sections = append(sections, s)
		}
		current = current[:0]
	}

	for _, line := range lines {
		if headingLine.MatchString(line) {
			flush()
		}
		current = append(current, line)
	}
	flush()

	return sections
}

// pack accumulates units into budgeted bins in order. The running chunk is
// flushed when adding the next unit would exceed the budget; a unit whose
// own cost exceeds the budget therefore ends up alone in its bin.
func pack(units []unit, budget int) []Chunk {
	var chunks []Chunk
	var current strings.Builder
	currentCost := 0

	flush := func() {
		text := strings.TrimSpace(current.String())
		if text != "" {
			chunks = append(chunks, Chunk{
				Index:           len(chunks),
				Text:            text,
				EstimatedTokens: currentCost,
			})
		}
		current.Reset()
		currentCost = 0
	}

	for _, u := range units {
		if currentCost+u.cost > budget && current.Len() > 0 {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(u.sep)
		}
		current.WriteString(u.text)
		currentCost += u.cost
	}
	flush()

	return chunks
}
