package convert

import (
	"fmt"
	"os"
)

// MarkdownConverter passes Markdown files through unchanged.
type MarkdownConverter struct{}

var _ Converter = MarkdownConverter{}

// Convert reads the file and returns its contents as-is.
func (MarkdownConverter) Convert(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read markdown file: %w", err)
	}
	return string(data), nil
}
