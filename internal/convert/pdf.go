package convert

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFConverter extracts the plain text of each page and joins pages
// with blank lines. Layout is not reconstructed; the output is meant
// for downstream AI refinement, not faithful rendering.
type PDFConverter struct{}

// NewPDFConverter returns a converter for pdf documents.
func NewPDFConverter() *PDFConverter {
	return &PDFConverter{}
}

var _ Converter = (*PDFConverter)(nil)

var (
	runsOfSpaces = regexp.MustCompile(`[ \t]+`)
	runsOfBlanks = regexp.MustCompile(`\n{3,}`)
)

// Convert extracts text from the document at path. Pages that yield
// no text are skipped; ErrNoContent is returned when none do.
func (c *PDFConverter) Convert(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = cleanPageText(text); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoContent, path)
	}
	return strings.Join(pages, "\n\n") + "\n", nil
}

func cleanPageText(s string) string {
	s = runsOfSpaces.ReplaceAllString(s, " ")
	s = runsOfBlanks.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
