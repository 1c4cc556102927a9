// Package convert turns source documents into Markdown text.
//
// Each supported format has a Converter; the Registry picks one by
// file extension. Converters produce plain Markdown suitable for
// token-bounded splitting and AI refinement downstream.
package convert

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedFormat indicates no converter is registered for the
// file's extension.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoContent indicates the source file contained nothing
// convertible to Markdown.
var ErrNoContent = errors.New("no content extracted")

// Converter turns a single source file into Markdown text.
type Converter interface {
	Convert(path string) (string, error)
}

// Registry maps file extensions to converters.
type Registry struct {
	byExt map[string]Converter
}

// NewRegistry returns a registry with the built-in converters:
// Excel workbooks (xlsx and xlsm via OOXML, xls via BIFF), PDF
// documents, and Markdown passthrough.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Converter)}
	excel := NewExcelConverter()
	for _, ext := range []string{"xlsx", "xlsm"} {
		r.Register(ext, excel)
	}
	r.Register("xls", NewLegacyExcelConverter())
	r.Register("pdf", NewPDFConverter())
	r.Register("md", MarkdownConverter{})
	return r
}

// Register associates an extension (with or without leading dot,
// case-insensitive) with a converter, replacing any previous entry.
func (r *Registry) Register(ext string, c Converter) {
	r.byExt[normalizeExt(ext)] = c
}

// ForPath returns the converter registered for the path's extension.
func (r *Registry) ForPath(path string) (Converter, error) {
	ext := normalizeExt(filepath.Ext(path))
	c, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return c, nil
}

// Supports reports whether a converter is registered for the path's
// extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[normalizeExt(filepath.Ext(path))]
	return ok
}

// Extensions returns the registered extensions, sorted, without dots.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
