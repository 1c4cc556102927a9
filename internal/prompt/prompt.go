// Package prompt loads and selects the instruction pairs sent to the
// text-completion service. Prompts are keyed by source file extension;
// a built-in configuration ships with the binary and can be overridden
// by a YAML file.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Placeholder marks where the chunk content is inserted into a user prompt.
const Placeholder = "{content}"

// defaultKey is the prompt entry used when no extension-specific entry exists.
const defaultKey = "default"

// ErrNoDefault indicates a prompt configuration without a default entry.
var ErrNoDefault = errors.New("prompt configuration has no default entry")

//go:embed prompts.yaml
var builtinConfig []byte

// Prompt pairs a system instruction with a user instruction template.
// The user template contains the {content} placeholder.
type Prompt struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// RenderUser substitutes the chunk content into the user template.
func (p Prompt) RenderUser(content string) string {
	return strings.ReplaceAll(p.User, Placeholder, content)
}

// UserShell returns the user template with the placeholder removed.
// Its token cost is the fixed per-request overhead of the template,
// used when deriving the content budget.
func (p Prompt) UserShell() string {
	return strings.ReplaceAll(p.User, Placeholder, "")
}

// Set is a validated prompt configuration.
type Set struct {
	prompts map[string]Prompt
}

// Default returns the built-in prompt configuration.
// The embedded YAML is validated at startup; failure to parse it is a
// build defect, so Default panics rather than returning an error.
func Default() *Set {
	s, err := parse(builtinConfig)
	if err != nil {
		panic(fmt.Sprintf("embedded prompts.yaml is invalid: %v", err))
	}
	return s
}

// LoadFile reads a prompt configuration from a YAML file.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	s, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid prompts file %s: %w", path, err)
	}
	return s, nil
}

// parse decodes and validates a prompt configuration.
// A default entry is mandatory: it is the fallback for every extension
// without its own entry.
func parse(data []byte) (*Set, error) {
	var prompts map[string]Prompt
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if _, ok := prompts[defaultKey]; !ok {
		return nil, ErrNoDefault
	}
	return &Set{prompts: prompts}, nil
}

// excelExtensions are aliased to the "excel" prompt entry when present.
var excelExtensions = map[string]bool{
	"xlsx": true,
	"xls":  true,
	"xlsm": true,
}

// ForExtension selects the prompt for a source file extension.
// Lookup order: exact extension match, the "excel" entry for spreadsheet
// extensions, then the default entry. The leading dot and case of ext
// are ignored; an empty extension selects the default.
func (s *Set) ForExtension(ext string) Prompt {
	key := strings.ToLower(strings.TrimPrefix(ext, "."))

	if p, ok := s.prompts[key]; ok {
		return p
	}
	if excelExtensions[key] {
		if p, ok := s.prompts["excel"]; ok {
			return p
		}
	}
	return s.prompts[defaultKey]
}
