package cli_test

// Shared mocks and helpers for CLI command tests.
//
// Commands are exercised through the cobra commands returned by the
// *Cmd constructors, with dependencies injected via Env. No network
// calls are made: the refiner factory is stubbed.

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alnah/go-mdrefine/internal/cli"
	"github.com/alnah/go-mdrefine/internal/config"
	"github.com/alnah/go-mdrefine/internal/refine"
)

// mockConfigLoader returns a fixed Config without touching the filesystem.
type mockConfigLoader struct {
	cfg config.Config
	err error
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	return m.cfg, m.err
}

// refinerFunc adapts a function to refine.ChunkRefiner.
type refinerFunc func(ctx context.Context, chunkText, systemPrompt, userTemplate string) (string, error)

func (f refinerFunc) RefineChunk(ctx context.Context, chunkText, systemPrompt, userTemplate string) (string, error) {
	return f(ctx, chunkText, systemPrompt, userTemplate)
}

// stubRefinerFactory returns a fixed refiner and records the last request.
type stubRefinerFactory struct {
	refiner      refine.ChunkRefiner
	err          error
	lastProvider cli.Provider
	lastAPIKey   string
	lastOpts     cli.RefinerOptions
}

func (s *stubRefinerFactory) NewRefiner(p cli.Provider, apiKey string, opts cli.RefinerOptions) (refine.ChunkRefiner, error) {
	s.lastProvider = p
	s.lastAPIKey = apiKey
	s.lastOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.refiner, nil
}

// uppercaseRefiner refines chunks by uppercasing them.
func uppercaseRefiner() refine.ChunkRefiner {
	return refinerFunc(func(_ context.Context, chunkText, _, _ string) (string, error) {
		return strings.ToUpper(chunkText), nil
	})
}

// testEnv builds an Env wired for tests: captured stderr, stubbed
// environment variables, an in-memory config, and the given refiner
// factory (nil keeps the default).
func testEnv(t *testing.T, vars map[string]string, factory cli.RefinerFactory) (*cli.Env, *bytes.Buffer) {
	t.Helper()

	var stderr bytes.Buffer
	opts := []cli.EnvOption{
		cli.WithStderr(&stderr),
		cli.WithGetenv(func(k string) string { return vars[k] }),
		cli.WithConfigLoader(&mockConfigLoader{}),
	}
	if factory != nil {
		opts = append(opts, cli.WithRefinerFactory(factory))
	}
	return cli.NewEnv(opts...), &stderr
}
