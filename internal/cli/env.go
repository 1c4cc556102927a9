package cli

import (
	"io"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/alnah/go-mdrefine/internal/config"
	"github.com/alnah/go-mdrefine/internal/convert"
	"github.com/alnah/go-mdrefine/internal/refine"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stderr io.Writer
	Getenv func(string) string

	// Factories for domain objects
	ConfigLoader   ConfigLoader
	RefinerFactory RefinerFactory
	Converters     *convert.Registry
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// RefinerOptions carries per-invocation refiner settings parsed from
// CLI flags. Zero values mean "use the provider's default".
type RefinerOptions struct {
	Model          string
	RateLimitDelay time.Duration
	// RateLimiter, when set, bounds the aggregate request rate across
	// all workers sharing the refiner instead of per-call pacing.
	RateLimiter *rate.Limiter
}

// RefinerFactory creates chunk refiners for AI Markdown formatting.
type RefinerFactory interface {
	NewRefiner(p Provider, apiKey string, opts RefinerOptions) (refine.ChunkRefiner, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithRefinerFactory sets the refiner factory.
func WithRefinerFactory(f RefinerFactory) EnvOption {
	return func(e *Env) {
		e.RefinerFactory = f
	}
}

// WithConverters sets the converter registry.
func WithConverters(r *convert.Registry) EnvOption {
	return func(e *Env) {
		e.Converters = r
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stderr:         os.Stderr,
		Getenv:         os.Getenv,
		ConfigLoader:   &defaultConfigLoader{},
		RefinerFactory: &defaultRefinerFactory{},
		Converters:     convert.NewRegistry(),
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultRefinerFactory implements RefinerFactory using the refine package.
type defaultRefinerFactory struct{}

func (defaultRefinerFactory) NewRefiner(p Provider, apiKey string, opts RefinerOptions) (refine.ChunkRefiner, error) {
	if p.IsOpenAI() {
		var oo []refine.OpenAIOption
		if opts.Model != "" {
			oo = append(oo, refine.WithOpenAIModel(opts.Model))
		}
		if opts.RateLimitDelay > 0 {
			oo = append(oo, refine.WithOpenAIRateLimitDelay(opts.RateLimitDelay))
		}
		if opts.RateLimiter != nil {
			oo = append(oo, refine.WithOpenAIRateLimiter(opts.RateLimiter))
		}
		return refine.NewOpenAIRefiner(openai.NewClient(apiKey), oo...), nil
	}

	var do []refine.DeepSeekOption
	if opts.Model != "" {
		do = append(do, refine.WithDeepSeekModel(opts.Model))
	}
	if opts.RateLimitDelay > 0 {
		do = append(do, refine.WithDeepSeekRateLimitDelay(opts.RateLimitDelay))
	}
	if opts.RateLimiter != nil {
		do = append(do, refine.WithDeepSeekRateLimiter(opts.RateLimiter))
	}
	return refine.NewDeepSeekRefiner(apiKey, do...)
}

// Compile-time interface verification.
var (
	_ ConfigLoader   = (*defaultConfigLoader)(nil)
	_ RefinerFactory = (*defaultRefinerFactory)(nil)
)
