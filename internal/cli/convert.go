package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/alnah/go-mdrefine/internal/config"
	"github.com/alnah/go-mdrefine/internal/prompt"
)

// defaultAIExtensions lists the extensions refined by AI unless
// AI_SUPPORTED_EXTENSIONS overrides them.
const defaultAIExtensions = ".xlsx,.xls,.xlsm"

// officeTempPrefix marks Office lock/temp files that must be skipped.
const officeTempPrefix = "~$"

// convertOptions holds validated options for the convert command.
type convertOptions struct {
	inputPath      string
	output         string
	recursive      bool
	ai             bool
	provider       Provider
	model          string
	maxTokens      int
	rateLimitDelay time.Duration
	rateLimit      float64
	parallel       int
	promptsPath    string

	// limiter bounds the aggregate request rate across all chunk
	// workers and all files of a recursive run. Nil means each worker
	// paces itself with rateLimitDelay instead.
	limiter *rate.Limiter
}

// ConvertCmd creates the convert command (turn documents into Markdown).
// The env parameter provides injectable dependencies for testing.
func ConvertCmd(env *Env) *cobra.Command {
	var (
		output         string
		recursive      bool
		ai             bool
		provider       string
		model          string
		maxTokens      int
		rateLimitDelay time.Duration
		rateLimit      float64
		parallel       int
		promptsPath    string
	)

	cmd := &cobra.Command{
		Use:   "convert <path>",
		Short: "Convert documents to Markdown",
		Long: `Convert documents to Markdown.

Supported formats: Excel workbooks (xlsx, xls, xlsm), PDF, and Markdown.
With --recursive, converts every supported file under a directory,
mirroring its structure in the output directory.

With --ai, the converted Markdown is reformatted by an LLM: the document
is split into token-bounded chunks, chunks are refined in parallel, and
any chunk that fails keeps its original text. AI refinement applies only
to extensions listed in AI_SUPPORTED_EXTENSIONS (default: xlsx, xls, xlsm).

Refinement uses DeepSeek by default, or OpenAI with --provider openai.`,
		Example: `  mdrefine convert report.xlsx
  mdrefine convert report.xlsx --ai -o report.md
  mdrefine convert manual.pdf -o manual.md
  mdrefine convert ./docs --recursive --ai --provider openai
  mdrefine convert notes.xlsx --ai --max-tokens 4000 --rate-limit-delay 2s`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseConvertOptions(args[0], output, recursive, ai, provider,
				model, maxTokens, rateLimitDelay, rateLimit, parallel, promptsPath)
			if err != nil {
				return err
			}
			return runConvert(cmd, env, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path, or output directory with --recursive")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Convert every supported file under a directory")
	cmd.Flags().BoolVar(&ai, "ai", false, "Reformat the Markdown with an LLM")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider for refinement: deepseek, openai (default: deepseek)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (default: provider default)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Request token ceiling for refinement")
	cmd.Flags().DurationVar(&rateLimitDelay, "rate-limit-delay", 0, "Pause before each refinement API call")
	cmd.Flags().Float64Var(&rateLimit, "rate-limit", 0, "Cap refinement calls per second across all workers (0 = per-worker pacing)")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "Max concurrent chunk requests")
	cmd.Flags().StringVar(&promptsPath, "prompts", "", "Path to a YAML file with custom refinement prompts")

	return cmd
}

// parseConvertOptions validates and parses CLI inputs into convertOptions.
// All parsing happens at the CLI boundary.
func parseConvertOptions(inputPath, output string, recursive, ai bool, provider,
	model string, maxTokens int, rateLimitDelay time.Duration, rateLimit float64,
	parallel int, promptsPath string) (convertOptions, error) {

	// Parse provider (optional, defaults handled in refineContent)
	var parsedProvider Provider
	if provider != "" {
		var err error
		parsedProvider, err = ParseProvider(provider)
		if err != nil {
			return convertOptions{}, err
		}
	}

	if maxTokens < 0 {
		return convertOptions{}, fmt.Errorf("max-tokens must be positive, got %d", maxTokens)
	}
	if rateLimitDelay < 0 {
		return convertOptions{}, fmt.Errorf("rate-limit-delay must be positive, got %s", rateLimitDelay)
	}
	if rateLimit < 0 {
		return convertOptions{}, fmt.Errorf("rate-limit must be positive, got %g", rateLimit)
	}
	if parallel < 0 {
		return convertOptions{}, fmt.Errorf("parallel must be positive, got %d", parallel)
	}

	return convertOptions{
		inputPath:      inputPath,
		output:         output,
		recursive:      recursive,
		ai:             ai,
		provider:       parsedProvider,
		model:          model,
		maxTokens:      maxTokens,
		rateLimitDelay: rateLimitDelay,
		rateLimit:      rateLimit,
		parallel:       parallel,
		promptsPath:    promptsPath,
	}, nil
}

// runConvert executes the convert command with validated options.
func runConvert(cmd *cobra.Command, env *Env, opts convertOptions) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	// 1. Input exists and matches the mode
	info, err := os.Stat(opts.inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, opts.inputPath)
		}
		return fmt.Errorf("cannot access input: %w", err)
	}
	if opts.recursive && !info.IsDir() {
		return fmt.Errorf("%w: %s (remove --recursive for single files)", ErrNotDirectory, opts.inputPath)
	}
	if !opts.recursive && info.IsDir() {
		return fmt.Errorf("%s is a directory (use --recursive)", opts.inputPath)
	}

	// 2. Load config for defaults
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	applyConfigDefaults(&opts, cfg)

	// 3. Custom prompts
	var prompts *prompt.Set
	if opts.promptsPath != "" {
		prompts, err = prompt.LoadFile(opts.promptsPath)
		if err != nil {
			return fmt.Errorf("failed to load prompts: %w", err)
		}
	}

	aiExts := aiExtensions(env)

	// One limiter for the whole run: chunk workers of every file
	// share the same request budget.
	if opts.rateLimit > 0 {
		opts.limiter = rate.NewLimiter(rate.Limit(opts.rateLimit), 1)
	}

	// === SINGLE FILE ===

	if !opts.recursive {
		if strings.HasPrefix(filepath.Base(opts.inputPath), officeTempPrefix) {
			return fmt.Errorf("%s is a temporary Office file", opts.inputPath)
		}

		defaultOutput := deriveOutputPath(filepath.Base(opts.inputPath))
		output := config.ResolveOutputPath(opts.output, cfg.OutputDir, defaultOutput)
		warnNonMarkdownExtension(env.Stderr, output)

		if err := convertOne(ctx, env, opts, prompts, aiExts, opts.inputPath, output); err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "Done: %s\n", output)
		return nil
	}

	// === DIRECTORY TREE ===

	outputDir := opts.output
	if outputDir == "" {
		// Default: sibling directory named <input>_md.
		abs, err := filepath.Abs(opts.inputPath)
		if err != nil {
			return fmt.Errorf("cannot resolve input directory: %w", err)
		}
		outputDir = filepath.Clean(abs) + "_md"
	} else if cfg.OutputDir != "" && !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(cfg.OutputDir, outputDir)
	}

	if err := os.MkdirAll(outputDir, 0750); err != nil { // #nosec G301 -- user output dir
		return fmt.Errorf("cannot create output directory: %w", err)
	}

	return convertTree(ctx, env, opts, prompts, aiExts, opts.inputPath, outputDir)
}

// applyConfigDefaults fills options not set on the command line from
// the loaded configuration. Flags always win.
func applyConfigDefaults(opts *convertOptions, cfg config.Config) {
	if opts.provider.IsZero() && cfg.Provider != "" {
		if p, err := ParseProvider(cfg.Provider); err == nil {
			opts.provider = p
		}
	}
	if opts.model == "" {
		opts.model = cfg.Model
	}
}

// aiExtensions returns the set of extensions eligible for AI
// refinement, keyed by lowercase extension with leading dot.
func aiExtensions(env *Env) map[string]bool {
	list := env.Getenv(EnvAIExtensions)
	if list == "" {
		list = defaultAIExtensions
	}
	exts := make(map[string]bool)
	for _, ext := range strings.Split(list, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}
	return exts
}

// convertOne converts a single file to Markdown, optionally refines it
// with an LLM, and writes the result to outputPath.
func convertOne(ctx context.Context, env *Env, opts convertOptions, prompts *prompt.Set,
	aiExts map[string]bool, inputPath, outputPath string) error {

	conv, err := env.Converters.ForPath(inputPath)
	if err != nil {
		return fmt.Errorf("%w (supported: %s)", err, strings.Join(env.Converters.Extensions(), ", "))
	}

	fmt.Fprintf(env.Stderr, "Converting %s...\n", inputPath)
	content, err := conv.Convert(inputPath)
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", inputPath, err)
	}

	ext := strings.ToLower(filepath.Ext(inputPath))
	if opts.ai {
		if aiExts[ext] {
			fmt.Fprintf(env.Stderr, "Refining %s with %s...\n", inputPath, opts.provider.OrDefault())

			refined, report, err := refineContent(ctx, env, content, ext, RefineOptions{
				Provider:       opts.provider,
				Model:          opts.model,
				MaxTokens:      opts.maxTokens,
				RateLimitDelay: opts.rateLimitDelay,
				RateLimiter:    opts.limiter,
				Parallel:       opts.parallel,
				Prompts:        prompts,
				OnChunkError: func(index int, err error) {
					fmt.Fprintf(env.Stderr, "  Warning: chunk %d kept original text: %v\n", index, err)
				},
			})
			if err != nil {
				return err
			}
			if report.Degraded > 0 {
				fmt.Fprintf(env.Stderr, "  %d of %d chunks kept their original text\n",
					report.Degraded, len(report.Results))
			}
			if report.Canceled {
				fmt.Fprintf(env.Stderr, "  Interrupted: unprocessed chunks kept their original text\n")
			}
			content = refined
		} else {
			fmt.Fprintf(env.Stderr, "Skipping AI refinement for %s (extension %s not enabled)\n", inputPath, ext)
		}
	}

	return writeFileAtomic(outputPath, content)
}
