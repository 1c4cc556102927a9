package cli

import "errors"

// Environment variables consulted by CLI commands.
const (
	// EnvOpenAIAPIKey holds the OpenAI API key.
	EnvOpenAIAPIKey = "OPENAI_API_KEY"

	// EnvDeepSeekAPIKey holds the DeepSeek API key.
	EnvDeepSeekAPIKey = "DEEPSEEK_API_KEY"

	// EnvAIExtensions overrides the comma-separated list of file
	// extensions eligible for AI refinement.
	EnvAIExtensions = "AI_SUPPORTED_EXTENSIONS"
)

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrAPIKeyMissing indicates OPENAI_API_KEY environment variable is not set.
	ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

	// ErrDeepSeekKeyMissing indicates DEEPSEEK_API_KEY environment variable is not set.
	ErrDeepSeekKeyMissing = errors.New("DEEPSEEK_API_KEY environment variable not set")

	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrNotDirectory indicates --recursive was used on a non-directory input.
	ErrNotDirectory = errors.New("input is not a directory")

	// ErrOutputExists indicates the output file already exists.
	ErrOutputExists = errors.New("output file already exists")

	// ErrUsage marks command-line misuse (bad flags, wrong argument
	// count, unknown subcommand) so main can map it to a usage exit
	// code with errors.Is instead of matching error message text.
	ErrUsage = errors.New("invalid usage")
)
