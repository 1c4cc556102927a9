package refine

// Exports for black-box tests in refine_test.

// WithChatCompleter exposes the chat completion seam for tests.
var WithChatCompleter = withChatCompleter

// WithDeepSeekHTTPClient exposes the HTTP client seam for tests.
var WithDeepSeekHTTPClient = withDeepSeekHTTPClient
