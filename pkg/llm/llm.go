// Package llm sends serializer prompts to a hosted LLM and returns the text
// it generates.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Sentinel errors for generation calls.
var (
	// ErrMissingAPIKey indicates no credentials were configured for the provider.
	ErrMissingAPIKey = errors.New("no API key configured")

	// ErrUnknownProvider indicates the provider name is not supported.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnauthorized indicates the provider rejected the credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the request was rate limited.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates the provider returned a server error.
	ErrUnavailable = errors.New("service unavailable")

	// ErrEmptyResponse indicates the provider returned no choices or content blocks.
	ErrEmptyResponse = errors.New("empty response")
)

// Error wraps a failed provider call with context.
type Error struct {
	Provider   string
	Op         string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Request is one generation call.
type Request struct {
	System string
	Prompt string
}

// Response is the generated text plus the usage the provider reported.
// Token counts are zero when the provider omitted them.
type Response struct {
	Text         string
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// Client generates text from a prompt.
type Client interface {
	// Provider returns the provider identifier ("openai", "anthropic").
	Provider() string

	// Model returns the LLM model requests are sent to.
	Model() string

	// Generate sends req and returns the generated text.
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Credentials authenticate against a provider.
type Credentials struct {
	APIKey  string
	BaseURL string
}

// Options tune generation requests.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// envKeys lists the conventional API key variables per provider.
var envKeys = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// ResolveCredentials fills an empty API key from the provider's conventional
// environment variable.
func ResolveCredentials(provider string, creds Credentials) Credentials {
	if creds.APIKey == "" {
		if name, ok := envKeys[provider]; ok {
			creds.APIKey = os.Getenv(name)
		}
	}
	return creds
}

// New returns a client for the named provider. It fails with
// ErrMissingAPIKey before any request is made when no key is set.
func New(provider string, creds Credentials, opts Options) (Client, error) {
	if _, ok := envKeys[provider]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if creds.APIKey == "" {
		return nil, fmt.Errorf("%s: %w (set llm.api_key or %s)", provider, ErrMissingAPIKey, envKeys[provider])
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	switch provider {
	case "anthropic":
		return newAnthropic(creds, opts, httpClient), nil
	default:
		return newOpenAI(creds, opts, httpClient), nil
	}
}

// statusError maps an HTTP status to a sentinel error.
func statusError(provider string, status int, body []byte) error {
	var base error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		base = ErrUnauthorized
	case status == http.StatusTooManyRequests:
		base = ErrRateLimited
	case status >= 500:
		base = ErrUnavailable
	default:
		base = errors.New("request rejected")
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300] + "..."
	}
	if msg != "" {
		base = fmt.Errorf("%w: %s", base, msg)
	}
	return &Error{Provider: provider, Op: "generate", StatusCode: status, Err: base}
}

// StripFences removes a surrounding markdown code fence, which models
// sometimes add despite being told not to.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return text
	}
	lines = lines[1:]
	if last := strings.TrimSpace(lines[len(lines)-1]); last == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n") + "\n"
}
