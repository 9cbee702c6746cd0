package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
	anthropicMaxTokens      = 1024
)

type anthropic struct {
	baseURL string
	apiKey  string
	opts    Options
	client  *http.Client
}

func newAnthropic(creds Credentials, opts Options, client *http.Client) *anthropic {
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &anthropic{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  creds.APIKey,
		opts:    opts,
		client:  client,
	}
}

func (a *anthropic) Provider() string { return "anthropic" }
func (a *anthropic) Model() string    { return a.opts.Model }

func (a *anthropic) Generate(ctx context.Context, req Request) (*Response, error) {
	// max_tokens is mandatory for the messages API.
	maxTokens := a.opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = anthropicMaxTokens
	}

	apiReq := anthropicRequest{
		Model:       a.opts.Model,
		System:      req.System,
		MaxTokens:   maxTokens,
		Temperature: a.opts.Temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal anthropic request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create anthropic request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, &Error{Provider: "anthropic", Op: "generate", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Provider: "anthropic", Op: "read response", StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("anthropic", resp.StatusCode, respBody)
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, &Error{Provider: "anthropic", Op: "decode response", StatusCode: resp.StatusCode, Err: err}
	}

	var text strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if len(apiResp.Content) == 0 {
		return nil, &Error{Provider: "anthropic", Op: "generate", Err: ErrEmptyResponse}
	}

	return &Response{
		Text:         StripFences(text.String()),
		Model:        apiResp.Model,
		InputTokens:  apiResp.Usage.InputTokens,
		OutputTokens: apiResp.Usage.OutputTokens,
	}, nil
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string                  `json:"model"`
	Content []anthropicContentBlock `json:"content"`
	Usage   anthropicUsage          `json:"usage"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}
