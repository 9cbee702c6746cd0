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

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

type openAI struct {
	baseURL string
	apiKey  string
	opts    Options
	client  *http.Client
}

func newOpenAI(creds Credentials, opts Options, client *http.Client) *openAI {
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &openAI{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  creds.APIKey,
		opts:    opts,
		client:  client,
	}
}

func (o *openAI) Provider() string { return "openai" }
func (o *openAI) Model() string    { return o.opts.Model }

func (o *openAI) Generate(ctx context.Context, req Request) (*Response, error) {
	apiReq := openAIRequest{
		Model:       o.opts.Model,
		Temperature: o.opts.Temperature,
		MaxTokens:   o.opts.MaxTokens,
	}
	if req.System != "" {
		apiReq.Messages = append(apiReq.Messages, openAIMessage{Role: "system", Content: req.System})
	}
	apiReq.Messages = append(apiReq.Messages, openAIMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal openai request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create openai request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, &Error{Provider: "openai", Op: "generate", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Provider: "openai", Op: "read response", StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("openai", resp.StatusCode, respBody)
	}

	var apiResp openAIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, &Error{Provider: "openai", Op: "decode response", StatusCode: resp.StatusCode, Err: err}
	}
	if len(apiResp.Choices) == 0 {
		return nil, &Error{Provider: "openai", Op: "generate", Err: ErrEmptyResponse}
	}

	return &Response{
		Text:         StripFences(apiResp.Choices[0].Message.Content),
		Model:        apiResp.Model,
		InputTokens:  apiResp.Usage.PromptTokens,
		OutputTokens: apiResp.Usage.CompletionTokens,
	}, nil
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
}

type openAIChoice struct {
	Message openAIMessage `json:"message"`
}

type openAIUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}
