package tokenizer

import (
	"fmt"
	"strings"

	"github.com/tiktoken-go/tokenizer"
)

// Chat framing overhead, in tokens, added around each message and before
// the assistant reply.
const (
	messageOverhead = 4
	replyPriming    = 2
)

// encodingForModel maps OpenAI model names to tiktoken encodings.
var encodingForModel = map[string]tokenizer.Encoding{
	"gpt-4o":        tokenizer.O200kBase,
	"gpt-4o-mini":   tokenizer.O200kBase,
	"gpt-4.1":       tokenizer.O200kBase,
	"gpt-4.1-mini":  tokenizer.O200kBase,
	"o1":            tokenizer.O200kBase,
	"o1-mini":       tokenizer.O200kBase,
	"o3-mini":       tokenizer.O200kBase,
	"gpt-4-turbo":   tokenizer.Cl100kBase,
	"gpt-4":         tokenizer.Cl100kBase,
	"gpt-3.5-turbo": tokenizer.Cl100kBase,
}

// Counter measures text in tokens for one provider and model.
// OpenAI models are counted with tiktoken; every other provider falls back
// to a four-characters-per-token estimate.
type Counter struct {
	provider string
	model    string
	codec    tokenizer.Codec
}

// NewCounter returns a counter for the given provider and model.
func NewCounter(provider, model string) (*Counter, error) {
	c := &Counter{provider: provider, model: model}
	if provider != "openai" {
		return c, nil
	}

	enc, ok := encodingForModel[model]
	if !ok {
		enc = tokenizer.Cl100kBase
	}
	codec, err := tokenizer.Get(enc)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", enc, err)
	}
	c.codec = codec
	return c, nil
}

// Exact reports whether counts come from the model's real encoding.
func (c *Counter) Exact() bool {
	return c.codec != nil
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int64 {
	if c.codec == nil {
		return estimateTokens(text)
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return estimateTokens(text)
	}
	return int64(len(ids))
}

// CountChat returns the prompt size of a system plus user exchange,
// including chat framing overhead.
func (c *Counter) CountChat(system, user string) int64 {
	var total int64
	for _, content := range []string{system, user} {
		if content == "" {
			continue
		}
		total += messageOverhead + c.Count(content)
	}
	return total + replyPriming
}

// estimateTokens uses character-based estimation (4 chars per token on average).
func estimateTokens(text string) int64 {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return 0
	}
	return int64((len(text) + 3) / 4)
}
