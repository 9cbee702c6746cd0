package notify

import (
	"context"
	"log/slog"
)

// RunEvent summarizes one finished generation run.
type RunEvent struct {
	RunID        string  `json:"run_id"`
	Provider     string  `json:"provider"`
	LLMModel     string  `json:"llm_model"`
	Models       int     `json:"models"`
	Written      int     `json:"written"`
	Empty        int     `json:"empty"`
	Failed       int     `json:"failed"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	Canceled     bool    `json:"canceled,omitempty"`
}

// Notifier delivers run events to external systems.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers an event. Implementations must be safe for concurrent use.
	Send(ctx context.Context, event RunEvent) error
}

// Broadcast sends the event to every notifier. Delivery failures are logged
// and never returned.
func Broadcast(ctx context.Context, logger *slog.Logger, notifiers []Notifier, event RunEvent) {
	for _, n := range notifiers {
		if err := n.Send(ctx, event); err != nil {
			logger.Warn("notification failed", "notifier", n.Name(), "run_id", event.RunID, "error", err)
			continue
		}
		logger.Debug("notification sent", "notifier", n.Name(), "run_id", event.RunID)
	}
}
