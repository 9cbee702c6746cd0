package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SlackNotifier posts run summaries to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	channel    string
	client     *http.Client
}

// NewSlackNotifier creates a Slack webhook notifier.
func NewSlackNotifier(webhookURL, channel string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		channel:    channel,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

func (s *SlackNotifier) Send(ctx context.Context, event RunEvent) error {
	color := "#36a64f" // green
	title := "autoapi: serializers generated"
	switch {
	case event.Canceled:
		color = "#ff9900" // orange
		title = "autoapi: run canceled"
	case event.Failed > 0 && event.Written == 0:
		color = "#ff0000" // red
		title = "autoapi: generation failed"
	case event.Failed > 0 || event.Empty > 0:
		color = "#ff9900"
		title = "autoapi: generation finished with problems"
	}

	payload := slackPayload{
		Channel: s.channel,
		Attachments: []slackAttachment{
			{
				Color: color,
				Title: title,
				Fields: []slackField{
					{Title: "Run", Value: event.RunID, Short: true},
					{Title: "LLM", Value: event.Provider + "/" + event.LLMModel, Short: true},
					{Title: "Written", Value: fmt.Sprintf("%d of %d", event.Written, event.Models), Short: true},
					{Title: "Empty / Failed", Value: fmt.Sprintf("%d / %d", event.Empty, event.Failed), Short: true},
					{Title: "Tokens", Value: fmt.Sprintf("%d in, %d out", event.InputTokens, event.OutputTokens), Short: true},
					{Title: "Cost", Value: fmt.Sprintf("$%.4f", event.CostUSD), Short: true},
				},
				Footer: "autoapi",
				Ts:     time.Now().Unix(),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send slack notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}
	return nil
}

type slackPayload struct {
	Channel     string            `json:"channel,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Fields []slackField `json:"fields"`
	Footer string       `json:"footer"`
	Ts     int64        `json:"ts"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}
