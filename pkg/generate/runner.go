// Package generate turns (app, model) pairs into serializer code by calling
// an LLM once per pair and appending the result to the app's module.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/ogulcanaydogan/autoapi/pkg/estimate"
	"github.com/ogulcanaydogan/autoapi/pkg/llm"
	"github.com/ogulcanaydogan/autoapi/pkg/model"
	"github.com/ogulcanaydogan/autoapi/pkg/notify"
	"github.com/ogulcanaydogan/autoapi/pkg/prompt"
	"github.com/ogulcanaydogan/autoapi/pkg/storage"
	"github.com/ogulcanaydogan/autoapi/pkg/tokenizer"
	"github.com/ogulcanaydogan/autoapi/pkg/writer"
)

// Outcome is the result of generating one pair.
type Outcome struct {
	Pair         model.Pair
	Status       model.GenerationStatus
	Path         string
	InputTokens  int64
	OutputTokens int64
	Cost         decimal.Decimal
	Err          error
}

// Summary aggregates the outcomes of one run.
type Summary struct {
	RunID        string
	Outcomes     []Outcome
	Written      int
	Empty        int
	Failed       int
	InputTokens  int64
	OutputTokens int64
	Cost         decimal.Decimal
	Canceled     bool
}

func (s *Summary) add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Status {
	case model.StatusWritten:
		s.Written++
	case model.StatusEmpty:
		s.Empty++
	default:
		s.Failed++
	}
	s.InputTokens += o.InputTokens
	s.OutputTokens += o.OutputTokens
	s.Cost = s.Cost.Add(o.Cost)
}

// Event converts the summary into a notification payload.
func (s *Summary) Event(provider, llmModel string) notify.RunEvent {
	return notify.RunEvent{
		RunID:        s.RunID,
		Provider:     provider,
		LLMModel:     llmModel,
		Models:       len(s.Outcomes),
		Written:      s.Written,
		Empty:        s.Empty,
		Failed:       s.Failed,
		InputTokens:  s.InputTokens,
		OutputTokens: s.OutputTokens,
		CostUSD:      s.Cost.InexactFloat64(),
		Canceled:     s.Canceled,
	}
}

// Config wires a Runner. Client and Writer are required.
type Config struct {
	Client    llm.Client
	Writer    *writer.Writer
	Pricing   estimate.Pricing
	Store     storage.Storage    // optional history store
	Counter   *tokenizer.Counter // optional; fills usage the provider omitted
	Limiter   *rate.Limiter      // optional pacing of LLM calls
	Notifiers []notify.Notifier
	Logger    *slog.Logger

	// OnStart is called before pair i (zero-based) of n is generated.
	OnStart func(i, n int, p model.Pair)
	// OnDone is called after each pair with its outcome.
	OnDone func(o Outcome)
}

// Runner generates serializers sequentially.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

// NewRunner creates a runner from cfg.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run generates every pair in order. A failed pair is recorded and the run
// moves on; only context cancellation stops it early, in which case the
// partial summary is returned along with the context error.
func (r *Runner) Run(ctx context.Context, pairs []model.Pair) (*Summary, error) {
	summary := &Summary{RunID: uuid.New().String()}
	r.logger.Info("generation started",
		"run_id", summary.RunID,
		"provider", r.cfg.Client.Provider(),
		"llm_model", r.cfg.Client.Model(),
		"models", len(pairs),
	)

	// History and notifications outlive a canceled run.
	detached := context.WithoutCancel(ctx)

	for i, p := range pairs {
		if ctx.Err() != nil {
			summary.Canceled = true
			break
		}
		if r.cfg.OnStart != nil {
			r.cfg.OnStart(i, len(pairs), p)
		}

		o := r.generate(ctx, p)
		summary.add(o)
		r.record(detached, summary.RunID, o)

		if r.cfg.OnDone != nil {
			r.cfg.OnDone(o)
		}
	}
	if ctx.Err() != nil {
		summary.Canceled = true
	}

	r.logger.Info("generation finished",
		"run_id", summary.RunID,
		"written", summary.Written,
		"empty", summary.Empty,
		"failed", summary.Failed,
		"cost_usd", summary.Cost.StringFixed(6),
		"canceled", summary.Canceled,
	)
	notify.Broadcast(detached, r.logger, r.cfg.Notifiers,
		summary.Event(r.cfg.Client.Provider(), r.cfg.Client.Model()))

	if summary.Canceled {
		return summary, fmt.Errorf("generation interrupted: %w", ctx.Err())
	}
	return summary, nil
}

func (r *Runner) generate(ctx context.Context, p model.Pair) Outcome {
	o := Outcome{Pair: p, Status: model.StatusFailed}
	text := prompt.ForPair(p)

	if r.cfg.Limiter != nil {
		if err := r.cfg.Limiter.Wait(ctx); err != nil {
			o.Err = fmt.Errorf("wait for rate limiter: %w", err)
			return o
		}
	}

	resp, err := r.cfg.Client.Generate(ctx, llm.Request{System: prompt.System, Prompt: text})
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			o.Status = model.StatusEmpty
			r.logger.Warn("empty response", "model", p.Key(), "error", err)
			return o
		}
		o.Err = err
		r.logger.Error("generation failed", "model", p.Key(), "error", err)
		return o
	}

	o.InputTokens, o.OutputTokens = resp.InputTokens, resp.OutputTokens
	if r.cfg.Counter != nil {
		if o.InputTokens == 0 {
			o.InputTokens = r.cfg.Counter.CountChat(prompt.System, text)
		}
		if o.OutputTokens == 0 {
			o.OutputTokens = r.cfg.Counter.Count(resp.Text)
		}
	}
	o.Cost = r.cfg.Pricing.Cost(o.InputTokens, o.OutputTokens)

	if strings.TrimSpace(resp.Text) == "" {
		o.Status = model.StatusEmpty
		r.logger.Warn("empty response", "model", p.Key())
		return o
	}

	path, err := r.cfg.Writer.Append(p.App, resp.Text)
	if err != nil {
		o.Err = err
		r.logger.Error("write serializer failed", "model", p.Key(), "error", err)
		return o
	}

	o.Status = model.StatusWritten
	o.Path = path
	r.logger.Debug("serializer written", "model", p.Key(), "path", path,
		"input_tokens", o.InputTokens, "output_tokens", o.OutputTokens)
	return o
}

func (r *Runner) record(ctx context.Context, runID string, o Outcome) {
	if r.cfg.Store == nil {
		return
	}

	rec := &model.GenerationRecord{
		RunID:        runID,
		App:          o.Pair.App.Label,
		Model:        o.Pair.Model.Name,
		Provider:     r.cfg.Client.Provider(),
		LLMModel:     r.cfg.Client.Model(),
		Status:       o.Status,
		InputTokens:  o.InputTokens,
		OutputTokens: o.OutputTokens,
		CostUSD:      o.Cost.InexactFloat64(),
		FilePath:     o.Path,
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	if err := r.cfg.Store.Record(ctx, rec); err != nil {
		r.logger.Error("record generation", "model", o.Pair.Key(), "error", err)
	}
}
