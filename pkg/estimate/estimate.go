// Package estimate projects token usage and cost for serializer generation
// without calling any LLM provider.
package estimate

import (
	"github.com/shopspring/decimal"

	"github.com/ogulcanaydogan/autoapi/pkg/model"
)

// Default heuristic constants. They are not derived from any tokenizer and
// are meant to be overridden from configuration.
const (
	DefaultPromptOverheadTokens = 200
	DefaultPerFieldTokens       = 8
	DefaultOutputBaseTokens     = 150
	DefaultFieldThreshold       = 10
	DefaultOutputPerExtraField  = 12
)

var million = decimal.NewFromInt(1_000_000)

// Params are the per-model token heuristics.
type Params struct {
	PromptOverheadTokens int64 `mapstructure:"prompt_overhead_tokens"`
	PerFieldTokens       int64 `mapstructure:"per_field_tokens"`
	OutputBaseTokens     int64 `mapstructure:"output_base_tokens"`
	FieldThreshold       int64 `mapstructure:"field_threshold"`
	OutputPerExtraField  int64 `mapstructure:"output_per_extra_field"`
}

// DefaultParams returns the built-in heuristics.
func DefaultParams() Params {
	return Params{
		PromptOverheadTokens: DefaultPromptOverheadTokens,
		PerFieldTokens:       DefaultPerFieldTokens,
		OutputBaseTokens:     DefaultOutputBaseTokens,
		FieldThreshold:       DefaultFieldThreshold,
		OutputPerExtraField:  DefaultOutputPerExtraField,
	}
}

// InputTokens grows linearly with the number of fields listed in the prompt.
func (p Params) InputTokens(fields int) int64 {
	return p.PromptOverheadTokens + int64(fields)*p.PerFieldTokens
}

// OutputTokens is constant up to FieldThreshold fields and linear above it.
func (p Params) OutputTokens(fields int) int64 {
	out := p.OutputBaseTokens
	if extra := int64(fields) - p.FieldThreshold; extra > 0 {
		out += extra * p.OutputPerExtraField
	}
	return out
}

// Pricing is the per-million token price of one LLM model.
type Pricing struct {
	Provider         string
	Model            string
	InputPerMillion  float64
	OutputPerMillion float64
}

// Cost returns the exact, unrounded USD cost of the given token counts.
func (p Pricing) Cost(inputTokens, outputTokens int64) decimal.Decimal {
	in := decimal.NewFromInt(inputTokens).Mul(decimal.NewFromFloat(p.InputPerMillion))
	out := decimal.NewFromInt(outputTokens).Mul(decimal.NewFromFloat(p.OutputPerMillion))
	return in.Add(out).Div(million)
}

// Estimate builds a BudgetReport for pairs. It is pure: identical inputs
// always produce identical reports. Per-model costs stay exact; only the
// aggregate cost is rounded to cents.
func Estimate(pairs []model.Pair, pricing Pricing, params Params) model.BudgetReport {
	report := model.BudgetReport{
		Provider:  pricing.Provider,
		LLMModel:  pricing.Model,
		Models:    len(pairs),
		Breakdown: make([]model.ModelEstimate, 0, len(pairs)),
	}

	total := decimal.Zero
	for _, pair := range pairs {
		fields := len(pair.Model.Fields)
		in := params.InputTokens(fields)
		out := params.OutputTokens(fields)
		cost := pricing.Cost(in, out)

		report.InputTokens += in
		report.OutputTokens += out
		total = total.Add(cost)

		report.Breakdown = append(report.Breakdown, model.ModelEstimate{
			App:          pair.App.Label,
			Model:        pair.Model.Name,
			Fields:       fields,
			InputTokens:  in,
			OutputTokens: out,
			Cost:         cost,
		})
	}
	report.TotalCost = total.Round(2)

	return report
}
