package model

import "github.com/shopspring/decimal"

// FieldDescriptor is a snapshot of one model field taken at scan time.
type FieldDescriptor struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// ModelDescriptor describes a data model and its serializable fields.
type ModelDescriptor struct {
	Name   string            `json:"name" yaml:"name"`
	Fields []FieldDescriptor `json:"fields" yaml:"fields"`
}

// AppDescriptor describes an installed application and its models.
type AppDescriptor struct {
	Label  string            `json:"label" yaml:"label"`
	Name   string            `json:"name,omitempty" yaml:"name,omitempty"` // Python module path
	Path   string            `json:"path,omitempty" yaml:"path,omitempty"` // App directory on disk
	Models []ModelDescriptor `json:"models" yaml:"models"`
}

// Pair is a single (app, model) unit of work.
type Pair struct {
	App   AppDescriptor
	Model ModelDescriptor
}

// Key returns the "app.Model" identifier of the pair.
func (p Pair) Key() string {
	return p.App.Label + "." + p.Model.Name
}

// FilterConfig narrows the discovered apps and models for one run.
type FilterConfig struct {
	Include     []string // nil or empty means every app
	Exclude     []string
	SingleApp   string
	SingleModel string
}

// ModelEstimate is the per-model line of a BudgetReport.
type ModelEstimate struct {
	App          string          `json:"app"`
	Model        string          `json:"model"`
	Fields       int             `json:"fields"`
	InputTokens  int64           `json:"input_tokens"`
	OutputTokens int64           `json:"output_tokens"`
	Cost         decimal.Decimal `json:"cost"`
}

// Key returns the "app.Model" identifier of the estimate.
func (e ModelEstimate) Key() string {
	return e.App + "." + e.Model
}

// BudgetReport holds the token and cost projection for a set of pairs.
type BudgetReport struct {
	Provider     string          `json:"provider"`
	LLMModel     string          `json:"llm_model"`
	Models       int             `json:"models"`
	InputTokens  int64           `json:"input_tokens"`
	OutputTokens int64           `json:"output_tokens"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Breakdown    []ModelEstimate `json:"breakdown"`
}

// TotalTokens returns input plus output tokens.
func (r BudgetReport) TotalTokens() int64 {
	return r.InputTokens + r.OutputTokens
}

// ByModel returns the breakdown keyed by "app.Model". When the same key
// appears more than once the last estimate wins.
func (r BudgetReport) ByModel() map[string]ModelEstimate {
	out := make(map[string]ModelEstimate, len(r.Breakdown))
	for _, e := range r.Breakdown {
		out[e.Key()] = e
	}
	return out
}
