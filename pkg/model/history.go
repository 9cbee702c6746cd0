package model

import "time"

// GenerationStatus is the outcome of generating one serializer.
type GenerationStatus string

const (
	StatusWritten GenerationStatus = "written" // Code appended to the app module
	StatusEmpty   GenerationStatus = "empty"   // Provider returned no code
	StatusFailed  GenerationStatus = "failed"  // Provider call or file write failed
)

// GenerationRecord is one persisted generation attempt.
type GenerationRecord struct {
	ID           string           `json:"id" db:"id"`
	RunID        string           `json:"run_id" db:"run_id"`
	App          string           `json:"app" db:"app"`
	Model        string           `json:"model" db:"model"`
	Provider     string           `json:"provider" db:"provider"`
	LLMModel     string           `json:"llm_model" db:"llm_model"`
	Status       GenerationStatus `json:"status" db:"status"`
	InputTokens  int64            `json:"input_tokens" db:"input_tokens"`
	OutputTokens int64            `json:"output_tokens" db:"output_tokens"`
	CostUSD      float64          `json:"cost_usd" db:"cost_usd"`
	FilePath     string           `json:"file_path,omitempty" db:"file_path"`
	Error        string           `json:"error,omitempty" db:"error"`
	Timestamp    time.Time        `json:"timestamp" db:"timestamp"`
}

// HistoryFilter controls which generation records are returned.
type HistoryFilter struct {
	RunID     string
	App       string
	Status    GenerationStatus
	StartTime time.Time
	EndTime   time.Time
	Limit     int
}

// HistorySummary holds aggregated generation statistics.
type HistorySummary struct {
	Records           int64                      `json:"records"`
	Runs              int64                      `json:"runs"`
	TotalInputTokens  int64                      `json:"total_input_tokens"`
	TotalOutputTokens int64                      `json:"total_output_tokens"`
	TotalCostUSD      float64                    `json:"total_cost_usd"`
	ByStatus          map[GenerationStatus]int64 `json:"by_status,omitempty"`
	ByApp             map[string]float64         `json:"by_app,omitempty"`
}
