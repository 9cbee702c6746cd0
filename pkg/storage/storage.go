package storage

import (
	"context"

	"github.com/ogulcanaydogan/autoapi/pkg/model"
)

// Storage persists the history of serializer generations.
type Storage interface {
	// Record persists a single generation attempt.
	Record(ctx context.Context, record *model.GenerationRecord) error

	// Query retrieves records matching the filter, newest first.
	Query(ctx context.Context, filter model.HistoryFilter) ([]model.GenerationRecord, error)

	// Summarize returns totals for the records matching the filter.
	Summarize(ctx context.Context, filter model.HistoryFilter) (*model.HistorySummary, error)

	// Close releases resources.
	Close() error
}
