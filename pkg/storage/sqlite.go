package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ogulcanaydogan/autoapi/pkg/model"

	_ "modernc.org/sqlite"
)

const recordColumns = "id, run_id, app, model, provider, llm_model, status, input_tokens, output_tokens, cost_usd, file_path, error, created_at"

// SQLite implements the Storage interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Record(ctx context.Context, record *model.GenerationRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generations (`+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.RunID, record.App, record.Model,
		record.Provider, record.LLMModel, string(record.Status),
		record.InputTokens, record.OutputTokens, record.CostUSD,
		record.FilePath, record.Error, record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert generation record: %w", err)
	}
	return nil
}

func (s *SQLite) Query(ctx context.Context, filter model.HistoryFilter) ([]model.GenerationRecord, error) {
	query := "SELECT " + recordColumns + " FROM generations"
	where, args := buildWhereClause(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var records []model.GenerationRecord
	for rows.Next() {
		var r model.GenerationRecord
		var status string
		if err := rows.Scan(&r.ID, &r.RunID, &r.App, &r.Model, &r.Provider, &r.LLMModel, &status,
			&r.InputTokens, &r.OutputTokens, &r.CostUSD, &r.FilePath, &r.Error, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan generation row: %w", err)
		}
		r.Status = model.GenerationStatus(status)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLite) Summarize(ctx context.Context, filter model.HistoryFilter) (*model.HistorySummary, error) {
	query := `SELECT
		COUNT(*),
		COUNT(DISTINCT run_id),
		COALESCE(SUM(input_tokens), 0),
		COALESCE(SUM(output_tokens), 0),
		COALESCE(SUM(cost_usd), 0)
	FROM generations`
	where, args := buildWhereClause(filter)
	if where != "" {
		query += " WHERE " + where
	}

	summary := &model.HistorySummary{}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&summary.Records,
		&summary.Runs,
		&summary.TotalInputTokens,
		&summary.TotalOutputTokens,
		&summary.TotalCostUSD,
	)
	if err != nil {
		return nil, fmt.Errorf("summarize generations: %w", err)
	}

	summary.ByStatus, err = s.countByStatus(ctx, where, args)
	if err != nil {
		return nil, err
	}

	summary.ByApp, err = s.costByApp(ctx, where, args)
	if err != nil {
		return nil, err
	}

	return summary, nil
}

func (s *SQLite) countByStatus(ctx context.Context, where string, args []any) (map[model.GenerationStatus]int64, error) {
	query := "SELECT status, COUNT(*) FROM generations"
	if where != "" {
		query += " WHERE " + where
	}
	query += " GROUP BY status"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	result := make(map[model.GenerationStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		result[model.GenerationStatus(status)] = n
	}
	return result, rows.Err()
}

func (s *SQLite) costByApp(ctx context.Context, where string, args []any) (map[string]float64, error) {
	query := "SELECT app, COALESCE(SUM(cost_usd), 0) FROM generations"
	if where != "" {
		query += " WHERE " + where
	}
	query += " GROUP BY app"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cost by app: %w", err)
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var app string
		var total float64
		if err := rows.Scan(&app, &total); err != nil {
			return nil, fmt.Errorf("scan app cost: %w", err)
		}
		result[app] = total
	}
	return result, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// buildWhereClause constructs a SQL WHERE clause from a HistoryFilter.
func buildWhereClause(filter model.HistoryFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.RunID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, filter.RunID)
	}
	if filter.App != "" {
		conditions = append(conditions, "app = ?")
		args = append(args, filter.App)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if !filter.StartTime.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.StartTime)
	}
	if !filter.EndTime.IsZero() {
		conditions = append(conditions, "created_at < ?")
		args = append(args, filter.EndTime)
	}

	return strings.Join(conditions, " AND "), args
}
