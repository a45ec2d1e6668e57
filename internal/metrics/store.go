package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ai-trip-planner/internal/llm"
)

// ExecutionMetric records one generation call made while planning a trip.
type ExecutionMetric struct {
	AgentName        string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Strategy         string
	Timestamp        time.Time
}

// Store persists execution metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore wraps an already migrated database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const insertMetric = `
INSERT INTO execution_metrics
    (agent_name, model, prompt_tokens, completion_tokens, latency_ms, strategy, timestamp)
VALUES (?, ?, ?, ?, ?, ?, ?)`

// Record saves a metric.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, insertMetric,
		m.AgentName, m.Model, m.PromptTokens, m.CompletionTokens, m.LatencyMS, m.Strategy, sqlTime(ts))
	if err != nil {
		return fmt.Errorf("failed to insert execution metric: %w", err)
	}
	return nil
}

// RecordMeta records a generation call. Calls that never reached a model
// (no tokens, no latency) are skipped.
func (s *Store) RecordMeta(ctx context.Context, meta llm.AgentMeta, strategy string) error {
	if meta.AgentName == "" {
		return nil
	}
	if meta.Usage.PromptTokens == 0 && meta.Usage.CompletionTokens == 0 && meta.Latency == 0 {
		return nil
	}
	m := MapUsage(meta.AgentName, meta.Usage, meta.Latency)
	m.Strategy = strategy
	return s.Record(ctx, m)
}

// sqlTime is the stored form of timestamps: fixed-width UTC RFC3339, so
// string comparison orders them and the first 10 bytes are the date.
func sqlTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalExecution  int
	FallbackRuns    int
}

const dailyUsage = `
SELECT substr(timestamp, 1, 10) AS day,
       COALESCE(SUM(prompt_tokens), 0),
       COALESCE(SUM(completion_tokens), 0),
       COUNT(*),
       COALESCE(SUM(CASE WHEN strategy = 'fallback' THEN 1 ELSE 0 END), 0)
FROM execution_metrics
WHERE timestamp >= ?
GROUP BY day
ORDER BY day DESC`

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx, dailyUsage, sqlTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var (
			u   DailyUsage
			day sql.NullString
		)
		if err := rows.Scan(&day, &u.TotalPrompt, &u.TotalCompletion, &u.TotalExecution, &u.FallbackRuns); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		u.Date = "Unknown"
		if day.Valid {
			u.Date = day.String
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the given number of days and reports
// how many rows were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx, `DELETE FROM execution_metrics WHERE timestamp < ?`, sqlTime(threshold))
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup execution metrics: %w", err)
	}
	return res.RowsAffected()
}

// MapUsage converts llm.TokenUsage to an ExecutionMetric.
func MapUsage(agentName string, usage llm.TokenUsage, latency time.Duration) ExecutionMetric {
	return ExecutionMetric{
		AgentName:        agentName,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}
