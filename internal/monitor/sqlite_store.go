package monitor

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// schema is applied on open with IF NOT EXISTS, so it is safe to run on
// every startup.
const schema = `
CREATE TABLE IF NOT EXISTS execution_history (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    task_id        TEXT NOT NULL,
    started_at     TIMESTAMP NOT NULL,
    ended_at       TIMESTAMP NOT NULL,
    duration_ms    INTEGER NOT NULL,
    success        INTEGER NOT NULL,
    resource_usage TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_execution_history_task_id ON execution_history(task_id);
`

// SQLiteExecutionStore implements ExecutionStore using a local,
// pure-Go SQLite database in WAL mode.
type SQLiteExecutionStore struct {
	db *sql.DB
}

// NewSQLiteExecutionStore opens (or creates) a SQLite database at
// dbPath, enables WAL mode and a busy timeout, and creates the schema
// idempotently.
func NewSQLiteExecutionStore(ctx context.Context, dbPath string) (*SQLiteExecutionStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("monitor: open execution store: %w", err)
	}

	// SQLite supports a single writer; one connection avoids SQLITE_BUSY
	// contention between pooled connections that would each need their
	// own PRAGMA setup.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("monitor: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("monitor: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("monitor: create schema: %w", err)
	}

	return &SQLiteExecutionStore{db: db}, nil
}

// Record appends one execution attempt for taskID.
func (s *SQLiteExecutionStore) Record(ctx context.Context, taskID string, attempt taskgraph.ExecutionAttempt) error {
	usage, err := json.Marshal(attempt.ResourceUsage)
	if err != nil {
		return fmt.Errorf("monitor: marshal resource usage for %q: %w", taskID, err)
	}
	const q = `
		INSERT INTO execution_history (task_id, started_at, ended_at, duration_ms, success, resource_usage)
		VALUES (?, ?, ?, ?, ?, ?)`
	success := 0
	if attempt.Success {
		success = 1
	}
	if _, err := s.db.ExecContext(ctx, q,
		taskID,
		attempt.StartedAt.Format(time.RFC3339),
		attempt.EndedAt.Format(time.RFC3339),
		attempt.Duration.Milliseconds(),
		success,
		string(usage),
	); err != nil {
		return fmt.Errorf("monitor: record attempt for %q: %w", taskID, err)
	}
	return nil
}

// History returns every recorded attempt for taskID, oldest first.
func (s *SQLiteExecutionStore) History(ctx context.Context, taskID string) ([]taskgraph.ExecutionAttempt, error) {
	const q = `
		SELECT started_at, ended_at, duration_ms, success, resource_usage
		FROM execution_history WHERE task_id = ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, taskID)
	if err != nil {
		return nil, fmt.Errorf("monitor: history for %q: %w", taskID, err)
	}
	defer rows.Close()

	var out []taskgraph.ExecutionAttempt
	for rows.Next() {
		var startedAt, endedAt string
		var durationMS int64
		var success int
		var usageJSON string
		if err := rows.Scan(&startedAt, &endedAt, &durationMS, &success, &usageJSON); err != nil {
			return nil, fmt.Errorf("monitor: scan attempt for %q: %w", taskID, err)
		}
		started, err := time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("monitor: parse started_at: %w", err)
		}
		ended, err := time.Parse(time.RFC3339, endedAt)
		if err != nil {
			return nil, fmt.Errorf("monitor: parse ended_at: %w", err)
		}
		var usage map[string]float64
		if err := json.Unmarshal([]byte(usageJSON), &usage); err != nil {
			return nil, fmt.Errorf("monitor: unmarshal resource usage: %w", err)
		}
		out = append(out, taskgraph.ExecutionAttempt{
			StartedAt:     started,
			EndedAt:       ended,
			Duration:      time.Duration(durationMS) * time.Millisecond,
			Success:       success != 0,
			ResourceUsage: usage,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("monitor: iterate history for %q: %w", taskID, err)
	}
	return out, nil
}

// Close releases the database connection.
func (s *SQLiteExecutionStore) Close() error {
	return s.db.Close()
}
