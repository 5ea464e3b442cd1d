// Package toollog records tool execution outputs for the current
// interaction window.
package toollog

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/agent-context/internal/model"
)

// DefaultWindow is the number of recent outputs retained.
const DefaultWindow = 10

// Log is a SQLite-backed, bounded tool output history.
type Log struct {
	db      *sql.DB
	entropy *rand.Rand
	window  int
}

// Open opens or creates the tool log at the given path. Windows <= 0
// use the default.
func Open(dbPath string, window int) (*Log, error) {
	if window <= 0 {
		window = DefaultWindow
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	l := &Log{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		window:  window,
	}

	schema := `
	CREATE TABLE IF NOT EXISTS tool_outputs (
		id         TEXT PRIMARY KEY,
		tool       TEXT NOT NULL,
		output     TEXT NOT NULL,
		success    INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tool_outputs_created ON tool_outputs(created_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return l, nil
}

// Record stores one tool execution and prunes beyond the window.
func (l *Log) Record(ctx context.Context, tool, output string, success bool) (*model.ToolOutput, error) {
	now := time.Now().UTC()
	id := ulid.MustNew(ulid.Timestamp(now), l.entropy).String()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	okFlag := 0
	if success {
		okFlag = 1
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO tool_outputs (id, tool, output, success, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, tool, output, okFlag, now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert tool output: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM tool_outputs WHERE id NOT IN (
			SELECT id FROM tool_outputs ORDER BY created_at DESC, id DESC LIMIT ?
		)`, l.window)
	if err != nil {
		return nil, fmt.Errorf("prune tool outputs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.ToolOutput{ID: id, Tool: tool, Output: output, Success: success, CreatedAt: now}, nil
}

// Recent returns retained outputs, oldest to newest.
func (l *Log) Recent(ctx context.Context) ([]model.ToolOutput, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, tool, output, success, created_at
		 FROM tool_outputs ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outputs []model.ToolOutput
	for rows.Next() {
		var o model.ToolOutput
		var okFlag int
		var createdAt string
		if err := rows.Scan(&o.ID, &o.Tool, &o.Output, &okFlag, &createdAt); err != nil {
			return nil, err
		}
		o.Success = okFlag == 1
		o.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		outputs = append(outputs, o)
	}
	return outputs, rows.Err()
}

// Outputs implements the assembler's tool output source contract.
func (l *Log) Outputs(ctx context.Context) ([]model.ToolOutput, error) {
	return l.Recent(ctx)
}

// Clear deletes all recorded outputs.
func (l *Log) Clear(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM tool_outputs`)
	return err
}

// Stats summarizes recorded executions.
type Stats struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// GetStats returns execution counts.
func (l *Log) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(success), 0) FROM tool_outputs`).
		Scan(&st.Total, &st.Successful)
	if err != nil {
		return st, err
	}
	st.Failed = st.Total - st.Successful
	return st, nil
}

// Close closes the log.
func (l *Log) Close() error {
	return l.db.Close()
}
