// Package memory provides the SQLite-backed conversation memory and
// user preference store.
package memory

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

// DefaultWindow is the number of recent exchanges retained on disk.
const DefaultWindow = 5

// Store persists conversation exchanges and user preferences.
type Store struct {
	db      *sql.DB
	entropy *rand.Rand
	window  int
}

// NewStore opens or creates the database at the given path. The window
// bounds how many exchanges are retained; values <= 0 use the default.
func NewStore(dbPath string, window int) (*Store, error) {
	if window <= 0 {
		window = DefaultWindow
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		window:  window,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id            TEXT PRIMARY KEY,
		user_msg      TEXT NOT NULL,
		assistant_msg TEXT NOT NULL,
		created_at    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges(created_at DESC);

	CREATE TABLE IF NOT EXISTS preferences (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AddExchange records one user/assistant turn pair and prunes exchanges
// beyond the retention window.
func (s *Store) AddExchange(ctx context.Context, user, assistant string) (*model.Exchange, error) {
	now := time.Now().UTC()
	id := s.newID()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO exchanges (id, user_msg, assistant_msg, created_at) VALUES (?, ?, ?, ?)`,
		id, user, assistant, now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert exchange: %w", err)
	}

	// Keep only the most recent window.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM exchanges WHERE id NOT IN (
			SELECT id FROM exchanges ORDER BY created_at DESC, id DESC LIMIT ?
		)`, s.window)
	if err != nil {
		return nil, fmt.Errorf("prune exchanges: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.Exchange{ID: id, User: user, Assistant: assistant, CreatedAt: now}, nil
}

// Recent returns the retained exchanges, oldest to newest.
func (s *Store) Recent(ctx context.Context) ([]model.Exchange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_msg, assistant_msg, created_at
		 FROM exchanges ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exchanges []model.Exchange
	for rows.Next() {
		var e model.Exchange
		var createdAt string
		if err := rows.Scan(&e.ID, &e.User, &e.Assistant, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		exchanges = append(exchanges, e)
	}
	return exchanges, rows.Err()
}

// Exchanges implements the assembler's memory source contract.
func (s *Store) Exchanges(ctx context.Context) ([]model.Exchange, error) {
	return s.Recent(ctx)
}

// ClearExchanges deletes all conversation history.
func (s *Store) ClearExchanges(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM exchanges`)
	return err
}

// Stats describes the stored conversation state.
type Stats struct {
	Exchanges   int `json:"exchanges"`
	Preferences int `json:"preferences"`
}

// GetStats returns conversation and preference counts.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exchanges`).Scan(&st.Exchanges); err != nil {
		return st, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM preferences`).Scan(&st.Preferences); err != nil {
		return st, err
	}
	return st, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}
