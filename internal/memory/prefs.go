package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// SetPreference stores or replaces a user preference.
func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	return err
}

// GetPreference returns a preference value.
func (s *Store) GetPreference(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("preference not found: %s", key)
	}
	return value, nil
}

// Preferences returns all stored preferences.
func (s *Store) Preferences(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM preferences`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prefs := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		prefs[k] = v
	}
	return prefs, rows.Err()
}

// RemovePreference deletes a preference.
func (s *Store) RemovePreference(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key)
	return err
}

// FormatPreferences renders stored preferences for the goal section.
// Keys are sorted for deterministic output. Empty when none are set.
func (s *Store) FormatPreferences(ctx context.Context) (string, error) {
	prefs, err := s.Preferences(ctx)
	if err != nil {
		return "", err
	}
	if len(prefs) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, prefs[k]))
	}
	return "User Context: " + strings.Join(parts, ", "), nil
}

// Goal implements the assembler's goal source: the current query merged
// with any stored preference text.
func (s *Store) Goal(ctx context.Context, query string) (string, error) {
	prefs, err := s.FormatPreferences(ctx)
	if err != nil {
		return query, err
	}
	if prefs == "" {
		return query, nil
	}
	return query + "\n\n" + prefs, nil
}
