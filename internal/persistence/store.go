package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/database"
)

// SQLiteStore keeps the persisted strings in the persistence table.
type SQLiteStore struct {
	db *database.DB

	mu     sync.Mutex
	closed bool
}

// NewSQLiteStore creates a store over an open, migrated database.
func NewSQLiteStore(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Values returns all stored key/value pairs.
func (s *SQLiteStore) Values(ctx context.Context) (map[string]string, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM persistence`)
	if err != nil {
		return nil, fmt.Errorf("querying persistence: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning persistence row: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating persistence rows: %w", err)
	}
	return values, nil
}

// Load reads and decodes the stored snapshot.
func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	values, err := s.Values(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Decode(values)
}

// Save replaces the stored snapshot in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	if s.isClosed() {
		return ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	now := time.Now().UTC().Format(time.RFC3339)
	for k, v := range snap.Encode() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO persistence (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			k, v, now)
		if err != nil {
			return fmt.Errorf("writing %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing persistence: %w", err)
	}
	return nil
}

// Close marks the store closed. The database is owned by the caller.
func (s *SQLiteStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *SQLiteStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
