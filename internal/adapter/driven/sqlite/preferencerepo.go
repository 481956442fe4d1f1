package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/wifishare/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PreferenceStore = (*PreferenceRepo)(nil)

// PreferenceRepo is the SQLite implementation of the PreferenceStore port.
// When constructed with a key, values are sealed with AES-256-GCM before write
// and opened after read.
type PreferenceRepo struct {
	db     *DB
	sealer *sealer
}

// NewPreferenceRepo creates a PreferenceRepo. key must be 32 bytes, or nil to
// store values as plaintext.
func NewPreferenceRepo(db *DB, key []byte) (*PreferenceRepo, error) {
	s, err := newSealer(key)
	if err != nil {
		return nil, err
	}
	return &PreferenceRepo{db: db, sealer: s}, nil
}

// Sealed reports whether values are encrypted at rest.
func (r *PreferenceRepo) Sealed() bool {
	return r.sealer.enabled()
}

// Get retrieves the plaintext value stored under key.
// Returns ("", nil) if no value exists.
func (r *PreferenceRepo) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM preferences WHERE key = ?`
	var stored string
	err := r.db.Reader.QueryRowContext(ctx, query, key).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get preference %q: %w", key, err)
	}

	plaintext, err := r.sealer.open(stored)
	if err != nil {
		return "", fmt.Errorf("open preference %q: %w", key, err)
	}
	return plaintext, nil
}

// Set stores or replaces the value under key.
func (r *PreferenceRepo) Set(ctx context.Context, key, value string) error {
	sealed, err := r.sealer.seal(value)
	if err != nil {
		return fmt.Errorf("seal preference %q: %w", key, err)
	}

	const query = `INSERT OR REPLACE INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`
	if _, err := r.db.Writer.ExecContext(ctx, query, key, sealed); err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	return nil
}

// Remove deletes the value under key.
func (r *PreferenceRepo) Remove(ctx context.Context, key string) error {
	const query = `DELETE FROM preferences WHERE key = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("remove preference %q: %w", key, err)
	}
	return nil
}
