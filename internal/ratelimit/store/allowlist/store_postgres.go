package allowlist

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"limitgate/internal/ratelimit/models"
)

// PostgresStore persists allowlist entries so they survive gateway restarts
// and are shared across instances.
type PostgresStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS ratelimit_allowlist (
	id          TEXT PRIMARY KEY,
	entry_type  TEXT NOT NULL,
	identifier  TEXT NOT NULL UNIQUE,
	reason      TEXT NOT NULL,
	expires_at  TIMESTAMPTZ,
	created_at  TIMESTAMPTZ NOT NULL
)`

// NewPostgres opens the database and ensures the table exists.
func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure allowlist table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// IsAllowlisted checks if an identifier should bypass rate limiting.
func (s *PostgresStore) IsAllowlisted(ctx context.Context, identifier string) (bool, error) {
	if identifier == "" {
		return false, nil
	}
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM ratelimit_allowlist
			WHERE identifier = $1 AND (expires_at IS NULL OR expires_at > $2)
		)`, identifier, time.Now()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check allowlist: %w", err)
	}
	return exists, nil
}

// Add upserts an entry keyed by identifier.
func (s *PostgresStore) Add(ctx context.Context, entry *models.AllowlistEntry) error {
	if entry == nil {
		return fmt.Errorf("allowlist entry is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ratelimit_allowlist (id, entry_type, identifier, reason, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (identifier) DO UPDATE
		 SET entry_type = EXCLUDED.entry_type,
		     reason     = EXCLUDED.reason,
		     expires_at = EXCLUDED.expires_at`,
		entry.ID, entry.Type.String(), entry.Identifier, entry.Reason, entry.ExpiresAt, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("add allowlist entry: %w", err)
	}
	return nil
}

// Remove deletes an entry by type and identifier.
func (s *PostgresStore) Remove(ctx context.Context, entryType models.AllowlistEntryType, identifier string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM ratelimit_allowlist WHERE entry_type = $1 AND identifier = $2`,
		entryType.String(), identifier)
	if err != nil {
		return fmt.Errorf("remove allowlist entry: %w", err)
	}
	return nil
}

// List returns all non-expired entries.
func (s *PostgresStore) List(ctx context.Context) ([]*models.AllowlistEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entry_type, identifier, reason, expires_at, created_at
		 FROM ratelimit_allowlist
		 WHERE expires_at IS NULL OR expires_at > $1
		 ORDER BY created_at`, time.Now())
	if err != nil {
		return nil, fmt.Errorf("list allowlist entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AllowlistEntry
	for rows.Next() {
		var e models.AllowlistEntry
		var entryType string
		if err := rows.Scan(&e.ID, &entryType, &e.Identifier, &e.Reason, &e.ExpiresAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan allowlist entry: %w", err)
		}
		e.Type = models.AllowlistEntryType(entryType)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate allowlist entries: %w", err)
	}
	return entries, nil
}

// StartCleanup removes expired entries every interval until ctx is cancelled.
func (s *PostgresStore) StartCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.db.ExecContext(ctx,
				`DELETE FROM ratelimit_allowlist WHERE expires_at IS NOT NULL AND expires_at <= $1`,
				time.Now()); err != nil {
				return fmt.Errorf("cleanup allowlist entries: %w", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
