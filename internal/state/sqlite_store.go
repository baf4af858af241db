package state

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/TheMichaelB/pincheck/internal/events"
)

// SQLiteStore implements SQLite-based history storage.
type SQLiteStore struct {
	db     *sql.DB
	logger *events.Logger
}

// NewSQLiteStore creates a SQLite history store.
func NewSQLiteStore(dbPath string, logger *events.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{
		db:     db,
		logger: logger.WithField("component", "sqlite_history_store"),
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return store, nil
}

// initialize creates tables and indexes.
func (s *SQLiteStore) initialize() error {
	schema := `
    CREATE TABLE IF NOT EXISTS lookups (
        request_id TEXT PRIMARY KEY,
        pincode TEXT NOT NULL,
        strategy TEXT NOT NULL DEFAULT '',
        city TEXT NOT NULL DEFAULT '',
        raw INTEGER NOT NULL DEFAULT 0,
        error TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMP NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_lookups_created ON lookups(created_at);
    CREATE INDEX IF NOT EXISTS idx_lookups_pincode ON lookups(pincode);

    CREATE TABLE IF NOT EXISTS schema_info (
        version INTEGER PRIMARY KEY
    );

    INSERT OR IGNORE INTO schema_info (version) VALUES (?);
    `

	if _, err := s.db.Exec(schema, CurrentSchemaVersion); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// Append inserts a lookup. Re-recording a request ID replaces it.
func (s *SQLiteStore) Append(entry *Entry) error {
	s.logger.WithFields(map[string]interface{}{
		"request_id": entry.RequestID,
		"pincode":    entry.Pincode,
	}).Debug("Recording lookup")

	_, err := s.db.Exec(`
        INSERT INTO lookups (request_id, pincode, strategy, city, raw, error, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(request_id) DO UPDATE SET
            pincode = excluded.pincode,
            strategy = excluded.strategy,
            city = excluded.city,
            raw = excluded.raw,
            error = excluded.error,
            created_at = excluded.created_at
    `, entry.RequestID, entry.Pincode, entry.Strategy, entry.City, entry.Raw, entry.Error, entry.Time.UTC())
	if err != nil {
		return fmt.Errorf("insert lookup: %w", err)
	}

	return nil
}

// Recent returns the newest lookups first.
func (s *SQLiteStore) Recent(limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.Query(`
        SELECT request_id, pincode, strategy, city, raw, error, created_at
        FROM lookups
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("query lookups: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lookup row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lookups: %w", err)
	}

	return entries, nil
}

// Get retrieves a lookup by request ID.
func (s *SQLiteStore) Get(requestID string) (*Entry, error) {
	row := s.db.QueryRow(`
        SELECT request_id, pincode, strategy, city, raw, error, created_at
        FROM lookups
        WHERE request_id = ?
    `, requestID)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query lookup: %w", err)
	}

	return entry, nil
}

// Clear removes all lookups.
func (s *SQLiteStore) Clear() error {
	s.logger.Info("Clearing history")

	if _, err := s.db.Exec("DELETE FROM lookups"); err != nil {
		return fmt.Errorf("delete lookups: %w", err)
	}

	return nil
}

// Migrate copies all lookups into target.
func (s *SQLiteStore) Migrate(target Store) error {
	return migrate(s, target, s.logger)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var entry Entry
	if err := row.Scan(
		&entry.RequestID,
		&entry.Pincode,
		&entry.Strategy,
		&entry.City,
		&entry.Raw,
		&entry.Error,
		&entry.Time,
	); err != nil {
		return nil, err
	}
	entry.Time = entry.Time.UTC()
	return &entry, nil
}
