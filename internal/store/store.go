package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"lectern/internal/config"
	"lectern/internal/errors"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Collection names for the engine's persisted state.
const (
	CollectionDocuments = "documents"
	CollectionPositions = "positions"
	CollectionCache     = "cache"
)

// CacheBlobID is the fixed id of the singleton translation cache blob in
// the cache collection.
const CacheBlobID = "translations"

// Record is one persisted entry in a named collection.
type Record struct {
	Collection string
	ID         string
	Payload    []byte
	UpdatedAt  time.Time
}

// Store is a durable mapping from string keys to opaque record payloads,
// organized into named collections. Each Put is atomic per record.
type Store struct {
	db *sql.DB
}

// Open initializes the SQLite database at baseDir/lectern.db.
// The baseDir parameter allows tests to use t.TempDir().
// Open failures are reported as STORAGE_UNAVAILABLE.
func Open(baseDir string, cfg *config.Config) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, errors.NewStorageUnavailable(fmt.Errorf("create base directory: %w", err))
	}
	_ = os.Chmod(baseDir, 0700)

	// Pragmas in the connection string apply to all pooled connections.
	dbPath := filepath.Join(baseDir, "lectern.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.NewStorageUnavailable(err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, errors.NewStorageUnavailable(err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, errors.NewStorageUnavailable(err)
	}

	_ = os.Chmod(dbPath, 0600)

	if cfg != nil {
		if cfg.DBMaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		}
		if cfg.DBMaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.DBMaxIdleConns)
		}
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the payload stored under (collection, id).
// A missing record is reported as NOT_FOUND, a failed read as STORAGE_IO.
func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM records WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(collection, id)
	}
	if err != nil {
		return nil, errors.NewStorageIO("get "+collection, err)
	}
	return payload, nil
}

// Put stores payload under (collection, id), overwriting any previous
// payload. The upsert is a single statement so a record is never partially
// written.
func (s *Store) Put(ctx context.Context, collection, id string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (collection, id, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
		  payload = excluded.payload,
		  updated_at = excluded.updated_at`,
		collection, id, payload, time.Now().Unix(),
	)
	if err != nil {
		return errors.NewStorageIO("put "+collection, err)
	}
	return nil
}

// Delete removes the record under (collection, id). Deleting a missing
// record is a no-op.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return errors.NewStorageIO("delete "+collection, err)
	}
	return nil
}

// ListAll returns every record in a collection, ordered by id.
func (s *Store) ListAll(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payload, updated_at FROM records WHERE collection = ? ORDER BY id`,
		collection,
	)
	if err != nil {
		return nil, errors.NewStorageIO("list "+collection, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r := Record{Collection: collection}
		var updatedAt int64
		if err := rows.Scan(&r.ID, &r.Payload, &updatedAt); err != nil {
			return nil, errors.NewStorageIO("list "+collection, err)
		}
		r.UpdatedAt = time.Unix(updatedAt, 0)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageIO("list "+collection, err)
	}
	return out, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := getUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS records (
		  collection TEXT NOT NULL,
		  id         TEXT NOT NULL,
		  payload    BLOB NOT NULL,
		  updated_at INTEGER NOT NULL,
		  PRIMARY KEY (collection, id)
		);

		CREATE INDEX IF NOT EXISTS idx_records_collection_updated
		ON records(collection, updated_at DESC);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := setUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

func getUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

func setUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
