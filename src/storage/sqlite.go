package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the embedded sqlite database holding conversations and messages.
type DB struct {
	path string
	db   *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema is in
// place. Safe to call on every application start.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Cascade ordering in DeleteConversation relies on the FK relationship
	// actually being enforced.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &DB{path: path, db: db}

	if err := store.EnsureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return store, nil
}

// DB exposes the underlying handle for the query helpers in this package.
func (d *DB) DB() *sql.DB {
	return d.db
}

// Path returns the filesystem location of the database file.
func (d *DB) Path() string {
	return d.path
}

func (d *DB) Close() error {
	return d.db.Close()
}
