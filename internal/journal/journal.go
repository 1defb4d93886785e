// Package journal provides a SQLite-backed audit trail of target writes.
//
// The journal is a side-store, not a target: the engine appends one row
// per successful flush (best-effort) and the CLI's history command reads
// them back. It never participates in record synchronization itself.
package journal

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/flatsync/flatsync/internal/engine"
)

//go:embed schema.sql
var schemaSQL string

// Journal records flush entries durably. Implements engine.Journal.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path. Pragmas and schema
// are applied automatically; calling Open on an existing journal is safe.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// Single writer; the engine is single-threaded anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// RecordFlush implements engine.Journal.
func (j *Journal) RecordFlush(entry engine.FlushEntry) error {
	_, err := j.db.Exec(`
		INSERT INTO flushes (target, generation, records, bytes, backed_up, written_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		entry.Target,
		entry.Generation,
		entry.Records,
		entry.Bytes,
		boolToInt(entry.BackedUp),
		entry.WrittenAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record flush: %w", err)
	}
	return nil
}

// History returns the most recent flush entries, newest first. target
// filters to one target when non-empty; limit <= 0 means no limit.
func (j *Journal) History(target string, limit int) ([]engine.FlushEntry, error) {
	query := `
		SELECT target, generation, records, bytes, backed_up, written_at
		FROM flushes
	`
	var args []any
	if target != "" {
		query += " WHERE target = ?"
		args = append(args, target)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []engine.FlushEntry
	for rows.Next() {
		var entry engine.FlushEntry
		var backedUp int
		var writtenAt string
		if err := rows.Scan(&entry.Target, &entry.Generation, &entry.Records,
			&entry.Bytes, &backedUp, &writtenAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entry.BackedUp = backedUp != 0
		entry.WrittenAt, err = time.Parse(time.RFC3339Nano, writtenAt)
		if err != nil {
			return nil, fmt.Errorf("parse written_at %q: %w", writtenAt, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	if entries == nil {
		entries = []engine.FlushEntry{}
	}
	return entries, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
