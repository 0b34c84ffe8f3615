// Package history records completed organize, clean and move runs in SQLite.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/On-Jun9/MediaSort/pkg/types"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// MaxEntries is the number of runs kept; older rows are pruned on Record.
const MaxEntries = 100

var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
)

type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
		if err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: %s has version %d, expected %d (delete the file to reset history)",
			ErrSchemaMismatch, s.path, version, schemaVersion)
	}
	return nil
}

// Record stores entry, assigning an ID and CreatedAt when they are empty,
// and returns the stored entry.
func (s *Store) Record(ctx context.Context, entry types.HistoryEntry) (types.HistoryEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	stats, err := marshalOptional(entry.Stats)
	if err != nil {
		return entry, err
	}
	resolve, err := marshalOptional(entry.Resolve)
	if err != nil {
		return entry, err
	}

	err = retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO runs (id, kind, source, dest, stats, resolve, cancelled, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID, string(entry.Kind), entry.Source, entry.Dest, stats, resolve,
			entry.Cancelled, entry.CreatedAt.UTC().Format(timeLayout),
		)
		return err
	})
	if err != nil {
		return entry, fmt.Errorf("insert run: %w", err)
	}

	err = retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY created_at DESC LIMIT ?)`,
			MaxEntries,
		)
		return err
	})
	if err != nil {
		return entry, fmt.Errorf("prune runs: %w", err)
	}

	return entry, nil
}

// List returns up to limit runs, newest first. A limit below 1 returns all
// kept runs.
func (s *Store) List(ctx context.Context, limit int) ([]types.HistoryEntry, error) {
	if limit < 1 {
		limit = MaxEntries
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, source, dest, stats, resolve, cancelled, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	entries := []types.HistoryEntry{}
	for rows.Next() {
		var (
			entry     types.HistoryEntry
			kind      string
			stats     sql.NullString
			resolve   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&entry.ID, &kind, &entry.Source, &entry.Dest, &stats, &resolve, &entry.Cancelled, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		entry.Kind = types.HistoryKind(kind)
		if entry.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", entry.ID, err)
		}
		if stats.Valid {
			entry.Stats = &types.RunStatistics{}
			if err := json.Unmarshal([]byte(stats.String), entry.Stats); err != nil {
				return nil, fmt.Errorf("decode stats of %s: %w", entry.ID, err)
			}
		}
		if resolve.Valid {
			entry.Resolve = &types.ResolveSummary{}
			if err := json.Unmarshal([]byte(resolve.String), entry.Resolve); err != nil {
				return nil, fmt.Errorf("decode resolve summary of %s: %w", entry.ID, err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func marshalOptional[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == 5 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var err error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		if err = op(); err == nil || !isBusy(err) {
			return err
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return err
}
