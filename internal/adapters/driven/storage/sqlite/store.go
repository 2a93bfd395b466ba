package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/custodia-labs/ragchat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat/internal/logger"
)

const dbFile = "ragchat.db"

// pragmas apply to every pooled connection, so cascades hold on all of them.
var pragmas = []string{"journal_mode(WAL)", "busy_timeout(5000)", "foreign_keys(1)"}

// Store owns the chat history database.
type Store struct {
	db   *sql.DB
	path string

	closeOnce sync.Once
	closeErr  error
}

// NewStore opens <dataDir>/ragchat.db and brings its schema up to date.
// An empty dataDir means ~/.ragchat/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragchat", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(context.Background(), migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func dsn(path string) string {
	var b strings.Builder
	b.WriteString(path)
	for i, p := range pragmas {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString("_pragma=")
		b.WriteString(p)
	}
	return b.String()
}

// Close closes the database. Later calls return the first result.
func (s *Store) Close() error {
	s.closeOnce.Do(func() { s.closeErr = s.db.Close() })
	return s.closeErr
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// SessionRepository returns the session repository over this store.
func (s *Store) SessionRepository() driven.SessionRepository {
	return &sessionRepository{store: s}
}

type migration struct {
	version int
	file    string
}

// pendingMigrations lists the NNN_name.up.sql files newer than current, oldest first.
func pendingMigrations(fsys fs.FS, current int) ([]migration, error) {
	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}
	var out []migration
	for _, name := range names {
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		v, err := strconv.Atoi(prefix)
		if err != nil || v <= current {
			continue
		}
		out = append(out, migration{version: v, file: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// migrate applies pending migrations, each in its own transaction.
// The schema version lives in PRAGMA user_version.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	pending, err := pendingMigrations(fsys, current)
	if err != nil {
		return err
	}
	for _, m := range pending {
		body, err := fs.ReadFile(fsys, m.file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", m.file, err)
		}
		if err := s.apply(ctx, m.version, string(body)); err != nil {
			return fmt.Errorf("applying %s: %w", m.file, err)
		}
		logger.Debug("sqlite: applied migration %s", m.file)
	}
	return nil
}

func (s *Store) apply(ctx context.Context, version int, body string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return err
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return err
	}
	return tx.Commit()
}

// formatTime stores timestamps as UTC RFC 3339 with nanoseconds. Zero means now.
func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime returns the zero time for values formatTime did not write.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
