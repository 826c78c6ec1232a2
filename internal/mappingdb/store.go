// Package mappingdb persists the flat identifier to canonical identifier
// mapping into SQLite (modernc) or Postgres (pgx) so downstream services can
// query it without loading the dumps.
package mappingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"

	"xrefcanon/internal/canon"
	"xrefcanon/internal/curie"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrNotFound reports an identifier absent from the mapping.
var ErrNotFound = errors.New("identifier not in mapping")

// Store is an open mapping database.
type Store struct {
	db     *sql.DB
	driver string
}

// Run describes one saved mapping.
type Run struct {
	RunID       string    `json:"run_id"`
	CreatedAt   time.Time `json:"created_at"`
	Identifiers int       `json:"identifiers"`
	Classes     int       `json:"classes"`
}

// Open connects to the database and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		if dir := filepath.Dir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		db, err = sql.Open("sqlite", dsn)
	case DriverPostgres:
		db, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unsupported mapping driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", driver, err)
	}

	store := &Store{db: db, driver: driver}
	if driver == DriverSQLite {
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout = 5000",
		}
		for _, pragma := range pragmas {
			if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
				_ = db.Close()
				return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
			}
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", driver, err)
	}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS mapping (
		identifier TEXT PRIMARY KEY,
		prefix TEXT NOT NULL,
		canonical TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mapping_canonical ON mapping(canonical)`,
	`CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		identifiers INTEGER NOT NULL,
		classes INTEGER NOT NULL
	)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// bind rewrites ? placeholders for drivers that use numbered parameters.
func (s *Store) bind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Save replaces the stored mapping with m inside one transaction.
func (s *Store) Save(ctx context.Context, runID string, m *canon.Mapping) (Run, error) {
	run := Run{
		RunID:       runID,
		CreatedAt:   time.Now().UTC(),
		Identifiers: m.Len(),
		Classes:     len(m.Classes()),
	}
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM mapping`); err != nil {
			return fmt.Errorf("clear mapping: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, s.bind(`INSERT INTO mapping (identifier, prefix, canonical) VALUES (?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()
		err = m.Iterate(func(src, dst curie.CURIE) error {
			if _, err := stmt.ExecContext(ctx, src.String(), src.Namespace, dst.String()); err != nil {
				return fmt.Errorf("insert %s: %w", src, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			s.bind(`INSERT INTO runs (run_id, created_at, identifiers, classes) VALUES (?, ?, ?, ?)`),
			run.RunID, run.CreatedAt.Format(time.RFC3339Nano), run.Identifiers, run.Classes,
		); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		return tx.Commit()
	})
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// Lookup returns the canonical identifier of c.
func (s *Store) Lookup(ctx context.Context, c curie.CURIE) (curie.CURIE, error) {
	var canonical string
	err := s.db.QueryRowContext(ctx, s.bind(`SELECT canonical FROM mapping WHERE identifier = ?`), c.String()).Scan(&canonical)
	if errors.Is(err, sql.ErrNoRows) {
		return curie.CURIE{}, fmt.Errorf("%w: %s", ErrNotFound, c)
	}
	if err != nil {
		return curie.CURIE{}, fmt.Errorf("lookup %s: %w", c, err)
	}
	return curie.Parse(canonical)
}

// Members returns the identifiers mapped to canonical, sorted.
func (s *Store) Members(ctx context.Context, canonical curie.CURIE) ([]curie.CURIE, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(`SELECT identifier FROM mapping WHERE canonical = ? ORDER BY identifier`), canonical.String())
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()
	var out []curie.CURIE
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		c, err := curie.Parse(id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LatestRun returns the most recent saved run, if any.
func (s *Store) LatestRun(ctx context.Context) (Run, bool, error) {
	var (
		run       Run
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, created_at, identifiers, classes FROM runs ORDER BY created_at DESC LIMIT 1`,
	).Scan(&run.RunID, &createdAt, &run.Identifiers, &run.Classes)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("query runs: %w", err)
	}
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, false, fmt.Errorf("parse run time: %w", err)
	}
	return run, true, nil
}
