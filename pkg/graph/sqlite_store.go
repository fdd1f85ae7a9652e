package graph

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store on a SQLite triples table.
type SQLiteStore struct {
	// mu implements the read section; writers take the exclusive lock.
	mu sync.RWMutex

	db  *sql.DB
	cfg SQLiteConfig
}

// SQLiteConfig holds SQLite store configuration
type SQLiteConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	// Set defaults
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}

	// Every connection to :memory: is a separate database.
	if cfg.Path == ":memory:" {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
		cfg.ConnMaxLifetime = 0
	}

	return &SQLiteStore{cfg: cfg}, nil
}

// Init opens the database connection.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := s.cfg.Path
	if dsn != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", s.cfg.Path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(s.cfg.MaxOpenConns)
	db.SetMaxIdleConns(s.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// HealthCheck verifies the database is reachable.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.db.PingContext(ctx)
}

// EnterReadSection acquires a shared read lock.
func (s *SQLiteStore) EnterReadSection(ctx context.Context) (func(), error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var once sync.Once
	return func() { once.Do(s.mu.RUnlock) }, nil
}

// Add inserts triples, ignoring ones already present.
func (s *SQLiteStore) Add(ctx context.Context, triples ...Triple) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO triples (subject, subject_kind, predicate, object, object_kind)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range triples {
		if !t.Predicate.IsIRI() {
			return fmt.Errorf("predicate must be an IRI: %s", t.Predicate)
		}
		if _, err := stmt.ExecContext(ctx,
			t.Subject.Value, t.Subject.Kind,
			t.Predicate.Value,
			t.Object.Value, t.Object.Kind,
		); err != nil {
			return fmt.Errorf("failed to insert triple: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit triples: %w", err)
	}
	return nil
}

// Count returns the number of stored triples.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM triples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count triples: %w", err)
	}
	return n, nil
}

// Select compiles q into a self-join over the triples table. Rows come back
// in insertion order of the matched triples.
func (s *SQLiteStore) Select(ctx context.Context, q Query, initial Bindings) (ResultSet, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query, args, vars := compileQuery(q, initial)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query triples: %w", err)
	}

	// Pre-bound variables are echoed back only when projected.
	echo := make(Bindings)
	for _, v := range q.Vars() {
		if t, ok := initial[v]; ok {
			echo[v] = t
		}
	}

	return &sqlResultSet{rows: rows, vars: vars, initial: echo}, nil
}

// column describes where a variable's value lives in the join.
type column struct {
	value string
	kind  string // empty for predicates, which are always IRIs
}

func compileQuery(q Query, initial Bindings) (string, []any, []string) {
	var (
		from  []string
		where []string
		order []string
		args  []any
		first = make(map[string]column)
	)

	constrain := func(col column, t Term) {
		where = append(where, col.value+" = ?")
		args = append(args, t.Value)
		if col.kind != "" {
			where = append(where, col.kind+" = ?")
			args = append(args, string(t.Kind))
		} else if t.Kind != TermIRI {
			where = append(where, "0")
		}
	}

	for i, p := range q.Where {
		alias := fmt.Sprintf("t%d", i)
		from = append(from, "triples "+alias)
		order = append(order, alias+".id")

		positions := []struct {
			node Node
			col  column
		}{
			{p.Subject, column{alias + ".subject", alias + ".subject_kind"}},
			{p.Predicate, column{value: alias + ".predicate"}},
			{p.Object, column{alias + ".object", alias + ".object_kind"}},
		}

		for _, pos := range positions {
			if !pos.node.IsVar() {
				constrain(pos.col, pos.node.Term)
				continue
			}
			if t, ok := initial[pos.node.Var]; ok {
				constrain(pos.col, t)
				continue
			}
			prev, seen := first[pos.node.Var]
			if !seen {
				first[pos.node.Var] = pos.col
				continue
			}
			where = append(where, pos.col.value+" = "+prev.value)
			where = append(where, kindExpr(pos.col)+" = "+kindExpr(prev))
		}
	}

	vars := q.Vars()
	selects := make([]string, 0, 2*len(vars))
	var projected []string
	for _, v := range vars {
		col, ok := first[v]
		if !ok {
			continue
		}
		selects = append(selects, col.value, kindExpr(col))
		projected = append(projected, v)
	}
	if len(selects) == 0 {
		selects = append(selects, "1")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(selects, ", "))
	b.WriteString(" FROM ")
	b.WriteString(strings.Join(from, ", "))
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(order, ", "))

	return b.String(), args, projected
}

func kindExpr(c column) string {
	if c.kind == "" {
		return "'" + string(TermIRI) + "'"
	}
	return c.kind
}

// sqlResultSet adapts *sql.Rows to ResultSet.
type sqlResultSet struct {
	rows    *sql.Rows
	vars    []string
	initial Bindings
	cur     Solution
	err     error
}

func (r *sqlResultSet) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}

	dest := make([]any, 2*len(r.vars))
	values := make([]string, 2*len(r.vars))
	for i := range values {
		dest[i] = &values[i]
	}
	if len(dest) == 0 {
		var placeholder int
		dest = append(dest, &placeholder)
	}
	if err := r.rows.Scan(dest...); err != nil {
		r.err = fmt.Errorf("failed to scan solution: %w", err)
		return false
	}

	sol := make(Solution, len(r.vars)+len(r.initial))
	for k, v := range r.initial {
		sol[k] = v
	}
	for i, v := range r.vars {
		sol[v] = Term{Kind: TermKind(values[2*i+1]), Value: values[2*i]}
	}
	r.cur = sol
	return true
}

func (r *sqlResultSet) Solution() Solution { return r.cur }

func (r *sqlResultSet) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func (r *sqlResultSet) Close() error { return r.rows.Close() }
