/*
Package sqlite provides the SQLite-backed implementation of the generic
record store.

PURPOSE:
  Implements records.Store (insert/update/select over named tables) using
  SQLite. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

SOFT DELETE:
  There are NO DELETE statements in this package. Rows leave the active
  set when an update writes their deleted_at column; every table carries
  one.

KEY TABLES:
  work_orders:      Anchor records (review_id back-reference is nullable)
  jobs:             Billable side; commission_rate is the snapshot value
  estimates:        Quoted side
  parts:            Material lines per job
  technicians:      Commission-rate source records
  reviews:          Review records linked from work_orders.review_id
  payment_methods:  Lookup
  review_types:     Lookup

CONCURRENCY:
  Uses sync.Mutex around writes. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  st, err := sqlite.New("./data/fieldservice.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()
  p := pipeline.New(st, views.NewTracker())

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - records/store.go: Interface definition
  - records/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/fieldservice-engine/records"
)

// Store implements records.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS work_orders (
		id TEXT PRIMARY KEY,
		work_title TEXT NOT NULL DEFAULT '',
		work_order_date TEXT NOT NULL DEFAULT '',
		technician_id TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		review_id TEXT,
		deleted_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_work_orders_technician
		ON work_orders(technician_id) WHERE deleted_at IS NULL;
	CREATE INDEX IF NOT EXISTS idx_work_orders_review
		ON work_orders(review_id) WHERE review_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_work_orders_date
		ON work_orders(work_order_date DESC);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		work_order_id TEXT NOT NULL,
		subtotal TEXT NOT NULL DEFAULT '0',
		tips TEXT NOT NULL DEFAULT '0',
		parts_total_cost TEXT NOT NULL DEFAULT '0',
		commission_rate TEXT NOT NULL DEFAULT '0',
		payment_mode TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		deleted_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_work_order
		ON jobs(work_order_id);
	CREATE INDEX IF NOT EXISTS idx_jobs_status
		ON jobs(status) WHERE deleted_at IS NULL;

	CREATE TABLE IF NOT EXISTS estimates (
		id TEXT PRIMARY KEY,
		work_order_id TEXT NOT NULL,
		estimated_amount TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL DEFAULT 'follow_up',
		handled_by TEXT NOT NULL DEFAULT '',
		deleted_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_estimates_work_order
		ON estimates(work_order_id);

	CREATE TABLE IF NOT EXISTS parts (
		id TEXT PRIMARY KEY,
		job_id TEXT NOT NULL,
		unit_cost TEXT NOT NULL DEFAULT '0',
		quantity INTEGER NOT NULL DEFAULT 0,
		amount TEXT NOT NULL DEFAULT '0',
		deleted_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_parts_job
		ON parts(job_id) WHERE deleted_at IS NULL;

	CREATE TABLE IF NOT EXISTS technicians (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		default_commission_rate TEXT NOT NULL DEFAULT '0',
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		review_type_id TEXT,
		notes TEXT NOT NULL DEFAULT '',
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS payment_methods (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS review_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		deleted_at TEXT
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD STORE (records.Store interface)
// =============================================================================

var idPrefix = map[records.Table]string{
	records.TableWorkOrders:     "wo",
	records.TableJobs:           "job",
	records.TableEstimates:      "est",
	records.TableParts:          "part",
	records.TableTechnicians:    "tech",
	records.TableReviews:        "rev",
	records.TablePaymentMethods: "pm",
	records.TableReviewTypes:    "rt",
}

// Insert persists a new row, assigning an id when none is given.
func (s *Store) Insert(ctx context.Context, table records.Table, row records.Row) (records.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make(records.Row, len(row))
	for k, v := range row {
		stored[k] = v
	}
	if id, _ := stored["id"].(string); id == "" {
		stored["id"] = fmt.Sprintf("%s-%d", idPrefix[table], time.Now().UnixNano())
	}

	cols := make([]string, 0, len(stored))
	for k := range stored {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		placeholders[i] = "?"
		args[i] = stored[c]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}
	return stored, nil
}

// Update patches every row matching pred and returns the rows it touched.
func (s *Store) Update(ctx context.Context, table records.Table, pred records.Predicate, patch records.Row) ([]records.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Snapshot the ids first: predicate columns the patch rewrites
	// (e.g. clearing review_id) would no longer match afterwards.
	before, err := s.doSelect(ctx, table, pred, nil)
	if err != nil {
		return nil, err
	}
	if len(before) == 0 {
		return nil, nil
	}

	cols := make([]string, 0, len(patch))
	for k := range patch {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	sets := make([]string, len(cols))
	where, whereArgs := buildWhere(pred)
	args := make([]any, 0, len(cols)+len(whereArgs))
	for i, c := range cols {
		sets[i] = c + " = ?"
		args = append(args, patch[c])
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s%s", table, strings.Join(sets, ", "), where)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}

	updated := make([]records.Row, 0, len(before))
	for _, row := range before {
		fresh, err := s.doSelect(ctx, table,
			records.Predicate{Eq: records.Row{"id": row["id"]}}, nil)
		if err != nil {
			return nil, err
		}
		updated = append(updated, fresh...)
	}
	return updated, nil
}

// Select returns the rows matching pred, optionally ordered.
func (s *Store) Select(ctx context.Context, table records.Table, pred records.Predicate, order *records.Ordering) ([]records.Row, error) {
	return s.doSelect(ctx, table, pred, order)
}

func (s *Store) doSelect(ctx context.Context, table records.Table, pred records.Predicate, order *records.Ordering) ([]records.Row, error) {
	where, args := buildWhere(pred)
	query := fmt.Sprintf("SELECT * FROM %s%s", table, where)
	if order != nil {
		dir := "ASC"
		if order.Desc {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s", order.Field, dir)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []records.Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(records.Row, len(cols))
		for i, c := range cols {
			row[c] = normalize(vals[i])
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// buildWhere renders a predicate into a WHERE clause. An Eq value of nil
// matches IS NULL; ActiveOnly excludes soft-deleted rows.
func buildWhere(pred records.Predicate) (string, []any) {
	var clauses []string
	var args []any

	keys := make([]string, 0, len(pred.Eq))
	for k := range pred.Eq {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if pred.Eq[k] == nil {
			clauses = append(clauses, k+" IS NULL")
			continue
		}
		clauses = append(clauses, k+" = ?")
		args = append(args, pred.Eq[k])
	}
	if pred.ActiveOnly {
		clauses = append(clauses, "deleted_at IS NULL")
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// normalize converts driver values into the Row conventions: []byte
// becomes string, NULL stays nil.
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	default:
		return v
	}
}
