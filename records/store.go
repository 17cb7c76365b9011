/*
store.go - Generic record store contract

PURPOSE:
  Defines the interface between the record graph and the remote
  relational store. The store is a dumb row engine: it knows tables,
  rows, equality predicates and ordering. Everything else - composite
  writes, cascades, invariants - lives above it in the pipeline package.

CONTRACT:
  Insert(table, row)           -> stored row | error
  Update(table, pred, patch)   -> updated rows | error
  Select(table, pred, order)   -> rows | error

SOFT DELETE:
  Expressed as an Update setting deleted_at. The contract has NO physical
  delete; even the composite pipeline's compensating rollback is a
  soft-delete of the anchor row.

NO TRANSACTIONS:
  The two writes in a composite mutation are NOT assumed atomic at the
  store level. Consistency relies on the pipeline's sequencing and
  compensation contracts, not on transactional isolation.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - records/store/memory.go: In-memory for testing
*/
package records

import "context"

// Row is one stored record as loosely typed column values. Money columns
// travel as 2dp strings, timestamps as RFC3339 strings, absent/null
// columns as nil.
type Row map[string]any

// Predicate selects rows by column equality (ANDed). An Eq value of nil
// matches IS NULL. ActiveOnly additionally excludes soft-deleted rows.
type Predicate struct {
	Eq         Row
	ActiveOnly bool
}

// ByID matches a single live row by its id column.
func ByID(id string) Predicate {
	return Predicate{Eq: Row{"id": id}, ActiveOnly: true}
}

// AnyByID matches by id regardless of soft-delete state.
func AnyByID(id string) Predicate {
	return Predicate{Eq: Row{"id": id}}
}

// Active matches every live row in a table.
func Active() Predicate {
	return Predicate{ActiveOnly: true}
}

// Ordering names the column results are sorted by.
type Ordering struct {
	Field string
	Desc  bool
}

// Store is the minimal persistence contract consumed by this core. It is
// implemented by the excluded persistence collaborator; this repository
// ships a SQLite implementation and an in-memory one for tests.
type Store interface {
	// Insert persists a new row and returns it as stored.
	Insert(ctx context.Context, table Table, row Row) (Row, error)

	// Update patches every row matching pred and returns the rows it
	// touched. Updating zero rows is not an error; callers that need a
	// row check the returned slice.
	Update(ctx context.Context, table Table, pred Predicate, patch Row) ([]Row, error)

	// Select returns the rows matching pred, optionally ordered.
	Select(ctx context.Context, table Table, pred Predicate, order *Ordering) ([]Row, error)
}

// SelectOne is the single-row convenience over Store.Select. Returns
// ErrNotFound when nothing matches.
func SelectOne(ctx context.Context, s Store, table Table, pred Predicate) (Row, error) {
	rows, err := s.Select(ctx, table, pred, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}
