// Package store provides Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/warp/fieldservice-engine/records"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	tables map[records.Table][]records.Row
	nextID int
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[records.Table][]records.Row)}
}

// Insert stores a copy of the row, assigning an id when none is given.
func (m *Memory) Insert(_ context.Context, table records.Table, row records.Row) (records.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := copyRow(row)
	if id, ok := stored["id"].(string); !ok || id == "" {
		m.nextID++
		stored["id"] = fmt.Sprintf("%s-%d", table, m.nextID)
	}
	if _, ok := stored["deleted_at"]; !ok {
		stored["deleted_at"] = nil
	}
	m.tables[table] = append(m.tables[table], stored)
	return copyRow(stored), nil
}

// Update patches matching rows in place and returns copies of them.
func (m *Memory) Update(_ context.Context, table records.Table, pred records.Predicate, patch records.Row) ([]records.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var updated []records.Row
	for _, row := range m.tables[table] {
		if !matches(row, pred) {
			continue
		}
		for k, v := range patch {
			row[k] = v
		}
		updated = append(updated, copyRow(row))
	}
	return updated, nil
}

// Select returns copies of matching rows, optionally ordered.
func (m *Memory) Select(_ context.Context, table records.Table, pred records.Predicate, order *records.Ordering) ([]records.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []records.Row
	for _, row := range m.tables[table] {
		if matches(row, pred) {
			result = append(result, copyRow(row))
		}
	}
	if order != nil {
		sortRows(result, *order)
	}
	return result, nil
}

// =============================================================================
// MATCHING & ORDERING
// =============================================================================

func matches(row records.Row, pred records.Predicate) bool {
	if pred.ActiveOnly && row["deleted_at"] != nil {
		return false
	}
	for k, want := range pred.Eq {
		got := row[k]
		if want == nil {
			if got != nil {
				return false
			}
			continue
		}
		if got == nil || fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	return true
}

func sortRows(rows []records.Row, order records.Ordering) {
	sort.SliceStable(rows, func(i, j int) bool {
		less := compareCol(rows[i][order.Field], rows[j][order.Field]) < 0
		if order.Desc {
			return !less
		}
		return less
	})
}

// compareCol compares numerically when both values parse as numbers,
// lexically otherwise (dates are RFC3339 strings, which sort correctly).
func compareCol(a, b any) int {
	as, bs := fmt.Sprintf("%v", a), fmt.Sprintf("%v", b)
	af, aerr := strconv.ParseFloat(as, 64)
	bf, berr := strconv.ParseFloat(bs, 64)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func copyRow(row records.Row) records.Row {
	out := make(records.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
