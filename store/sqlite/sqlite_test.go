package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/fieldservice-engine/records"
	"github.com/warp/fieldservice-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	// A file per test instead of :memory:, which database/sql's pool
	// would split into one empty database per connection.
	st, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func insertTechnician(t *testing.T, st *sqlite.Store, name, rate string) records.Row {
	t.Helper()
	row, err := st.Insert(context.Background(), records.TableTechnicians, records.Row{
		"name":                    name,
		"default_commission_rate": rate,
		"deleted_at":              nil,
	})
	require.NoError(t, err)
	return row
}

// =============================================================================
// INSERT / SELECT
// =============================================================================

func TestInsert_AssignsIDAndRoundTrips(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	row := insertTechnician(t, st, "Dana", "50.00")
	id, _ := row["id"].(string)
	require.NotEmpty(t, id, "insert must assign an id")

	got, err := records.SelectOne(ctx, st, records.TableTechnicians, records.ByID(id))
	require.NoError(t, err)
	assert.Equal(t, "Dana", got["name"])
	assert.Equal(t, "50.00", got["default_commission_rate"])
	assert.Nil(t, got["deleted_at"])
}

func TestInsert_KeepsCallerProvidedID(t *testing.T) {
	st := newStore(t)
	row, err := st.Insert(context.Background(), records.TableReviewTypes, records.Row{
		"id": "rt-custom", "name": "Google", "deleted_at": nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "rt-custom", row["id"])
}

func TestSelect_NilPredicateValueMatchesNull(t *testing.T) {
	// GIVEN: work orders with and without a review link
	// WHEN: selecting review_id IS NULL
	// THEN: only the unlinked row comes back

	st := newStore(t)
	ctx := context.Background()

	_, err := st.Insert(ctx, records.TableWorkOrders, records.Row{
		"id": "wo-1", "work_title": "Linked", "review_id": "rev-1", "deleted_at": nil,
	})
	require.NoError(t, err)
	_, err = st.Insert(ctx, records.TableWorkOrders, records.Row{
		"id": "wo-2", "work_title": "Unlinked", "review_id": nil, "deleted_at": nil,
	})
	require.NoError(t, err)

	rows, err := st.Select(ctx, records.TableWorkOrders,
		records.Predicate{Eq: records.Row{"review_id": nil}}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "wo-2", rows[0]["id"])
}

func TestSelect_Ordering(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	insertTechnician(t, st, "Riley", "30.00")
	insertTechnician(t, st, "Alex", "40.00")
	insertTechnician(t, st, "Dana", "50.00")

	rows, err := st.Select(ctx, records.TableTechnicians, records.Active(),
		&records.Ordering{Field: "name"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Alex", rows[0]["name"])
	assert.Equal(t, "Riley", rows[2]["name"])
}

// =============================================================================
// UPDATE & SOFT DELETE
// =============================================================================

func TestUpdate_SoftDeleteLeavesRowReachableByAnyByID(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	row := insertTechnician(t, st, "Dana", "50.00")
	id := row["id"].(string)

	updated, err := st.Update(ctx, records.TableTechnicians,
		records.ByID(id), records.SoftDeletePatch(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.NotNil(t, updated[0]["deleted_at"])

	// Gone from the active set...
	_, err = records.SelectOne(ctx, st, records.TableTechnicians, records.ByID(id))
	assert.True(t, records.IsNotFound(err))

	// ...but never physically removed.
	got, err := records.SelectOne(ctx, st, records.TableTechnicians, records.AnyByID(id))
	require.NoError(t, err)
	assert.Equal(t, "Dana", got["name"])
}

func TestUpdate_ZeroMatchesIsNotAnError(t *testing.T) {
	st := newStore(t)
	updated, err := st.Update(context.Background(), records.TableTechnicians,
		records.ByID("tech-ghost"), records.Row{"name": "Nobody"})
	require.NoError(t, err)
	assert.Empty(t, updated)
}

func TestUpdate_ReturnsRowsEvenWhenPatchBreaksThePredicate(t *testing.T) {
	// The review unlink patches the very column the predicate matched on.
	// The touched rows must still come back, with the column cleared.

	st := newStore(t)
	ctx := context.Background()
	for _, id := range []string{"wo-1", "wo-2"} {
		_, err := st.Insert(ctx, records.TableWorkOrders, records.Row{
			"id": id, "work_title": "Linked", "review_id": "rev-9", "deleted_at": nil,
		})
		require.NoError(t, err)
	}
	_, err := st.Insert(ctx, records.TableWorkOrders, records.Row{
		"id": "wo-3", "work_title": "Other", "review_id": "rev-other", "deleted_at": nil,
	})
	require.NoError(t, err)

	updated, err := st.Update(ctx, records.TableWorkOrders,
		records.Predicate{Eq: records.Row{"review_id": "rev-9"}},
		records.Row{"review_id": nil})
	require.NoError(t, err)
	require.Len(t, updated, 2)
	for _, row := range updated {
		assert.Nil(t, row["review_id"])
	}

	// Untouched row keeps its link.
	got, err := records.SelectOne(ctx, st, records.TableWorkOrders, records.AnyByID("wo-3"))
	require.NoError(t, err)
	assert.Equal(t, "rev-other", got["review_id"])
}

func TestActiveOnly_ExcludesSoftDeletedRows(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	live := insertTechnician(t, st, "Dana", "50.00")
	dead := insertTechnician(t, st, "Riley", "30.00")

	_, err := st.Update(ctx, records.TableTechnicians,
		records.ByID(dead["id"].(string)), records.SoftDeletePatch(time.Now()))
	require.NoError(t, err)

	rows, err := st.Select(ctx, records.TableTechnicians, records.Active(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, live["id"], rows[0]["id"])
}
