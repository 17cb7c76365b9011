package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/fieldservice-engine/money"
	"github.com/warp/fieldservice-engine/records"
	"github.com/warp/fieldservice-engine/views"
)

func jobPartsTotal(t *testing.T, f *fixture, id records.JobID) money.Value {
	t.Helper()
	view, err := f.p.GetJob(context.Background(), id)
	require.NoError(t, err)
	return view.Job.PartsTotalCost
}

func TestAddPart_DerivesAmountAndUpdatesJobTotal(t *testing.T) {
	// GIVEN: a job with no parts
	// WHEN: adding 3 units at 19.99
	// THEN: the part's amount is 59.97 and the job's parts total matches

	f := newFixture(t)
	ctx := context.Background()
	_, job, err := f.p.CreateJob(ctx, jobInput(f.tech.ID, 500, 0))
	require.NoError(t, err)

	part, err := f.p.AddPart(ctx, job.ID, money.FromFloat(19.99), 3)
	require.NoError(t, err)

	assert.True(t, part.Amount.Equal(money.FromFloat(59.97)),
		"amount %v should be unit_cost*quantity", part.Amount)
	assert.True(t, jobPartsTotal(t, f, job.ID).Equal(money.FromFloat(59.97)))
	assert.True(t, f.tracker.IsStale(views.PartList))
	assert.True(t, f.tracker.IsStale(views.JobFinancials),
		"parts feed the financial derivation, so figures go stale")
}

func TestAddPart_RejectsDeletedJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, job, err := f.p.CreateJob(ctx, jobInput(f.tech.ID, 500, 0))
	require.NoError(t, err)
	require.NoError(t, f.p.DeleteJob(ctx, job.ID))

	_, err = f.p.AddPart(ctx, job.ID, money.FromFloat(10), 1)
	assert.True(t, records.IsNotFound(err), "parts cannot attach to a deleted job")
}

func TestEditPart_RederivesAmountAndTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, job, err := f.p.CreateJob(ctx, jobInput(f.tech.ID, 500, 0))
	require.NoError(t, err)
	part, err := f.p.AddPart(ctx, job.ID, money.FromFloat(20), 2)
	require.NoError(t, err)

	qty := int64(5)
	require.NoError(t, f.p.EditPart(ctx, part.ID, nil, &qty))

	assert.True(t, jobPartsTotal(t, f, job.ID).Equal(money.FromFloat(100)),
		"total should re-derive from 20.00 x 5")
}

func TestDeletePart_ExcludedFromTotal(t *testing.T) {
	// The denormalized total sums ACTIVE parts only.

	f := newFixture(t)
	ctx := context.Background()
	_, job, err := f.p.CreateJob(ctx, jobInput(f.tech.ID, 500, 0))
	require.NoError(t, err)

	keep, err := f.p.AddPart(ctx, job.ID, money.FromFloat(45.50), 1)
	require.NoError(t, err)
	drop, err := f.p.AddPart(ctx, job.ID, money.FromFloat(12.25), 4)
	require.NoError(t, err)
	require.NoError(t, f.p.DeletePart(ctx, drop.ID))

	assert.True(t, jobPartsTotal(t, f, job.ID).Equal(keep.Amount))

	parts, err := f.p.ListParts(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, keep.ID, parts[0].ID)
}

func TestEditPart_NoChanges_IsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, job, err := f.p.CreateJob(ctx, jobInput(f.tech.ID, 500, 0))
	require.NoError(t, err)
	part, err := f.p.AddPart(ctx, job.ID, money.FromFloat(10), 1)
	require.NoError(t, err)
	f.tracker.MarkFresh(views.PartList)

	require.NoError(t, f.p.EditPart(ctx, part.ID, nil, nil))
	assert.False(t, f.tracker.IsStale(views.PartList))
}
