package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/fieldservice-engine/money"
	"github.com/warp/fieldservice-engine/pipeline"
	"github.com/warp/fieldservice-engine/records"
	"github.com/warp/fieldservice-engine/views"
)

func createEstimate(t *testing.T, f *fixture) (records.WorkOrder, records.Estimate) {
	t.Helper()
	wo, est, err := f.p.CreateEstimate(context.Background(), pipeline.CreateEstimateInput{
		WorkOrder: pipeline.WorkOrderInput{
			Title:        "Furnace quote",
			Date:         time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC),
			TechnicianID: f.tech.ID,
		},
		Estimate: pipeline.EstimateInput{
			EstimatedAmount: money.FromFloat(1200),
			Status:          records.EstimateFollowUp,
		},
	})
	require.NoError(t, err)
	return wo, est
}

func countActive(t *testing.T, s records.Store, table records.Table) int {
	t.Helper()
	rows, err := s.Select(context.Background(), table, records.Active(), nil)
	require.NoError(t, err)
	return len(rows)
}

// =============================================================================
// JOB / TECHNICIAN DELETES (no cascade)
// =============================================================================

func TestDeleteJob_LeavesWorkOrderActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wo, job, err := f.p.CreateJob(ctx, jobInput(f.tech.ID, 500, 0))
	require.NoError(t, err)

	require.NoError(t, f.p.DeleteJob(ctx, job.ID))

	assert.Zero(t, countActive(t, f.store, records.TableJobs))
	_, err = records.SelectOne(ctx, f.store, records.TableWorkOrders, records.ByID(string(wo.ID)))
	assert.NoError(t, err, "work order must stay active after its job is deleted")
}

func TestDeleteJob_Missing_ReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	err := f.p.DeleteJob(context.Background(), "job-ghost")
	assert.True(t, records.IsNotFound(err), "expected not-found, got %v", err)
}

func TestDeleteTechnician_JobsKeepSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, job, err := f.p.CreateJob(ctx, jobInput(f.tech.ID, 500, 0))
	require.NoError(t, err)

	require.NoError(t, f.p.DeleteTechnician(ctx, f.tech.ID))

	view, err := f.p.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, f.tech.ID, view.WorkOrder.TechnicianID,
		"job keeps its technician reference after the technician is deleted")
	assert.True(t, view.Job.CommissionRate.Equal(money.FromFloat(50)))
}

// =============================================================================
// ESTIMATE FULL-REMOVAL CASCADE
// =============================================================================

func TestDeleteEstimate_CascadesJobAndWorkOrder(t *testing.T) {
	// GIVEN: an estimate whose work order later spawned a job
	// WHEN: deleting the estimate
	// THEN: estimate, job and work order are all soft-deleted

	f := newFixture(t)
	ctx := context.Background()
	wo, est := createEstimate(t, f)

	// A job converted from the estimate shares the work order.
	job := records.Job{
		WorkOrderID:    wo.ID,
		Subtotal:       money.FromFloat(900),
		Tips:           money.Zero(),
		PartsTotalCost: money.Zero(),
		CommissionRate: money.FromFloat(50),
		Status:         records.JobDone,
	}
	_, err := f.store.Insert(ctx, records.TableJobs, job.ToRow())
	require.NoError(t, err)

	require.NoError(t, f.p.DeleteEstimate(ctx, est.ID))

	assert.Zero(t, countActive(t, f.store, records.TableEstimates))
	assert.Zero(t, countActive(t, f.store, records.TableJobs))
	assert.Zero(t, countActive(t, f.store, records.TableWorkOrders))
	assert.True(t, f.tracker.IsStale(views.EstimateList))
	assert.True(t, f.tracker.IsStale(views.JobList), "the cascaded job invalidates job views too")
	assert.True(t, f.tracker.IsStale(views.JobFinancials),
		"the deleted job's figures leave the aggregates")
}

func TestDeleteEstimate_WithoutJob_StillRemovesWorkOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, est := createEstimate(t, f)

	require.NoError(t, f.p.DeleteEstimate(ctx, est.ID))
	assert.Zero(t, countActive(t, f.store, records.TableWorkOrders))
}

func TestDeleteEstimate_LaterStepFails_EarlierStepsStand(t *testing.T) {
	// Soft-deletes are monotonic: a failed work-order step leaves the
	// estimate deleted and reports exactly what completed.

	f := newFixture(t)
	ctx := context.Background()
	_, est := createEstimate(t, f)

	f.flaky.failUpdate[records.TableWorkOrders] = errors.New("timeout")
	err := f.p.DeleteEstimate(ctx, est.ID)
	require.Error(t, err)

	var step *records.CascadeStepError
	require.ErrorAs(t, err, &step)
	assert.Equal(t, "delete work order", step.Failed)
	assert.Contains(t, step.Done, "estimate deleted")
	assert.Contains(t, step.Done, "job deleted")

	assert.Zero(t, countActive(t, f.store, records.TableEstimates), "estimate step stands")
	assert.Equal(t, 1, countActive(t, f.store, records.TableWorkOrders), "work order survives the failed step")
}

// =============================================================================
// REVIEW DELETE + UNLINK
// =============================================================================

func TestDeleteReview_ClearsEveryReference(t *testing.T) {
	// GIVEN: a review linked from two work orders
	// WHEN: deleting the review
	// THEN: no work order references it anymore, deleted or not

	f := newFixture(t)
	ctx := context.Background()
	wo1, _, err := f.p.CreateJob(ctx, jobInput(f.tech.ID, 500, 0))
	require.NoError(t, err)
	wo2, _, err := f.p.CreateJob(ctx, jobInput(f.tech.ID, 300, 0))
	require.NoError(t, err)

	rev, err := f.p.CreateReview(ctx, wo1.ID, nil, "great work")
	require.NoError(t, err)
	_, err = f.store.Update(ctx, records.TableWorkOrders,
		records.ByID(string(wo2.ID)), records.Row{"review_id": string(rev.ID)})
	require.NoError(t, err)

	require.NoError(t, f.p.DeleteReview(ctx, rev.ID))

	refs, err := f.store.Select(ctx, records.TableWorkOrders,
		records.Predicate{Eq: records.Row{"review_id": string(rev.ID)}}, nil)
	require.NoError(t, err)
	assert.Empty(t, refs, "no dangling review references may remain")
	assert.Zero(t, countActive(t, f.store, records.TableReviews))
}

func TestDeleteReview_UnlinkFails_ReportsDanglingReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wo, _, err := f.p.CreateJob(ctx, jobInput(f.tech.ID, 500, 0))
	require.NoError(t, err)
	rev, err := f.p.CreateReview(ctx, wo.ID, nil, "great work")
	require.NoError(t, err)

	f.flaky.failUpdate[records.TableWorkOrders] = errors.New("timeout")
	err = f.p.DeleteReview(ctx, rev.ID)
	require.Error(t, err)

	var dangling *records.DanglingReferenceError
	require.ErrorAs(t, err, &dangling)
	assert.Equal(t, rev.ID, dangling.ReviewID)
	assert.Equal(t, 1, dangling.Remaining)
	assert.True(t, records.NeedsCleanup(err))

	// The review itself is already gone; only the links are stale.
	assert.Zero(t, countActive(t, f.store, records.TableReviews))
}

func TestDeleteReview_Missing_ReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	err := f.p.DeleteReview(context.Background(), "rev-ghost")
	assert.True(t, records.IsNotFound(err))
}
