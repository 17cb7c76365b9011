/*
cascade.go - Cascading soft-delete protocol

PURPOSE:
  One authoritative delete path per entity, so cascade completeness is
  checked here and nowhere else. Every delete is a soft-delete: an update
  setting deleted_at. The transition is terminal - no undelete exists.

CASCADES:
  Job         -> job row only (its work order stays active)
  Estimate    -> estimate, then any sibling job on the same work order,
                 then the work order itself (the full-removal flow)
  Review      -> review row, then clear review_id on every work order
                 referencing it (dangling references are forbidden)
  Technician  -> technician row only; historical jobs keep their snapshot
                 commission_rate and technician_id

MONOTONICITY:
  Soft-deletes are monotonic. A failed later step does NOT roll back the
  earlier ones - each intermediate state is individually valid - but the
  error names what succeeded so the caller can retry the rest.
*/
package pipeline

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/warp/fieldservice-engine/records"
	"github.com/warp/fieldservice-engine/views"
)

// DeleteJob soft-deletes a job. The owning work order remains active.
func (p *Pipeline) DeleteJob(ctx context.Context, id records.JobID) error {
	updated, err := p.store.Update(ctx, records.TableJobs,
		records.ByID(string(id)), records.SoftDeletePatch(p.now()))
	if err != nil {
		return &records.StoreError{Op: "update", Table: records.TableJobs, Step: "delete job", Err: err}
	}
	if len(updated) == 0 {
		return records.ErrNotFound
	}
	p.views.Invalidate(views.MutateJob)
	return nil
}

// DeleteEstimate is the full-removal flow: the estimate, any job spawned
// from the same work order, and the work order itself are soft-deleted,
// in that order. Earlier steps stand if a later one fails.
func (p *Pipeline) DeleteEstimate(ctx context.Context, id records.EstimateID) error {
	row, err := records.SelectOne(ctx, p.store, records.TableEstimates, records.ByID(string(id)))
	if err != nil {
		return &records.StoreError{Op: "select", Table: records.TableEstimates, Step: "load estimate", Err: err}
	}
	est, err := records.EstimateFromRow(row)
	if err != nil {
		return err
	}

	patch := records.SoftDeletePatch(p.now())
	var done []string

	if _, err := p.store.Update(ctx, records.TableEstimates,
		records.ByID(string(id)), patch); err != nil {
		return &records.CascadeStepError{Failed: "delete estimate", Done: done, Err: err}
	}
	done = append(done, "estimate deleted")

	// Any live job sharing the work order goes with it.
	if _, err := p.store.Update(ctx, records.TableJobs,
		records.Predicate{Eq: records.Row{"work_order_id": string(est.WorkOrderID)}, ActiveOnly: true},
		patch); err != nil {
		return &records.CascadeStepError{Failed: "delete job", Done: done, Err: err}
	}
	done = append(done, "job deleted")

	if _, err := p.store.Update(ctx, records.TableWorkOrders,
		records.ByID(string(est.WorkOrderID)), patch); err != nil {
		return &records.CascadeStepError{Failed: "delete work order", Done: done, Err: err}
	}

	// One invalidation covers the whole cascade: the estimate set
	// includes the job views the sibling delete dirties.
	p.views.Invalidate(views.MutateEstimate)
	return nil
}

// DeleteReview soft-deletes a review and clears review_id on every work
// order referencing it, in the same logical operation. If the unlink
// fails after the delete succeeded the graph holds dangling references;
// that state is reported distinctly so operators can tell it apart from
// an ordinary delete failure.
func (p *Pipeline) DeleteReview(ctx context.Context, id records.ReviewID) error {
	updated, err := p.store.Update(ctx, records.TableReviews,
		records.ByID(string(id)), records.SoftDeletePatch(p.now()))
	if err != nil {
		return &records.StoreError{Op: "update", Table: records.TableReviews, Step: "delete review", Err: err}
	}
	if len(updated) == 0 {
		return records.ErrNotFound
	}

	// Unlink every referencing work order, soft-deleted ones included:
	// the invariant is on the column, not on row liveness.
	refPred := records.Predicate{Eq: records.Row{"review_id": string(id)}}
	if _, err := p.store.Update(ctx, records.TableWorkOrders, refPred, records.Row{"review_id": nil}); err != nil {
		remaining := -1
		if rows, cntErr := p.store.Select(ctx, records.TableWorkOrders, refPred, nil); cntErr == nil {
			remaining = len(rows)
		}
		p.log.WithFields(logrus.Fields{
			"review_id": id,
			"remaining": remaining,
		}).Error("review deleted but unlink failed; dangling references present")
		return &records.DanglingReferenceError{ReviewID: id, Remaining: remaining, Err: err}
	}

	p.views.Invalidate(views.MutateReview)
	return nil
}

// DeleteTechnician soft-deletes the technician only. No cascade to jobs:
// their snapshot rates and technician_id stay, intentionally.
func (p *Pipeline) DeleteTechnician(ctx context.Context, id records.TechnicianID) error {
	updated, err := p.store.Update(ctx, records.TableTechnicians,
		records.ByID(string(id)), records.SoftDeletePatch(p.now()))
	if err != nil {
		return &records.StoreError{Op: "update", Table: records.TableTechnicians, Step: "delete technician", Err: err}
	}
	if len(updated) == 0 {
		return records.ErrNotFound
	}
	p.views.Invalidate(views.MutateTechnician)
	return nil
}

// DeletePaymentMethod and DeleteReviewType have no downstream impact;
// they invalidate only their own listings.
func (p *Pipeline) DeletePaymentMethod(ctx context.Context, id records.PaymentMethodID) error {
	updated, err := p.store.Update(ctx, records.TablePaymentMethods,
		records.ByID(string(id)), records.SoftDeletePatch(p.now()))
	if err != nil {
		return &records.StoreError{Op: "update", Table: records.TablePaymentMethods, Step: "delete payment method", Err: err}
	}
	if len(updated) == 0 {
		return records.ErrNotFound
	}
	p.views.Invalidate(views.MutatePaymentMethod)
	return nil
}

func (p *Pipeline) DeleteReviewType(ctx context.Context, id records.ReviewTypeID) error {
	updated, err := p.store.Update(ctx, records.TableReviewTypes,
		records.ByID(string(id)), records.SoftDeletePatch(p.now()))
	if err != nil {
		return &records.StoreError{Op: "update", Table: records.TableReviewTypes, Step: "delete review type", Err: err}
	}
	if len(updated) == 0 {
		return records.ErrNotFound
	}
	p.views.Invalidate(views.MutateReviewType)
	return nil
}
