/*
Package pipeline orchestrates every mutation of the record graph.

PURPOSE:
  A "job" is a work-order row plus a job row; an "estimate" is a
  work-order row plus an estimate row. This package is the single place
  where those two-entity writes happen, so the compensating-rollback
  contract is enforced once instead of re-implemented per call site.

CREATE CONTRACT:
  1. Insert the anchor (work order). Failure here aborts cleanly.
  2. Insert the dependent row referencing the anchor.
  3. If step 2 fails, compensating soft-delete of the anchor, then
     surface the original error. If the compensation itself fails, both
     errors are reported via CompositeRollbackError - never swallowed.

EDIT CONTRACT:
  The two sides of a record may be patched independently, in any
  combination including neither. Partial failure is surfaced but NOT
  rolled back: edits are field-level patches, each side independently
  well-formed before and after.

SEQUENCING:
  Within one mutation, step 2 never begins before step 1's result is
  known, and once the anchor is committed the pipeline runs to completion
  (success or compensation) before returning. No goroutines inside a
  mutation.

INVALIDATION:
  Every successful mutation ends with exactly one Tracker.Invalidate
  call covering the whole view set for its mutation kind.

SEE ALSO:
  - cascade.go: Cascading soft-deletes
  - parts.go: Part maintenance and the denormalized parts total
  - records/errors.go: Error taxonomy
*/
package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/fieldservice-engine/money"
	"github.com/warp/fieldservice-engine/records"
	"github.com/warp/fieldservice-engine/views"
)

// Pipeline performs composite mutations against the record store and
// keeps the invalidation tracker in step with them.
type Pipeline struct {
	store records.Store
	views *views.Tracker
	log   logrus.FieldLogger
	now   func() time.Time
}

type Option func(*Pipeline)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Pipeline) { p.log = log }
}

func New(store records.Store, tracker *views.Tracker, opts ...Option) *Pipeline {
	p := &Pipeline{
		store: store,
		views: tracker,
		log:   logrus.StandardLogger(),
		now:   time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// =============================================================================
// INPUTS
// =============================================================================

// WorkOrderInput is the anchor side of a composite create.
type WorkOrderInput struct {
	Title        string
	Date         time.Time
	TechnicianID records.TechnicianID
	Address      string
	Description  string
	Notes        string
}

// JobInput is the dependent side of a job create. CommissionRate nil
// means "snapshot the technician's current default rate".
type JobInput struct {
	Subtotal       money.Value
	Tips           money.Value
	PaymentMode    string
	Status         records.JobStatus
	CommissionRate *money.Value
}

type CreateJobInput struct {
	WorkOrder WorkOrderInput
	Job       JobInput
}

type EstimateInput struct {
	EstimatedAmount money.Value
	Status          records.EstimateStatus
	HandledBy       string
}

type CreateEstimateInput struct {
	WorkOrder WorkOrderInput
	Estimate  EstimateInput
}

// EditInput carries field-level patches for either side of a record.
// Both nil/empty is "no updates provided", which is a no-op, not an
// error.
type EditInput struct {
	WorkOrder records.Row
	Dependent records.Row
}

// =============================================================================
// COMPOSITE CREATES
// =============================================================================

// CreateJob creates the work-order + job pair as one logical unit.
func (p *Pipeline) CreateJob(ctx context.Context, in CreateJobInput) (records.WorkOrder, records.Job, error) {
	// Snapshot the commission rate before touching the store: a missing
	// technician aborts with nothing written.
	rate, err := p.snapshotRate(ctx, in.WorkOrder.TechnicianID, in.Job.CommissionRate)
	if err != nil {
		return records.WorkOrder{}, records.Job{}, err
	}

	wo, err := p.insertWorkOrder(ctx, in.WorkOrder)
	if err != nil {
		return records.WorkOrder{}, records.Job{}, err
	}

	job := records.Job{
		WorkOrderID:    wo.ID,
		Subtotal:       in.Job.Subtotal,
		Tips:           in.Job.Tips,
		PartsTotalCost: money.Zero(),
		CommissionRate: rate,
		PaymentMode:    in.Job.PaymentMode,
		Status:         in.Job.Status,
	}
	row, err := p.store.Insert(ctx, records.TableJobs, job.ToRow())
	if err != nil {
		return records.WorkOrder{}, records.Job{}, p.compensate(ctx, wo.ID, &records.StoreError{
			Op: "insert", Table: records.TableJobs, Step: "insert job", Err: err,
		})
	}
	job, err = records.JobFromRow(row)
	if err != nil {
		return records.WorkOrder{}, records.Job{}, err
	}

	p.views.Invalidate(views.MutateJob)
	return wo, job, nil
}

// CreateEstimate creates the work-order + estimate pair as one logical unit.
func (p *Pipeline) CreateEstimate(ctx context.Context, in CreateEstimateInput) (records.WorkOrder, records.Estimate, error) {
	wo, err := p.insertWorkOrder(ctx, in.WorkOrder)
	if err != nil {
		return records.WorkOrder{}, records.Estimate{}, err
	}

	est := records.Estimate{
		WorkOrderID:     wo.ID,
		EstimatedAmount: in.Estimate.EstimatedAmount,
		Status:          in.Estimate.Status,
		HandledBy:       in.Estimate.HandledBy,
	}
	row, err := p.store.Insert(ctx, records.TableEstimates, est.ToRow())
	if err != nil {
		return records.WorkOrder{}, records.Estimate{}, p.compensate(ctx, wo.ID, &records.StoreError{
			Op: "insert", Table: records.TableEstimates, Step: "insert estimate", Err: err,
		})
	}
	est, err = records.EstimateFromRow(row)
	if err != nil {
		return records.WorkOrder{}, records.Estimate{}, err
	}

	p.views.Invalidate(views.MutateEstimate)
	return wo, est, nil
}

func (p *Pipeline) insertWorkOrder(ctx context.Context, in WorkOrderInput) (records.WorkOrder, error) {
	wo := records.WorkOrder{
		Title:        in.Title,
		Date:         in.Date,
		TechnicianID: in.TechnicianID,
		Address:      in.Address,
		Description:  in.Description,
		Notes:        in.Notes,
	}
	row, err := p.store.Insert(ctx, records.TableWorkOrders, wo.ToRow())
	if err != nil {
		return records.WorkOrder{}, &records.StoreError{
			Op: "insert", Table: records.TableWorkOrders, Step: "insert work order", Err: err,
		}
	}
	return records.WorkOrderFromRow(row), nil
}

// compensate soft-deletes the anchor after a failed dependent insert.
// Best-effort: if the compensation also fails, both errors are retained.
func (p *Pipeline) compensate(ctx context.Context, anchorID records.WorkOrderID, cause error) error {
	_, err := p.store.Update(ctx, records.TableWorkOrders,
		records.AnyByID(string(anchorID)), records.SoftDeletePatch(p.now()))
	if err != nil {
		p.log.WithFields(logrus.Fields{
			"work_order_id": anchorID,
			"cause":         cause,
			"rollback_err":  err,
		}).Error("compensating delete failed; anchor may be orphaned")
		return &records.CompositeRollbackError{
			AnchorTable: records.TableWorkOrders,
			AnchorID:    string(anchorID),
			Cause:       cause,
			RollbackErr: err,
		}
	}
	p.log.WithFields(logrus.Fields{
		"work_order_id": anchorID,
		"cause":         cause,
	}).Warn("dependent insert failed; work order rolled back")
	return cause
}

// snapshotRate resolves the commission rate for a job: an explicit
// override wins, otherwise the technician's current default is copied.
// The snapshot never changes when the technician is later edited.
func (p *Pipeline) snapshotRate(ctx context.Context, techID records.TechnicianID, override *money.Value) (money.Value, error) {
	if override != nil {
		return *override, nil
	}
	row, err := records.SelectOne(ctx, p.store, records.TableTechnicians, records.ByID(string(techID)))
	if err != nil {
		return money.Zero(), &records.StoreError{
			Op: "select", Table: records.TableTechnicians, Step: "snapshot commission rate", Err: err,
		}
	}
	tech, err := records.TechnicianFromRow(row)
	if err != nil {
		return money.Zero(), err
	}
	return tech.DefaultCommissionRate, nil
}

// =============================================================================
// EDITS
// =============================================================================

// EditJob patches the work-order and/or job side of an existing job. If
// the work-order patch re-assigns the technician and the job patch does
// not carry an explicit commission_rate, the new technician's default is
// re-snapshotted. Partial failure is surfaced, not rolled back.
func (p *Pipeline) EditJob(ctx context.Context, id records.JobID, in EditInput) error {
	if len(in.WorkOrder) == 0 && len(in.Dependent) == 0 {
		return nil // no updates provided
	}

	row, err := records.SelectOne(ctx, p.store, records.TableJobs, records.ByID(string(id)))
	if err != nil {
		return &records.StoreError{Op: "select", Table: records.TableJobs, Step: "load job", Err: err}
	}
	job, err := records.JobFromRow(row)
	if err != nil {
		return err
	}

	jobPatch := copyPatch(in.Dependent)
	if techID, ok := in.WorkOrder["technician_id"]; ok {
		if _, explicit := jobPatch["commission_rate"]; !explicit {
			rate, err := p.snapshotRate(ctx, records.TechnicianID(asString(techID)), nil)
			if err != nil {
				return err
			}
			jobPatch["commission_rate"] = rate.Round2().String()
		}
	}

	applied := false
	if len(in.WorkOrder) > 0 {
		if _, err := p.store.Update(ctx, records.TableWorkOrders,
			records.ByID(string(job.WorkOrderID)), in.WorkOrder); err != nil {
			return &records.StoreError{Op: "update", Table: records.TableWorkOrders, Step: "update work order", Err: err}
		}
		applied = true
	}
	if len(jobPatch) > 0 {
		if _, err := p.store.Update(ctx, records.TableJobs,
			records.ByID(string(id)), jobPatch); err != nil {
			// Work-order side may already be applied; surfaced, not rolled
			// back.
			if applied {
				p.views.Invalidate(views.MutateJob)
			}
			return &records.StoreError{Op: "update", Table: records.TableJobs, Step: "update job", Err: err}
		}
		applied = true
	}

	if applied {
		p.views.Invalidate(views.MutateJob)
	}
	return nil
}

// EditEstimate patches the work-order and/or estimate side. Same
// contract as EditJob.
func (p *Pipeline) EditEstimate(ctx context.Context, id records.EstimateID, in EditInput) error {
	if len(in.WorkOrder) == 0 && len(in.Dependent) == 0 {
		return nil
	}

	row, err := records.SelectOne(ctx, p.store, records.TableEstimates, records.ByID(string(id)))
	if err != nil {
		return &records.StoreError{Op: "select", Table: records.TableEstimates, Step: "load estimate", Err: err}
	}
	est, err := records.EstimateFromRow(row)
	if err != nil {
		return err
	}

	applied := false
	if len(in.WorkOrder) > 0 {
		if _, err := p.store.Update(ctx, records.TableWorkOrders,
			records.ByID(string(est.WorkOrderID)), in.WorkOrder); err != nil {
			return &records.StoreError{Op: "update", Table: records.TableWorkOrders, Step: "update work order", Err: err}
		}
		applied = true
	}
	if len(in.Dependent) > 0 {
		if _, err := p.store.Update(ctx, records.TableEstimates,
			records.ByID(string(id)), in.Dependent); err != nil {
			if applied {
				p.views.Invalidate(views.MutateEstimate)
			}
			return &records.StoreError{Op: "update", Table: records.TableEstimates, Step: "update estimate", Err: err}
		}
		applied = true
	}

	if applied {
		p.views.Invalidate(views.MutateEstimate)
	}
	return nil
}

// =============================================================================
// TECHNICIANS
// =============================================================================

func (p *Pipeline) CreateTechnician(ctx context.Context, name string, defaultRate money.Value) (records.Technician, error) {
	tech := records.Technician{Name: name, DefaultCommissionRate: defaultRate}
	row, err := p.store.Insert(ctx, records.TableTechnicians, tech.ToRow())
	if err != nil {
		return records.Technician{}, &records.StoreError{
			Op: "insert", Table: records.TableTechnicians, Step: "insert technician", Err: err,
		}
	}
	tech, err = records.TechnicianFromRow(row)
	if err != nil {
		return records.Technician{}, err
	}
	p.views.Invalidate(views.MutateTechnician)
	return tech, nil
}

// EditTechnician changes a technician's name and/or default rate.
// Historical jobs keep their snapshot rate; nothing cascades.
func (p *Pipeline) EditTechnician(ctx context.Context, id records.TechnicianID, patch records.Row) error {
	if len(patch) == 0 {
		return nil
	}
	updated, err := p.store.Update(ctx, records.TableTechnicians, records.ByID(string(id)), patch)
	if err != nil {
		return &records.StoreError{Op: "update", Table: records.TableTechnicians, Step: "update technician", Err: err}
	}
	if len(updated) == 0 {
		return records.ErrNotFound
	}
	p.views.Invalidate(views.MutateTechnician)
	return nil
}

// =============================================================================
// REVIEWS
// =============================================================================

// CreateReview inserts a review record and links it from a work order.
// Same two-step contract as the composite creates: a failed link rolls
// the review back so no unlinked review row survives.
func (p *Pipeline) CreateReview(ctx context.Context, workOrderID records.WorkOrderID, typeID *records.ReviewTypeID, notes string) (records.ReviewRecord, error) {
	rev := records.ReviewRecord{ReviewTypeID: typeID, Notes: notes}
	row, err := p.store.Insert(ctx, records.TableReviews, rev.ToRow())
	if err != nil {
		return records.ReviewRecord{}, &records.StoreError{
			Op: "insert", Table: records.TableReviews, Step: "insert review", Err: err,
		}
	}
	rev = records.ReviewFromRow(row)

	linked, err := p.store.Update(ctx, records.TableWorkOrders,
		records.ByID(string(workOrderID)), records.Row{"review_id": string(rev.ID)})
	if err == nil && len(linked) == 0 {
		err = records.ErrNotFound
	}
	if err != nil {
		cause := &records.StoreError{
			Op: "update", Table: records.TableWorkOrders, Step: "link review to work order", Err: err,
		}
		if _, rbErr := p.store.Update(ctx, records.TableReviews,
			records.AnyByID(string(rev.ID)), records.SoftDeletePatch(p.now())); rbErr != nil {
			p.log.WithFields(logrus.Fields{
				"review_id":    rev.ID,
				"cause":        cause,
				"rollback_err": rbErr,
			}).Error("review rollback failed after link failure")
			return records.ReviewRecord{}, &records.CompositeRollbackError{
				AnchorTable: records.TableReviews,
				AnchorID:    string(rev.ID),
				Cause:       cause,
				RollbackErr: rbErr,
			}
		}
		return records.ReviewRecord{}, cause
	}

	p.views.Invalidate(views.MutateReview)
	return rev, nil
}

// LinkReview points an existing work order at an existing review. Both
// must be live; re-linking replaces any previous reference.
func (p *Pipeline) LinkReview(ctx context.Context, workOrderID records.WorkOrderID, reviewID records.ReviewID) error {
	if _, err := records.SelectOne(ctx, p.store, records.TableReviews, records.ByID(string(reviewID))); err != nil {
		return &records.StoreError{Op: "select", Table: records.TableReviews, Step: "load review", Err: err}
	}
	linked, err := p.store.Update(ctx, records.TableWorkOrders,
		records.ByID(string(workOrderID)), records.Row{"review_id": string(reviewID)})
	if err != nil {
		return &records.StoreError{Op: "update", Table: records.TableWorkOrders, Step: "link review to work order", Err: err}
	}
	if len(linked) == 0 {
		return records.ErrNotFound
	}
	p.views.Invalidate(views.MutateReview)
	return nil
}

// =============================================================================
// LOOKUP ENTITIES
// =============================================================================

func (p *Pipeline) CreatePaymentMethod(ctx context.Context, name string) (records.PaymentMethod, error) {
	row, err := p.store.Insert(ctx, records.TablePaymentMethods, records.PaymentMethod{Name: name}.ToRow())
	if err != nil {
		return records.PaymentMethod{}, &records.StoreError{
			Op: "insert", Table: records.TablePaymentMethods, Step: "insert payment method", Err: err,
		}
	}
	p.views.Invalidate(views.MutatePaymentMethod)
	return records.PaymentMethodFromRow(row), nil
}

func (p *Pipeline) RenamePaymentMethod(ctx context.Context, id records.PaymentMethodID, name string) error {
	updated, err := p.store.Update(ctx, records.TablePaymentMethods,
		records.ByID(string(id)), records.Row{"name": name})
	if err != nil {
		return &records.StoreError{Op: "update", Table: records.TablePaymentMethods, Step: "rename payment method", Err: err}
	}
	if len(updated) == 0 {
		return records.ErrNotFound
	}
	p.views.Invalidate(views.MutatePaymentMethod)
	return nil
}

func (p *Pipeline) CreateReviewType(ctx context.Context, name string) (records.ReviewType, error) {
	row, err := p.store.Insert(ctx, records.TableReviewTypes, records.ReviewType{Name: name}.ToRow())
	if err != nil {
		return records.ReviewType{}, &records.StoreError{
			Op: "insert", Table: records.TableReviewTypes, Step: "insert review type", Err: err,
		}
	}
	p.views.Invalidate(views.MutateReviewType)
	return records.ReviewTypeFromRow(row), nil
}

func (p *Pipeline) RenameReviewType(ctx context.Context, id records.ReviewTypeID, name string) error {
	updated, err := p.store.Update(ctx, records.TableReviewTypes,
		records.ByID(string(id)), records.Row{"name": name})
	if err != nil {
		return &records.StoreError{Op: "update", Table: records.TableReviewTypes, Step: "rename review type", Err: err}
	}
	if len(updated) == 0 {
		return records.ErrNotFound
	}
	p.views.Invalidate(views.MutateReviewType)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func copyPatch(patch records.Row) records.Row {
	out := make(records.Row, len(patch))
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
