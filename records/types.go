/*
Package records defines the field-service record graph and the generic
store contract it is persisted through.

PURPOSE:
  This is the core data model: work orders, jobs, estimates, parts,
  technicians, reviews, and the two lookup entities (payment methods,
  review types). A "job" on the dashboard is really a work-order row plus
  a job row; an "estimate" is a work-order row plus an estimate row. The
  WorkOrder is the anchor; exactly one of {Job, Estimate} attaches to it.

KEY INVARIANTS (enforced by the pipeline package, not the store):
  - Job.CommissionRate is a SNAPSHOT of the technician's default rate at
    create/edit time. Later technician edits never change it.
  - Job.PartsTotalCost is the denormalized sum of the job's active parts.
  - A soft-deleted row (DeletedAt set) is excluded from active listings
    and aggregates but never physically removed.
  - No WorkOrder may keep a ReviewID pointing at a soft-deleted review.

SEE ALSO:
  - store.go: The generic insert/update/select contract
  - errors.go: Error taxonomy for pipeline and cascade failures
  - pipeline/: Composite mutations maintaining the invariants
*/
package records

import (
	"time"

	"github.com/warp/fieldservice-engine/money"
)

// =============================================================================
// IDENTIFIERS & TABLES
// =============================================================================

type WorkOrderID string
type JobID string
type EstimateID string
type PartID string
type TechnicianID string
type ReviewID string
type PaymentMethodID string
type ReviewTypeID string

// Table names the stored tables. Every entity maps to one table with a
// stable `id` column and a nullable `deleted_at` column.
type Table string

const (
	TableWorkOrders     Table = "work_orders"
	TableJobs           Table = "jobs"
	TableEstimates      Table = "estimates"
	TableParts          Table = "parts"
	TableTechnicians    Table = "technicians"
	TableReviews        Table = "reviews"
	TablePaymentMethods Table = "payment_methods"
	TableReviewTypes    Table = "review_types"
)

// =============================================================================
// STATUS ENUMS
// =============================================================================

type JobStatus string

const (
	JobDone      JobStatus = "done"
	JobPending   JobStatus = "pending"
	JobCancelled JobStatus = "cancelled"
)

type EstimateStatus string

const (
	EstimateFollowUp EstimateStatus = "follow_up"
	EstimateApproved EstimateStatus = "approved"
	EstimateDenied   EstimateStatus = "denied"
)

// =============================================================================
// ENTITIES
// =============================================================================

// WorkOrder is the anchor record for a unit of work. It never exists
// meaningfully without exactly one Job or Estimate attached.
type WorkOrder struct {
	ID           WorkOrderID
	Title        string
	Date         time.Time
	TechnicianID TechnicianID
	Address      string
	Description  string
	Notes        string
	ReviewID     *ReviewID
	DeletedAt    *time.Time
}

// Job carries the billable side of a work order. CommissionRate is a
// snapshot percentage in [0,100], taken from the technician at the time
// the job was created or last re-assigned.
type Job struct {
	ID             JobID
	WorkOrderID    WorkOrderID
	Subtotal       money.Value
	Tips           money.Value
	PartsTotalCost money.Value
	CommissionRate money.Value
	PaymentMode    string
	Status         JobStatus
	DeletedAt      *time.Time
}

type Estimate struct {
	ID              EstimateID
	WorkOrderID     WorkOrderID
	EstimatedAmount money.Value
	Status          EstimateStatus
	HandledBy       string
	DeletedAt       *time.Time
}

// Part is a material line on a job. Amount is derived: unit cost times
// quantity, rounded to 2dp.
type Part struct {
	ID        PartID
	JobID     JobID
	UnitCost  money.Value
	Quantity  int64
	Amount    money.Value
	DeletedAt *time.Time
}

type Technician struct {
	ID                    TechnicianID
	Name                  string
	DefaultCommissionRate money.Value
	DeletedAt             *time.Time
}

// ReviewRecord is linked FROM work orders via their review_id column.
type ReviewRecord struct {
	ID           ReviewID
	ReviewTypeID *ReviewTypeID
	Notes        string
	DeletedAt    *time.Time
}

type PaymentMethod struct {
	ID        PaymentMethodID
	Name      string
	DeletedAt *time.Time
}

type ReviewType struct {
	ID        ReviewTypeID
	Name      string
	DeletedAt *time.Time
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Active reports whether the entity is still live. Soft-delete is the
// only state transition: active -> deleted, terminal. There is no
// undelete.
func (w WorkOrder) Active() bool     { return w.DeletedAt == nil }
func (j Job) Active() bool           { return j.DeletedAt == nil }
func (e Estimate) Active() bool      { return e.DeletedAt == nil }
func (p Part) Active() bool          { return p.DeletedAt == nil }
func (t Technician) Active() bool    { return t.DeletedAt == nil }
func (r ReviewRecord) Active() bool  { return r.DeletedAt == nil }
func (m PaymentMethod) Active() bool { return m.DeletedAt == nil }
func (rt ReviewType) Active() bool   { return rt.DeletedAt == nil }

// SoftDeletePatch is the one authoritative way a row transitions to
// deleted: an update setting deleted_at. No physical delete exists.
func SoftDeletePatch(at time.Time) Row {
	return Row{"deleted_at": at.UTC().Format(time.RFC3339)}
}

// PartAmount derives a part's amount from its unit cost and quantity.
func PartAmount(unitCost money.Value, quantity int64) money.Value {
	return unitCost.Mul(money.FromInt(quantity)).Round2()
}
