/*
Package views is the view consistency / invalidation graph.

PURPOSE:
  A static, closed mapping from "a mutation on entity E" to the set of
  derived read-views that are stale afterwards. The pipeline calls
  Invalidate exactly once per successful mutation; consumers either block
  on EnsureFresh before trusting a view or explicitly read stale.

WHY A TABLE, NOT PER-CALL LISTS:
  Ad-hoc string-keyed invalidation lists drift: a call site forgets the
  technician summary, a new view never gets added to the delete path.
  Here the whole set for a mutation kind is enumerated once, type-checked,
  and applied atomically - never a subset.

SEE ALSO:
  - pipeline/pipeline.go: The single caller of Invalidate
*/
package views

import (
	"context"
	"sync"
)

// =============================================================================
// VIEWS & MUTATIONS
// =============================================================================

// View names one derived read-view.
type View string

const (
	JobList            View = "job_list"
	JobFinancials      View = "job_financials"
	TechnicianSummaries View = "technician_summaries"
	EstimateList       View = "estimate_list"
	PartList           View = "part_list"
	ReviewList         View = "review_list"
	UnreviewedJobs     View = "unreviewed_jobs"
	MonthlySummary     View = "monthly_summary"
	TechnicianList     View = "technician_list"
	TechnicianMonthly  View = "technician_monthly"
	PaymentMethodList  View = "payment_method_list"
	ReviewTypeList     View = "review_type_list"
)

// Mutation names the entity a create/edit/delete touched. All three
// operations on an entity invalidate the same set.
type Mutation string

const (
	MutateJob           Mutation = "job"
	MutateEstimate      Mutation = "estimate"
	MutatePart          Mutation = "part"
	MutateReview        Mutation = "review"
	MutateTechnician    Mutation = "technician"
	MutatePaymentMethod Mutation = "payment_method"
	MutateReviewType    Mutation = "review_type"
)

// Sets is the invalidation graph. Closed set: adding a view or a mutation
// kind means editing this table, nowhere else.
var Sets = map[Mutation][]View{
	MutateJob: {JobList, JobFinancials, TechnicianSummaries},
	// The estimate full-removal cascade soft-deletes a sibling job, so the
	// estimate set covers the job financial views too.
	MutateEstimate: {EstimateList, JobList, JobFinancials, TechnicianSummaries},
	MutatePart:     {PartList, JobFinancials},
	MutateReview:   {ReviewList, UnreviewedJobs, JobList, MonthlySummary, EstimateList},
	MutateTechnician: {TechnicianList, TechnicianMonthly},
	MutatePaymentMethod: {PaymentMethodList},
	MutateReviewType:    {ReviewTypeList},
}

// =============================================================================
// TRACKER
// =============================================================================

// RefreshFunc re-fetches one view's backing data.
type RefreshFunc func(ctx context.Context) error

// Tracker tracks which views are trustworthy. Marking is atomic per
// mutation: the whole set flips stale under one lock acquisition, never a
// subset. Each view carries a generation counter so an invalidation that
// lands while a refresh is in flight is never erased by that refresh.
type Tracker struct {
	mu         sync.RWMutex
	stale      map[View]bool
	gen        map[View]uint64
	refreshers map[View]RefreshFunc
}

func NewTracker() *Tracker {
	return &Tracker{
		stale:      make(map[View]bool),
		gen:        make(map[View]uint64),
		refreshers: make(map[View]RefreshFunc),
	}
}

// Invalidate marks every view in the mutation's set stale, atomically.
func (t *Tracker) Invalidate(m Mutation) {
	set := Sets[m]
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, v := range set {
		t.stale[v] = true
		t.gen[v]++
	}
}

// IsStale reports whether a view must be refreshed before it is trusted.
func (t *Tracker) IsStale(v View) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stale[v]
}

// MarkFresh clears the stale flag after an external refresh.
func (t *Tracker) MarkFresh(v View) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stale[v] = false
}

// Register installs the refresher EnsureFresh runs for a view.
func (t *Tracker) Register(v View, fn RefreshFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshers[v] = fn
}

// EnsureFresh blocks until the view is trustworthy: if stale and a
// refresher is registered, it runs the refresher and clears the flag.
// A mutation completing while the refresher runs bumps the view's
// generation, so its invalidation survives: the view stays stale and the
// next EnsureFresh re-fetches. Consumers that skip EnsureFresh are
// explicitly opting into stale reads.
func (t *Tracker) EnsureFresh(ctx context.Context, v View) error {
	t.mu.RLock()
	stale := t.stale[v]
	gen := t.gen[v]
	fn := t.refreshers[v]
	t.mu.RUnlock()

	if !stale {
		return nil
	}
	if fn != nil {
		if err := fn(ctx); err != nil {
			return err
		}
	}

	t.mu.Lock()
	if t.gen[v] == gen {
		t.stale[v] = false
	}
	t.mu.Unlock()
	return nil
}
