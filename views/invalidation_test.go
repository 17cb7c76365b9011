package views_test

import (
	"context"
	"errors"
	"testing"

	"github.com/warp/fieldservice-engine/views"
)

// =============================================================================
// GRAPH SHAPE
// =============================================================================

func TestSets_EveryMutationHasASet(t *testing.T) {
	for _, m := range []views.Mutation{
		views.MutateJob, views.MutateEstimate, views.MutatePart,
		views.MutateReview, views.MutateTechnician,
		views.MutatePaymentMethod, views.MutateReviewType,
	} {
		if len(views.Sets[m]) == 0 {
			t.Errorf("mutation %s has an empty invalidation set", m)
		}
	}
}

func TestSets_LookupEntitiesOnlyTouchOwnListing(t *testing.T) {
	// Payment methods and review types have no financial downstream.
	cases := map[views.Mutation]views.View{
		views.MutatePaymentMethod: views.PaymentMethodList,
		views.MutateReviewType:    views.ReviewTypeList,
	}
	for m, want := range cases {
		set := views.Sets[m]
		if len(set) != 1 || set[0] != want {
			t.Errorf("%s invalidates %v, want only %s", m, set, want)
		}
	}
}

func TestSets_PartMutationsReachFinancials(t *testing.T) {
	// Parts cost feeds gross and net, so part edits must stale the
	// financial aggregates.
	if !contains(views.Sets[views.MutatePart], views.JobFinancials) {
		t.Error("part mutations must invalidate job financials")
	}
}

func contains(set []views.View, v views.View) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// =============================================================================
// TRACKER
// =============================================================================

func TestInvalidate_WholeSetFlipsStale(t *testing.T) {
	// GIVEN: a fresh tracker
	// WHEN: invalidating a job mutation
	// THEN: every view in the job set is stale, and no other view is

	tr := views.NewTracker()
	tr.Invalidate(views.MutateJob)

	for _, v := range views.Sets[views.MutateJob] {
		if !tr.IsStale(v) {
			t.Errorf("view %s should be stale after a job mutation", v)
		}
	}
	if tr.IsStale(views.PaymentMethodList) {
		t.Error("unrelated view marked stale")
	}
}

func TestMarkFresh_ClearsOneView(t *testing.T) {
	tr := views.NewTracker()
	tr.Invalidate(views.MutateJob)

	tr.MarkFresh(views.JobList)

	if tr.IsStale(views.JobList) {
		t.Error("JobList should be fresh after MarkFresh")
	}
	if !tr.IsStale(views.JobFinancials) {
		t.Error("MarkFresh must not clear the rest of the set")
	}
}

func TestEnsureFresh_RunsRefresherOnlyWhenStale(t *testing.T) {
	tr := views.NewTracker()
	calls := 0
	tr.Register(views.JobList, func(ctx context.Context) error {
		calls++
		return nil
	})

	// Fresh view: no refresh.
	if err := tr.EnsureFresh(context.Background(), views.JobList); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Fatalf("refresher ran %d times on a fresh view", calls)
	}

	// Stale view: exactly one refresh, then fresh again.
	tr.Invalidate(views.MutateJob)
	if err := tr.EnsureFresh(context.Background(), views.JobList); err != nil {
		t.Fatal(err)
	}
	if err := tr.EnsureFresh(context.Background(), views.JobList); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("refresher ran %d times, want 1", calls)
	}
}

func TestEnsureFresh_MutationDuringRefreshKeepsViewStale(t *testing.T) {
	// GIVEN: a mutation that completes while the refresher is running
	// WHEN: the refresh finishes
	// THEN: the mid-refresh invalidation survives - the view stays stale
	//       until the next re-fetch

	tr := views.NewTracker()
	tr.Register(views.JobList, func(ctx context.Context) error {
		tr.Invalidate(views.MutateJob)
		return nil
	})
	tr.Invalidate(views.MutateJob)

	if err := tr.EnsureFresh(context.Background(), views.JobList); err != nil {
		t.Fatal(err)
	}
	if !tr.IsStale(views.JobList) {
		t.Error("invalidation from the mid-refresh mutation was lost")
	}

	// A quiet refresh afterwards clears it.
	tr.Register(views.JobList, func(ctx context.Context) error { return nil })
	if err := tr.EnsureFresh(context.Background(), views.JobList); err != nil {
		t.Fatal(err)
	}
	if tr.IsStale(views.JobList) {
		t.Error("view should be fresh after an uninterrupted refresh")
	}
}

func TestEnsureFresh_FailedRefreshKeepsViewStale(t *testing.T) {
	tr := views.NewTracker()
	boom := errors.New("fetch failed")
	tr.Register(views.JobList, func(ctx context.Context) error { return boom })
	tr.Invalidate(views.MutateJob)

	if err := tr.EnsureFresh(context.Background(), views.JobList); !errors.Is(err, boom) {
		t.Fatalf("expected refresh error, got %v", err)
	}
	if !tr.IsStale(views.JobList) {
		t.Error("a failed refresh must leave the view stale")
	}
}

func TestEnsureFresh_NoRefresherJustClears(t *testing.T) {
	// Views without a registered refresher are re-fetched by the caller;
	// EnsureFresh only manages the flag.
	tr := views.NewTracker()
	tr.Invalidate(views.MutateJob)

	if err := tr.EnsureFresh(context.Background(), views.JobList); err != nil {
		t.Fatal(err)
	}
	if tr.IsStale(views.JobList) {
		t.Error("view should be fresh after EnsureFresh")
	}
}
