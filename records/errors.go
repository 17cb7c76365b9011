/*
errors.go - Error taxonomy for the derivation/consistency core

PURPOSE:
  All pipeline- and cascade-level error types in one place. Two of them
  mark states needing operator attention: CompositeRollbackError (a
  possibly orphaned anchor row) and DanglingReferenceError (work orders
  still pointing at a deleted review). Calling code distinguishes them
  from ordinary store failures with NeedsCleanup().

TAXONOMY:
  ValidationError          - money.ValidationError, rejected at the boundary
  StoreError               - wrapped store-level failure with step context
  CompositeRollbackError   - dependent insert failed AND compensation failed
  DanglingReferenceError   - unlink step failed after its delete succeeded

SEE ALSO:
  - pipeline/pipeline.go: Where StoreError and CompositeRollbackError arise
  - pipeline/cascade.go: Where DanglingReferenceError arises
*/
package records

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrNotFound is returned by single-row lookups with no live match.
	ErrNotFound = errors.New("record not found")
)

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// StoreError wraps an underlying store failure with the operation and
// table it happened on, so the caller knows which step of a multi-step
// mutation failed.
type StoreError struct {
	Op    string // "insert", "update", "select"
	Table Table
	Step  string // human-readable step, e.g. "insert job"
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s failed (%s %s): %v", e.Step, e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// CompositeRollbackError reports that the dependent-entity write of a
// two-step create failed AND the compensating delete of the anchor also
// failed. The anchor row may be orphaned; manual cleanup is required.
// Cause is the user-visible failure; RollbackErr must not be swallowed.
type CompositeRollbackError struct {
	AnchorTable Table
	AnchorID    string
	Cause       error
	RollbackErr error
}

func (e *CompositeRollbackError) Error() string {
	return fmt.Sprintf("create failed (%v) and rollback of %s %s also failed (%v): orphaned anchor needs cleanup",
		e.Cause, e.AnchorTable, e.AnchorID, e.RollbackErr)
}

func (e *CompositeRollbackError) Unwrap() error { return e.Cause }

// DanglingReferenceError reports that a review was soft-deleted but the
// unlink of referencing work orders failed: invariant violation window.
// Remaining counts the work orders still pointing at the deleted review
// where known (-1 when the count itself could not be read).
type DanglingReferenceError struct {
	ReviewID  ReviewID
	Remaining int
	Err       error
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("review %s deleted but unlink of referencing work orders failed (%d still linked): %v",
		e.ReviewID, e.Remaining, e.Err)
}

func (e *DanglingReferenceError) Unwrap() error { return e.Err }

// CascadeStepError reports a partial cascade: earlier soft-deletes stood
// (they are monotonic and individually valid) but a later step failed.
// Done lists the steps that succeeded so the caller can retry the rest.
type CascadeStepError struct {
	Failed string
	Done   []string
	Err    error
}

func (e *CascadeStepError) Error() string {
	if len(e.Done) == 0 {
		return fmt.Sprintf("%s failed: %v", e.Failed, e.Err)
	}
	return fmt.Sprintf("%s failed after %v succeeded - retry remaining steps: %v", e.Failed, e.Done, e.Err)
}

func (e *CascadeStepError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// NeedsCleanup reports whether err indicates a state requiring manual or
// retry intervention: an orphaned anchor or a dangling review reference.
func NeedsCleanup(err error) bool {
	var rb *CompositeRollbackError
	var dangling *DanglingReferenceError
	return errors.As(err, &rb) || errors.As(err, &dangling)
}
