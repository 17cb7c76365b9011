/*
parts.go - Part maintenance and the denormalized parts total

PURPOSE:
  A job's parts_total_cost is a denormalized sum of its active parts.
  Every part mutation goes through here so the recompute happens exactly
  once per mutation, with the n-ary decimal sum (never sequential float
  adds). Part amount is derived: unit_cost * quantity.
*/
package pipeline

import (
	"context"

	"github.com/warp/fieldservice-engine/money"
	"github.com/warp/fieldservice-engine/records"
	"github.com/warp/fieldservice-engine/views"
)

// AddPart inserts a part on a job and refreshes the job's parts total.
func (p *Pipeline) AddPart(ctx context.Context, jobID records.JobID, unitCost money.Value, quantity int64) (records.Part, error) {
	// The job must exist and be live before a part attaches to it.
	if _, err := records.SelectOne(ctx, p.store, records.TableJobs, records.ByID(string(jobID))); err != nil {
		return records.Part{}, &records.StoreError{Op: "select", Table: records.TableJobs, Step: "load job", Err: err}
	}

	part := records.Part{
		JobID:    jobID,
		UnitCost: unitCost,
		Quantity: quantity,
		Amount:   records.PartAmount(unitCost, quantity),
	}
	row, err := p.store.Insert(ctx, records.TableParts, part.ToRow())
	if err != nil {
		return records.Part{}, &records.StoreError{Op: "insert", Table: records.TableParts, Step: "insert part", Err: err}
	}
	part, err = records.PartFromRow(row)
	if err != nil {
		return records.Part{}, err
	}

	if err := p.recomputePartsTotal(ctx, jobID); err != nil {
		return records.Part{}, err
	}
	p.views.Invalidate(views.MutatePart)
	return part, nil
}

// EditPart changes a part's unit cost and/or quantity. Amount is always
// re-derived; callers cannot set it directly.
func (p *Pipeline) EditPart(ctx context.Context, id records.PartID, unitCost *money.Value, quantity *int64) error {
	if unitCost == nil && quantity == nil {
		return nil
	}

	row, err := records.SelectOne(ctx, p.store, records.TableParts, records.ByID(string(id)))
	if err != nil {
		return &records.StoreError{Op: "select", Table: records.TableParts, Step: "load part", Err: err}
	}
	part, err := records.PartFromRow(row)
	if err != nil {
		return err
	}

	cost := part.UnitCost
	qty := part.Quantity
	if unitCost != nil {
		cost = *unitCost
	}
	if quantity != nil {
		qty = *quantity
	}
	patch := records.Row{
		"unit_cost": cost.Round2().String(),
		"quantity":  qty,
		"amount":    records.PartAmount(cost, qty).String(),
	}
	if _, err := p.store.Update(ctx, records.TableParts, records.ByID(string(id)), patch); err != nil {
		return &records.StoreError{Op: "update", Table: records.TableParts, Step: "update part", Err: err}
	}

	if err := p.recomputePartsTotal(ctx, part.JobID); err != nil {
		return err
	}
	p.views.Invalidate(views.MutatePart)
	return nil
}

// DeletePart soft-deletes a part and refreshes the job's parts total.
func (p *Pipeline) DeletePart(ctx context.Context, id records.PartID) error {
	row, err := records.SelectOne(ctx, p.store, records.TableParts, records.ByID(string(id)))
	if err != nil {
		return &records.StoreError{Op: "select", Table: records.TableParts, Step: "load part", Err: err}
	}
	part, err := records.PartFromRow(row)
	if err != nil {
		return err
	}

	updated, err := p.store.Update(ctx, records.TableParts,
		records.ByID(string(id)), records.SoftDeletePatch(p.now()))
	if err != nil {
		return &records.StoreError{Op: "update", Table: records.TableParts, Step: "delete part", Err: err}
	}
	if len(updated) == 0 {
		return records.ErrNotFound
	}

	if err := p.recomputePartsTotal(ctx, part.JobID); err != nil {
		return err
	}
	p.views.Invalidate(views.MutatePart)
	return nil
}

// recomputePartsTotal rewrites the denormalized sum from the live parts.
// Soft-deleted parts are excluded from the aggregate.
func (p *Pipeline) recomputePartsTotal(ctx context.Context, jobID records.JobID) error {
	rows, err := p.store.Select(ctx, records.TableParts,
		records.Predicate{Eq: records.Row{"job_id": string(jobID)}, ActiveOnly: true}, nil)
	if err != nil {
		return &records.StoreError{Op: "select", Table: records.TableParts, Step: "sum parts", Err: err}
	}

	amounts := make([]money.Value, 0, len(rows))
	for _, row := range rows {
		part, err := records.PartFromRow(row)
		if err != nil {
			return err
		}
		amounts = append(amounts, part.Amount)
	}
	total := money.Sum(amounts...).Round2()

	if _, err := p.store.Update(ctx, records.TableJobs,
		records.ByID(string(jobID)), records.Row{"parts_total_cost": total.String()}); err != nil {
		return &records.StoreError{Op: "update", Table: records.TableJobs, Step: "write parts total", Err: err}
	}
	return nil
}
