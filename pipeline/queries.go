/*
queries.go - Read side: listings and derived aggregates

PURPOSE:
  Active listings and the derived views over them. Soft-deleted rows are
  excluded everywhere; financial figures come out of finance.Derive so
  every consumer sees the same arithmetic.
*/
package pipeline

import (
	"context"
	"sort"

	"github.com/warp/fieldservice-engine/finance"
	"github.com/warp/fieldservice-engine/records"
)

// JobView is one job joined with its work order and derived figures.
type JobView struct {
	WorkOrder records.WorkOrder
	Job       records.Job
	Figures   finance.Breakdown
}

// EstimateView is one estimate joined with its work order.
type EstimateView struct {
	WorkOrder records.WorkOrder
	Estimate  records.Estimate
}

// TechnicianSummary aggregates a technician's live jobs.
type TechnicianSummary struct {
	Technician records.Technician
	Totals     finance.Totals
}

// ListJobs returns every active job with its work order and figures,
// newest work order first.
func (p *Pipeline) ListJobs(ctx context.Context) ([]JobView, error) {
	jobRows, err := p.store.Select(ctx, records.TableJobs, records.Active(), nil)
	if err != nil {
		return nil, &records.StoreError{Op: "select", Table: records.TableJobs, Step: "list jobs", Err: err}
	}

	out := make([]JobView, 0, len(jobRows))
	for _, row := range jobRows {
		job, err := records.JobFromRow(row)
		if err != nil {
			return nil, err
		}
		woRow, err := records.SelectOne(ctx, p.store, records.TableWorkOrders,
			records.ByID(string(job.WorkOrderID)))
		if err != nil {
			if records.IsNotFound(err) {
				continue // orphaned by an interrupted cascade; listings skip it
			}
			return nil, &records.StoreError{Op: "select", Table: records.TableWorkOrders, Step: "load work order", Err: err}
		}
		wo := records.WorkOrderFromRow(woRow)
		out = append(out, JobView{
			WorkOrder: wo,
			Job:       job,
			Figures:   finance.Derive(job.Subtotal, job.PartsTotalCost, job.Tips, job.CommissionRate),
		})
	}
	sortJobViews(out)
	return out, nil
}

// GetJob returns one active job with figures.
func (p *Pipeline) GetJob(ctx context.Context, id records.JobID) (JobView, error) {
	row, err := records.SelectOne(ctx, p.store, records.TableJobs, records.ByID(string(id)))
	if err != nil {
		return JobView{}, err
	}
	job, err := records.JobFromRow(row)
	if err != nil {
		return JobView{}, err
	}
	woRow, err := records.SelectOne(ctx, p.store, records.TableWorkOrders, records.ByID(string(job.WorkOrderID)))
	if err != nil {
		return JobView{}, err
	}
	return JobView{
		WorkOrder: records.WorkOrderFromRow(woRow),
		Job:       job,
		Figures:   finance.Derive(job.Subtotal, job.PartsTotalCost, job.Tips, job.CommissionRate),
	}, nil
}

// ListEstimates returns every active estimate with its work order.
func (p *Pipeline) ListEstimates(ctx context.Context) ([]EstimateView, error) {
	rows, err := p.store.Select(ctx, records.TableEstimates, records.Active(), nil)
	if err != nil {
		return nil, &records.StoreError{Op: "select", Table: records.TableEstimates, Step: "list estimates", Err: err}
	}
	out := make([]EstimateView, 0, len(rows))
	for _, row := range rows {
		est, err := records.EstimateFromRow(row)
		if err != nil {
			return nil, err
		}
		woRow, err := records.SelectOne(ctx, p.store, records.TableWorkOrders,
			records.ByID(string(est.WorkOrderID)))
		if err != nil {
			if records.IsNotFound(err) {
				continue
			}
			return nil, &records.StoreError{Op: "select", Table: records.TableWorkOrders, Step: "load work order", Err: err}
		}
		out = append(out, EstimateView{WorkOrder: records.WorkOrderFromRow(woRow), Estimate: est})
	}
	return out, nil
}

// ListParts returns the active parts of one job.
func (p *Pipeline) ListParts(ctx context.Context, jobID records.JobID) ([]records.Part, error) {
	rows, err := p.store.Select(ctx, records.TableParts,
		records.Predicate{Eq: records.Row{"job_id": string(jobID)}, ActiveOnly: true}, nil)
	if err != nil {
		return nil, &records.StoreError{Op: "select", Table: records.TableParts, Step: "list parts", Err: err}
	}
	out := make([]records.Part, 0, len(rows))
	for _, row := range rows {
		part, err := records.PartFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, part)
	}
	return out, nil
}

// ListTechnicians returns the active technicians ordered by name.
func (p *Pipeline) ListTechnicians(ctx context.Context) ([]records.Technician, error) {
	rows, err := p.store.Select(ctx, records.TableTechnicians, records.Active(),
		&records.Ordering{Field: "name"})
	if err != nil {
		return nil, &records.StoreError{Op: "select", Table: records.TableTechnicians, Step: "list technicians", Err: err}
	}
	out := make([]records.Technician, 0, len(rows))
	for _, row := range rows {
		tech, err := records.TechnicianFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, tech)
	}
	return out, nil
}

// SummarizeTechnician rolls up one technician's live jobs.
func (p *Pipeline) SummarizeTechnician(ctx context.Context, id records.TechnicianID) (TechnicianSummary, error) {
	techRow, err := records.SelectOne(ctx, p.store, records.TableTechnicians, records.ByID(string(id)))
	if err != nil {
		return TechnicianSummary{}, err
	}
	tech, err := records.TechnicianFromRow(techRow)
	if err != nil {
		return TechnicianSummary{}, err
	}

	jobs, err := p.ListJobs(ctx)
	if err != nil {
		return TechnicianSummary{}, err
	}
	var breakdowns []finance.Breakdown
	for _, jv := range jobs {
		if jv.WorkOrder.TechnicianID == id {
			breakdowns = append(breakdowns, jv.Figures)
		}
	}
	return TechnicianSummary{Technician: tech, Totals: finance.Rollup(breakdowns)}, nil
}

// MonthlyFinancialSummary groups the live jobs by calendar month.
func (p *Pipeline) MonthlyFinancialSummary(ctx context.Context) ([]finance.MonthTotals, error) {
	jobs, err := p.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	inputs := make([]finance.MonthInput, 0, len(jobs))
	for _, jv := range jobs {
		inputs = append(inputs, finance.MonthInput{
			Date:      jv.WorkOrder.Date,
			Subtotal:  jv.Job.Subtotal,
			PartsCost: jv.Job.PartsTotalCost,
			Tips:      jv.Job.Tips,
			Rate:      jv.Job.CommissionRate,
		})
	}
	return finance.MonthlySummary(inputs), nil
}

// UnreviewedJobs lists the jobs whose work order has no review linked.
func (p *Pipeline) UnreviewedJobs(ctx context.Context) ([]JobView, error) {
	jobs, err := p.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	out := jobs[:0]
	for _, jv := range jobs {
		if jv.WorkOrder.ReviewID == nil {
			out = append(out, jv)
		}
	}
	return out, nil
}

// ListReviews returns the active review records.
func (p *Pipeline) ListReviews(ctx context.Context) ([]records.ReviewRecord, error) {
	rows, err := p.store.Select(ctx, records.TableReviews, records.Active(), nil)
	if err != nil {
		return nil, &records.StoreError{Op: "select", Table: records.TableReviews, Step: "list reviews", Err: err}
	}
	out := make([]records.ReviewRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, records.ReviewFromRow(row))
	}
	return out, nil
}

// ListPaymentMethods returns the active payment methods.
func (p *Pipeline) ListPaymentMethods(ctx context.Context) ([]records.PaymentMethod, error) {
	rows, err := p.store.Select(ctx, records.TablePaymentMethods, records.Active(),
		&records.Ordering{Field: "name"})
	if err != nil {
		return nil, &records.StoreError{Op: "select", Table: records.TablePaymentMethods, Step: "list payment methods", Err: err}
	}
	out := make([]records.PaymentMethod, 0, len(rows))
	for _, row := range rows {
		out = append(out, records.PaymentMethodFromRow(row))
	}
	return out, nil
}

// ListReviewTypes returns the active review types.
func (p *Pipeline) ListReviewTypes(ctx context.Context) ([]records.ReviewType, error) {
	rows, err := p.store.Select(ctx, records.TableReviewTypes, records.Active(),
		&records.Ordering{Field: "name"})
	if err != nil {
		return nil, &records.StoreError{Op: "select", Table: records.TableReviewTypes, Step: "list review types", Err: err}
	}
	out := make([]records.ReviewType, 0, len(rows))
	for _, row := range rows {
		out = append(out, records.ReviewTypeFromRow(row))
	}
	return out, nil
}

// sortJobViews orders newest work order first, stable for equal dates.
func sortJobViews(jobs []JobView) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].WorkOrder.Date.After(jobs[j].WorkOrder.Date)
	})
}
