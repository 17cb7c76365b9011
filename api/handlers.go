/*
handlers.go - HTTP API handlers for the field-service dashboard core

PURPOSE:
  Exposes the mutation pipeline and the derived views via REST. Handles
  HTTP request/response, JSON serialization, and delegates everything
  else to the pipeline package.

ENDPOINTS:
  Jobs:
    GET    /api/jobs                  List jobs with derived figures
    POST   /api/jobs                  Composite create (work order + job)
    GET    /api/jobs/{id}             One job with figures
    PUT    /api/jobs/{id}             Patch either side of a job
    DELETE /api/jobs/{id}             Soft-delete the job row
    GET    /api/jobs/{id}/parts       Parts of one job
    GET    /api/jobs/unreviewed       Jobs with no review linked

  Estimates:
    GET    /api/estimates             List estimates
    POST   /api/estimates             Composite create (work order + estimate)
    PUT    /api/estimates/{id}        Patch either side
    DELETE /api/estimates/{id}        Full removal: estimate + job + work order

  Parts, Technicians, Reviews, Payment methods, Review types: CRUD.

  Summaries:
    GET    /api/summary/monthly             Monthly financial summary
    GET    /api/technicians/{id}/summary    One technician's rollup

READ CONSISTENCY:
  Every listing handler calls Tracker.EnsureFresh for its view before
  reading; since reads go straight to the store, the read itself is the
  refetch and the tracker's contract is what keeps consumers honest.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 500: Store failures; "kind" distinguishes states needing cleanup
         (orphaned anchor, dangling reference, partial cascade)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/fieldservice-engine/money"
	"github.com/warp/fieldservice-engine/pipeline"
	"github.com/warp/fieldservice-engine/records"
	"github.com/warp/fieldservice-engine/views"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Pipeline *pipeline.Pipeline
	Tracker  *views.Tracker
}

func NewHandler(p *pipeline.Pipeline, t *views.Tracker) *Handler {
	return &Handler{Pipeline: p, Tracker: t}
}

// =============================================================================
// JOBS
// =============================================================================

func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	in, err := createJobInput(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	wo, job, err := h.Pipeline.CreateJob(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := h.Pipeline.GetJob(r.Context(), job.ID)
	if err != nil {
		// The pair exists; fall back to the raw rows.
		view = pipeline.JobView{WorkOrder: wo, Job: job}
	}
	respondJSON(w, http.StatusCreated, jobDTO(view))
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.EnsureFresh(r.Context(), views.JobList); err != nil {
		writeError(w, err)
		return
	}
	list, err := h.Pipeline.ListJobs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]JobDTO, 0, len(list))
	for _, v := range list {
		out = append(out, jobDTO(v))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := records.JobID(chi.URLParam(r, "id"))
	view, err := h.Pipeline.GetJob(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, jobDTO(view))
}

func (h *Handler) EditJob(w http.ResponseWriter, r *http.Request) {
	id := records.JobID(chi.URLParam(r, "id"))
	var req EditJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	in := pipeline.EditInput{WorkOrder: records.Row{}, Dependent: records.Row{}}
	putStr(in.WorkOrder, "work_title", req.Title)
	putStr(in.WorkOrder, "technician_id", req.TechnicianID)
	putStr(in.WorkOrder, "address", req.Address)
	putStr(in.WorkOrder, "description", req.Description)
	putStr(in.WorkOrder, "notes", req.Notes)
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		in.WorkOrder["work_order_date"] = d.UTC().Format(time.RFC3339)
	}
	putMoney(in.Dependent, "subtotal", req.Subtotal)
	putMoney(in.Dependent, "tips", req.Tips)
	putMoney(in.Dependent, "commission_rate", req.CommissionRate)
	putStr(in.Dependent, "payment_mode", req.PaymentMode)
	putStr(in.Dependent, "status", req.Status)

	if err := h.Pipeline.EditJob(r.Context(), id, in); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id := records.JobID(chi.URLParam(r, "id"))
	if err := h.Pipeline.DeleteJob(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UnreviewedJobs(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.EnsureFresh(r.Context(), views.UnreviewedJobs); err != nil {
		writeError(w, err)
		return
	}
	list, err := h.Pipeline.UnreviewedJobs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]JobDTO, 0, len(list))
	for _, v := range list {
		out = append(out, jobDTO(v))
	}
	respondJSON(w, http.StatusOK, out)
}

// =============================================================================
// ESTIMATES
// =============================================================================

func (h *Handler) CreateEstimate(w http.ResponseWriter, r *http.Request) {
	var req CreateEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	date, err := parseDate(req.WorkOrder.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	wo, est, err := h.Pipeline.CreateEstimate(r.Context(), pipeline.CreateEstimateInput{
		WorkOrder: workOrderInput(req.WorkOrder, date),
		Estimate: pipeline.EstimateInput{
			EstimatedAmount: money.FromFloat(req.EstimatedAmount),
			Status:          records.EstimateStatus(req.Status),
			HandledBy:       req.HandledBy,
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, estimateDTO(pipeline.EstimateView{WorkOrder: wo, Estimate: est}))
}

func (h *Handler) ListEstimates(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.EnsureFresh(r.Context(), views.EstimateList); err != nil {
		writeError(w, err)
		return
	}
	list, err := h.Pipeline.ListEstimates(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]EstimateDTO, 0, len(list))
	for _, v := range list {
		out = append(out, estimateDTO(v))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) EditEstimate(w http.ResponseWriter, r *http.Request) {
	id := records.EstimateID(chi.URLParam(r, "id"))
	var req EditEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	in := pipeline.EditInput{WorkOrder: records.Row{}, Dependent: records.Row{}}
	putStr(in.WorkOrder, "work_title", req.Title)
	putStr(in.WorkOrder, "technician_id", req.TechnicianID)
	putStr(in.WorkOrder, "address", req.Address)
	putStr(in.WorkOrder, "description", req.Description)
	putStr(in.WorkOrder, "notes", req.Notes)
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		in.WorkOrder["work_order_date"] = d.UTC().Format(time.RFC3339)
	}
	putMoney(in.Dependent, "estimated_amount", req.EstimatedAmount)
	putStr(in.Dependent, "status", req.Status)
	putStr(in.Dependent, "handled_by", req.HandledBy)

	if err := h.Pipeline.EditEstimate(r.Context(), id, in); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteEstimate(w http.ResponseWriter, r *http.Request) {
	id := records.EstimateID(chi.URLParam(r, "id"))
	if err := h.Pipeline.DeleteEstimate(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PARTS
// =============================================================================

func (h *Handler) AddPart(w http.ResponseWriter, r *http.Request) {
	var req PartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	part, err := h.Pipeline.AddPart(r.Context(), records.JobID(req.JobID),
		money.FromFloat(req.UnitCost), req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, partDTO(part))
}

func (h *Handler) ListParts(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.EnsureFresh(r.Context(), views.PartList); err != nil {
		writeError(w, err)
		return
	}
	jobID := records.JobID(chi.URLParam(r, "id"))
	parts, err := h.Pipeline.ListParts(r.Context(), jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]PartDTO, 0, len(parts))
	for _, p := range parts {
		out = append(out, partDTO(p))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) EditPart(w http.ResponseWriter, r *http.Request) {
	id := records.PartID(chi.URLParam(r, "id"))
	var req EditPartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var cost *money.Value
	if req.UnitCost != nil {
		v := money.FromFloat(*req.UnitCost)
		cost = &v
	}
	if err := h.Pipeline.EditPart(r.Context(), id, cost, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeletePart(w http.ResponseWriter, r *http.Request) {
	id := records.PartID(chi.URLParam(r, "id"))
	if err := h.Pipeline.DeletePart(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TECHNICIANS
// =============================================================================

func (h *Handler) CreateTechnician(w http.ResponseWriter, r *http.Request) {
	var req TechnicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	tech, err := h.Pipeline.CreateTechnician(r.Context(), req.Name,
		money.FromFloat(req.DefaultCommissionRate))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, technicianDTO(tech))
}

func (h *Handler) ListTechnicians(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.EnsureFresh(r.Context(), views.TechnicianList); err != nil {
		writeError(w, err)
		return
	}
	list, err := h.Pipeline.ListTechnicians(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]TechnicianDTO, 0, len(list))
	for _, t := range list {
		out = append(out, technicianDTO(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) EditTechnician(w http.ResponseWriter, r *http.Request) {
	id := records.TechnicianID(chi.URLParam(r, "id"))
	var req EditTechnicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	patch := records.Row{}
	putStr(patch, "name", req.Name)
	putMoney(patch, "default_commission_rate", req.DefaultCommissionRate)
	if err := h.Pipeline.EditTechnician(r.Context(), id, patch); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteTechnician(w http.ResponseWriter, r *http.Request) {
	id := records.TechnicianID(chi.URLParam(r, "id"))
	if err := h.Pipeline.DeleteTechnician(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TechnicianSummary(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.EnsureFresh(r.Context(), views.TechnicianSummaries); err != nil {
		writeError(w, err)
		return
	}
	id := records.TechnicianID(chi.URLParam(r, "id"))
	sum, err := h.Pipeline.SummarizeTechnician(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, TechnicianSummaryDTO{
		Technician: technicianDTO(sum.Technician),
		JobCount:   sum.Totals.Count,
		Totals: FiguresDTO{
			Gross:             sum.Totals.Gross.Float64(),
			NetRevenue:        sum.Totals.NetRevenue.Float64(),
			Commission:        sum.Totals.Commission.Float64(),
			CompanyNet:        sum.Totals.CompanyNet.Float64(),
			GrossDisplay:      sum.Totals.Gross.Currency(),
			NetRevenueDisplay: sum.Totals.NetRevenue.Currency(),
			CommissionDisplay: sum.Totals.Commission.Currency(),
			CompanyNetDisplay: sum.Totals.CompanyNet.Currency(),
			NetNegative:       sum.Totals.CompanyNet.IsNegative(),
		},
	})
}

// =============================================================================
// REVIEWS
// =============================================================================

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var typeID *records.ReviewTypeID
	if req.ReviewTypeID != "" {
		id := records.ReviewTypeID(req.ReviewTypeID)
		typeID = &id
	}
	rev, err := h.Pipeline.CreateReview(r.Context(),
		records.WorkOrderID(req.WorkOrderID), typeID, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	dto := ReviewDTO{ID: string(rev.ID), Notes: rev.Notes}
	if rev.ReviewTypeID != nil {
		dto.ReviewTypeID = string(*rev.ReviewTypeID)
	}
	respondJSON(w, http.StatusCreated, dto)
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.EnsureFresh(r.Context(), views.ReviewList); err != nil {
		writeError(w, err)
		return
	}
	list, err := h.Pipeline.ListReviews(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]ReviewDTO, 0, len(list))
	for _, rev := range list {
		dto := ReviewDTO{ID: string(rev.ID), Notes: rev.Notes}
		if rev.ReviewTypeID != nil {
			dto.ReviewTypeID = string(*rev.ReviewTypeID)
		}
		out = append(out, dto)
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) LinkReview(w http.ResponseWriter, r *http.Request) {
	id := records.ReviewID(chi.URLParam(r, "id"))
	var req LinkReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Pipeline.LinkReview(r.Context(), records.WorkOrderID(req.WorkOrderID), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id := records.ReviewID(chi.URLParam(r, "id"))
	if err := h.Pipeline.DeleteReview(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// LOOKUPS
// =============================================================================

func (h *Handler) CreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	pm, err := h.Pipeline.CreatePaymentMethod(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, LookupDTO{ID: string(pm.ID), Name: pm.Name})
}

func (h *Handler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.EnsureFresh(r.Context(), views.PaymentMethodList); err != nil {
		writeError(w, err)
		return
	}
	list, err := h.Pipeline.ListPaymentMethods(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]LookupDTO, 0, len(list))
	for _, pm := range list {
		out = append(out, LookupDTO{ID: string(pm.ID), Name: pm.Name})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) RenamePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	id := records.PaymentMethodID(chi.URLParam(r, "id"))
	if err := h.Pipeline.RenamePaymentMethod(r.Context(), id, req.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id := records.PaymentMethodID(chi.URLParam(r, "id"))
	if err := h.Pipeline.DeletePaymentMethod(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateReviewType(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	rt, err := h.Pipeline.CreateReviewType(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, LookupDTO{ID: string(rt.ID), Name: rt.Name})
}

func (h *Handler) ListReviewTypes(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.EnsureFresh(r.Context(), views.ReviewTypeList); err != nil {
		writeError(w, err)
		return
	}
	list, err := h.Pipeline.ListReviewTypes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]LookupDTO, 0, len(list))
	for _, rt := range list {
		out = append(out, LookupDTO{ID: string(rt.ID), Name: rt.Name})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) RenameReviewType(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	id := records.ReviewTypeID(chi.URLParam(r, "id"))
	if err := h.Pipeline.RenameReviewType(r.Context(), id, req.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteReviewType(w http.ResponseWriter, r *http.Request) {
	id := records.ReviewTypeID(chi.URLParam(r, "id"))
	if err := h.Pipeline.DeleteReviewType(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SUMMARIES
// =============================================================================

func (h *Handler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.EnsureFresh(r.Context(), views.MonthlySummary); err != nil {
		writeError(w, err)
		return
	}
	months, err := h.Pipeline.MonthlyFinancialSummary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]MonthTotalsDTO, 0, len(months))
	for _, m := range months {
		out = append(out, monthTotalsDTO(m))
	}
	respondJSON(w, http.StatusOK, out)
}

// =============================================================================
// HELPERS
// =============================================================================

func createJobInput(req CreateJobRequest) (pipeline.CreateJobInput, error) {
	date, err := parseDate(req.WorkOrder.Date)
	if err != nil {
		return pipeline.CreateJobInput{}, err
	}
	in := pipeline.CreateJobInput{
		WorkOrder: workOrderInput(req.WorkOrder, date),
		Job: pipeline.JobInput{
			Subtotal:    money.FromFloat(req.Subtotal),
			Tips:        money.FromFloat(req.Tips),
			PaymentMode: req.PaymentMode,
			Status:      records.JobStatus(req.Status),
		},
	}
	if req.CommissionRate != nil {
		rate := money.FromFloat(*req.CommissionRate)
		in.Job.CommissionRate = &rate
	}
	return in, nil
}

func workOrderInput(req WorkOrderRequest, date time.Time) pipeline.WorkOrderInput {
	return pipeline.WorkOrderInput{
		Title:        req.Title,
		Date:         date,
		TechnicianID: records.TechnicianID(req.TechnicianID),
		Address:      req.Address,
		Description:  req.Description,
		Notes:        req.Notes,
	}
}

func putStr(row records.Row, key string, v *string) {
	if v != nil {
		row[key] = *v
	}
}

func putMoney(row records.Row, key string, v *float64) {
	if v != nil {
		row[key] = money.FromFloat(*v).Round2().String()
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, ErrorDTO{Error: err.Error()})
}

// writeError maps domain errors onto HTTP statuses. States needing
// cleanup get a distinct kind so operators can tell them from ordinary
// store failures.
func writeError(w http.ResponseWriter, err error) {
	var valErr *money.ValidationError
	switch {
	case errors.As(err, &valErr):
		respondJSON(w, http.StatusBadRequest, ErrorDTO{Error: err.Error(), Kind: "validation"})
	case records.IsNotFound(err):
		respondJSON(w, http.StatusNotFound, ErrorDTO{Error: err.Error(), Kind: "not_found"})
	case records.NeedsCleanup(err):
		respondJSON(w, http.StatusInternalServerError, ErrorDTO{Error: err.Error(), Kind: "needs_cleanup"})
	default:
		var step *records.CascadeStepError
		if errors.As(err, &step) {
			respondJSON(w, http.StatusInternalServerError, ErrorDTO{Error: err.Error(), Kind: "partial_cascade"})
			return
		}
		respondJSON(w, http.StatusInternalServerError, ErrorDTO{Error: err.Error(), Kind: "store"})
	}
}
