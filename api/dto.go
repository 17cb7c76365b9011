/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal record model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY FIELDS:
  Every financial figure is returned twice: a raw 2dp number for
  programmatic use and a formatted currency string for display.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/fieldservice-engine/finance"
	"github.com/warp/fieldservice-engine/money"
	"github.com/warp/fieldservice-engine/pipeline"
	"github.com/warp/fieldservice-engine/records"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// WorkOrderRequest is the anchor side of a create request.
type WorkOrderRequest struct {
	Title        string `json:"work_title"`
	Date         string `json:"work_order_date"` // YYYY-MM-DD
	TechnicianID string `json:"technician_id"`
	Address      string `json:"address"`
	Description  string `json:"description"`
	Notes        string `json:"notes"`
}

type CreateJobRequest struct {
	WorkOrder      WorkOrderRequest `json:"work_order"`
	Subtotal       float64          `json:"subtotal"`
	Tips           float64          `json:"tips"`
	PaymentMode    string           `json:"payment_mode"`
	Status         string           `json:"status"`
	CommissionRate *float64         `json:"commission_rate,omitempty"`
}

type CreateEstimateRequest struct {
	WorkOrder       WorkOrderRequest `json:"work_order"`
	EstimatedAmount float64          `json:"estimated_amount"`
	Status          string           `json:"status"`
	HandledBy       string           `json:"handled_by"`
}

// EditJobRequest carries optional patches for either side of a job.
// All-nil is "no updates provided" and succeeds as a no-op.
type EditJobRequest struct {
	Title        *string  `json:"work_title,omitempty"`
	Date         *string  `json:"work_order_date,omitempty"`
	TechnicianID *string  `json:"technician_id,omitempty"`
	Address      *string  `json:"address,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Notes        *string  `json:"notes,omitempty"`

	Subtotal       *float64 `json:"subtotal,omitempty"`
	Tips           *float64 `json:"tips,omitempty"`
	PaymentMode    *string  `json:"payment_mode,omitempty"`
	Status         *string  `json:"status,omitempty"`
	CommissionRate *float64 `json:"commission_rate,omitempty"`
}

type EditEstimateRequest struct {
	Title        *string `json:"work_title,omitempty"`
	Date         *string `json:"work_order_date,omitempty"`
	TechnicianID *string `json:"technician_id,omitempty"`
	Address      *string `json:"address,omitempty"`
	Description  *string `json:"description,omitempty"`
	Notes        *string `json:"notes,omitempty"`

	EstimatedAmount *float64 `json:"estimated_amount,omitempty"`
	Status          *string  `json:"status,omitempty"`
	HandledBy       *string  `json:"handled_by,omitempty"`
}

type PartRequest struct {
	JobID    string  `json:"job_id"`
	UnitCost float64 `json:"unit_cost"`
	Quantity int64   `json:"quantity"`
}

type EditPartRequest struct {
	UnitCost *float64 `json:"unit_cost,omitempty"`
	Quantity *int64   `json:"quantity,omitempty"`
}

type TechnicianRequest struct {
	Name                  string  `json:"name"`
	DefaultCommissionRate float64 `json:"default_commission_rate"`
}

type EditTechnicianRequest struct {
	Name                  *string  `json:"name,omitempty"`
	DefaultCommissionRate *float64 `json:"default_commission_rate,omitempty"`
}

type CreateReviewRequest struct {
	WorkOrderID  string `json:"work_order_id"`
	ReviewTypeID string `json:"review_type_id,omitempty"`
	Notes        string `json:"notes"`
}

type LinkReviewRequest struct {
	WorkOrderID string `json:"work_order_id"`
}

type NameRequest struct {
	Name string `json:"name"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// FiguresDTO is a financial breakdown rendered for clients.
type FiguresDTO struct {
	Gross             float64 `json:"gross"`
	NetRevenue        float64 `json:"net_revenue"`
	Commission        float64 `json:"commission"`
	CompanyNet        float64 `json:"company_net"`
	GrossDisplay      string  `json:"gross_display"`
	NetRevenueDisplay string  `json:"net_revenue_display"`
	CommissionDisplay string  `json:"commission_display"`
	CompanyNetDisplay string  `json:"company_net_display"`
	NetNegative       bool    `json:"net_negative"`
	MinSubtotal       *float64 `json:"min_subtotal,omitempty"`
}

type JobDTO struct {
	ID             string     `json:"id"`
	WorkOrderID    string     `json:"work_order_id"`
	Title          string     `json:"work_title"`
	Date           string     `json:"work_order_date"`
	TechnicianID   string     `json:"technician_id"`
	Address        string     `json:"address"`
	Description    string     `json:"description"`
	Notes          string     `json:"notes"`
	ReviewID       string     `json:"review_id,omitempty"`
	Subtotal       float64    `json:"subtotal"`
	Tips           float64    `json:"tips"`
	PartsTotalCost float64    `json:"parts_total_cost"`
	CommissionRate float64    `json:"commission_rate"`
	RateDisplay    string     `json:"commission_rate_display"`
	PaymentMode    string     `json:"payment_mode"`
	Status         string     `json:"status"`
	Figures        FiguresDTO `json:"figures"`
}

type EstimateDTO struct {
	ID              string  `json:"id"`
	WorkOrderID     string  `json:"work_order_id"`
	Title           string  `json:"work_title"`
	Date            string  `json:"work_order_date"`
	TechnicianID    string  `json:"technician_id"`
	EstimatedAmount float64 `json:"estimated_amount"`
	AmountDisplay   string  `json:"estimated_amount_display"`
	Status          string  `json:"status"`
	HandledBy       string  `json:"handled_by"`
}

type PartDTO struct {
	ID       string  `json:"id"`
	JobID    string  `json:"job_id"`
	UnitCost float64 `json:"unit_cost"`
	Quantity int64   `json:"quantity"`
	Amount   float64 `json:"amount"`
}

type TechnicianDTO struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	DefaultCommissionRate float64 `json:"default_commission_rate"`
	RateDisplay           string  `json:"default_commission_rate_display"`
}

type TechnicianSummaryDTO struct {
	Technician TechnicianDTO `json:"technician"`
	JobCount   int           `json:"job_count"`
	Totals     FiguresDTO    `json:"totals"`
}

type ReviewDTO struct {
	ID           string `json:"id"`
	ReviewTypeID string `json:"review_type_id,omitempty"`
	Notes        string `json:"notes"`
}

type LookupDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MonthTotalsDTO struct {
	Year              int     `json:"year"`
	Month             int     `json:"month"`
	JobCount          int     `json:"job_count"`
	Gross             float64 `json:"gross"`
	Commission        float64 `json:"commission"`
	CompanyNet        float64 `json:"company_net"`
	GrossDisplay      string  `json:"gross_display"`
	CommissionDisplay string  `json:"commission_display"`
	CompanyNetDisplay string  `json:"company_net_display"`
}

// ErrorDTO is the uniform error body. Kind distinguishes states needing
// cleanup (orphaned anchor, dangling reference) from ordinary failures.
type ErrorDTO struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func figuresDTO(b finance.Breakdown, partsCost, rate money.Value) FiguresDTO {
	dto := FiguresDTO{
		Gross:             b.Gross.Float64(),
		NetRevenue:        b.NetRevenue.Float64(),
		Commission:        b.Commission.Float64(),
		CompanyNet:        b.CompanyNet.Float64(),
		GrossDisplay:      b.Gross.Currency(),
		NetRevenueDisplay: b.NetRevenue.Currency(),
		CommissionDisplay: b.Commission.Currency(),
		CompanyNetDisplay: b.CompanyNet.Currency(),
		NetNegative:       b.NetNegative,
	}
	if b.NetNegative {
		if min, ok := finance.MinSubtotal(partsCost, rate); ok {
			f := min.Float64()
			dto.MinSubtotal = &f
		}
	}
	return dto
}

func jobDTO(v pipeline.JobView) JobDTO {
	dto := JobDTO{
		ID:             string(v.Job.ID),
		WorkOrderID:    string(v.WorkOrder.ID),
		Title:          v.WorkOrder.Title,
		Date:           v.WorkOrder.Date.Format("2006-01-02"),
		TechnicianID:   string(v.WorkOrder.TechnicianID),
		Address:        v.WorkOrder.Address,
		Description:    v.WorkOrder.Description,
		Notes:          v.WorkOrder.Notes,
		Subtotal:       v.Job.Subtotal.Float64(),
		Tips:           v.Job.Tips.Float64(),
		PartsTotalCost: v.Job.PartsTotalCost.Float64(),
		CommissionRate: v.Job.CommissionRate.Float64(),
		RateDisplay:    v.Job.CommissionRate.Percent1(),
		PaymentMode:    v.Job.PaymentMode,
		Status:         string(v.Job.Status),
		Figures:        figuresDTO(v.Figures, v.Job.PartsTotalCost, v.Job.CommissionRate),
	}
	if v.WorkOrder.ReviewID != nil {
		dto.ReviewID = string(*v.WorkOrder.ReviewID)
	}
	return dto
}

func estimateDTO(v pipeline.EstimateView) EstimateDTO {
	return EstimateDTO{
		ID:              string(v.Estimate.ID),
		WorkOrderID:     string(v.WorkOrder.ID),
		Title:           v.WorkOrder.Title,
		Date:            v.WorkOrder.Date.Format("2006-01-02"),
		TechnicianID:    string(v.WorkOrder.TechnicianID),
		EstimatedAmount: v.Estimate.EstimatedAmount.Float64(),
		AmountDisplay:   v.Estimate.EstimatedAmount.Currency(),
		Status:          string(v.Estimate.Status),
		HandledBy:       v.Estimate.HandledBy,
	}
}

func partDTO(p records.Part) PartDTO {
	return PartDTO{
		ID:       string(p.ID),
		JobID:    string(p.JobID),
		UnitCost: p.UnitCost.Float64(),
		Quantity: p.Quantity,
		Amount:   p.Amount.Float64(),
	}
}

func technicianDTO(t records.Technician) TechnicianDTO {
	return TechnicianDTO{
		ID:                    string(t.ID),
		Name:                  t.Name,
		DefaultCommissionRate: t.DefaultCommissionRate.Float64(),
		RateDisplay:           t.DefaultCommissionRate.Percent1(),
	}
}

func monthTotalsDTO(m finance.MonthTotals) MonthTotalsDTO {
	return MonthTotalsDTO{
		Year:              m.Year,
		Month:             int(m.Month),
		JobCount:          m.Count,
		Gross:             m.Gross.Float64(),
		Commission:        m.Commission.Float64(),
		CompanyNet:        m.CompanyNet.Float64(),
		GrossDisplay:      m.Gross.Currency(),
		CommissionDisplay: m.Commission.Currency(),
		CompanyNetDisplay: m.CompanyNet.Currency(),
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
