/*
rows.go - Entity <-> Row mapping

PURPOSE:
  Converts between typed entities and the loosely typed Row maps the
  generic store speaks. Money columns are written as 2dp strings and read
  back through money.From (which also tolerates floats coming out of a
  numeric column). Timestamps travel as RFC3339 strings; null columns as
  nil.
*/
package records

import (
	"fmt"
	"time"

	"github.com/warp/fieldservice-engine/money"
)

// =============================================================================
// COLUMN HELPERS
// =============================================================================

func colString(row Row, key string) string {
	if v, ok := row[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func colMoney(row Row, key string) (money.Value, error) {
	v, err := money.From(row[key])
	if err != nil {
		return money.Zero(), fmt.Errorf("column %s: %w", key, err)
	}
	return v, nil
}

func colInt(row Row, key string) int64 {
	switch n := row[key].(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func colTime(row Row, key string) time.Time {
	if s := colString(row, key); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func colTimePtr(row Row, key string) *time.Time {
	if row[key] == nil {
		return nil
	}
	t := colTime(row, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

func moneyCol(v money.Value) string { return v.Round2().String() }

func timeCol(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// =============================================================================
// WORK ORDERS
// =============================================================================

func (w WorkOrder) ToRow() Row {
	row := Row{
		"id":            string(w.ID),
		"work_title":    w.Title,
		"work_order_date": timeCol(w.Date),
		"technician_id": string(w.TechnicianID),
		"address":       w.Address,
		"description":   w.Description,
		"notes":         w.Notes,
		"review_id":     nil,
		"deleted_at":    nil,
	}
	if w.ReviewID != nil {
		row["review_id"] = string(*w.ReviewID)
	}
	if w.DeletedAt != nil {
		row["deleted_at"] = timeCol(*w.DeletedAt)
	}
	return row
}

func WorkOrderFromRow(row Row) WorkOrder {
	w := WorkOrder{
		ID:           WorkOrderID(colString(row, "id")),
		Title:        colString(row, "work_title"),
		Date:         colTime(row, "work_order_date"),
		TechnicianID: TechnicianID(colString(row, "technician_id")),
		Address:      colString(row, "address"),
		Description:  colString(row, "description"),
		Notes:        colString(row, "notes"),
		DeletedAt:    colTimePtr(row, "deleted_at"),
	}
	if row["review_id"] != nil {
		id := ReviewID(colString(row, "review_id"))
		w.ReviewID = &id
	}
	return w
}

// =============================================================================
// JOBS
// =============================================================================

func (j Job) ToRow() Row {
	row := Row{
		"id":               string(j.ID),
		"work_order_id":    string(j.WorkOrderID),
		"subtotal":         moneyCol(j.Subtotal),
		"tips":             moneyCol(j.Tips),
		"parts_total_cost": moneyCol(j.PartsTotalCost),
		"commission_rate":  moneyCol(j.CommissionRate),
		"payment_mode":     j.PaymentMode,
		"status":           string(j.Status),
		"deleted_at":       nil,
	}
	if j.DeletedAt != nil {
		row["deleted_at"] = timeCol(*j.DeletedAt)
	}
	return row
}

func JobFromRow(row Row) (Job, error) {
	subtotal, err := colMoney(row, "subtotal")
	if err != nil {
		return Job{}, err
	}
	tips, err := colMoney(row, "tips")
	if err != nil {
		return Job{}, err
	}
	parts, err := colMoney(row, "parts_total_cost")
	if err != nil {
		return Job{}, err
	}
	rate, err := colMoney(row, "commission_rate")
	if err != nil {
		return Job{}, err
	}
	return Job{
		ID:             JobID(colString(row, "id")),
		WorkOrderID:    WorkOrderID(colString(row, "work_order_id")),
		Subtotal:       subtotal,
		Tips:           tips,
		PartsTotalCost: parts,
		CommissionRate: rate,
		PaymentMode:    colString(row, "payment_mode"),
		Status:         JobStatus(colString(row, "status")),
		DeletedAt:      colTimePtr(row, "deleted_at"),
	}, nil
}

// =============================================================================
// ESTIMATES
// =============================================================================

func (e Estimate) ToRow() Row {
	row := Row{
		"id":               string(e.ID),
		"work_order_id":    string(e.WorkOrderID),
		"estimated_amount": moneyCol(e.EstimatedAmount),
		"status":           string(e.Status),
		"handled_by":       e.HandledBy,
		"deleted_at":       nil,
	}
	if e.DeletedAt != nil {
		row["deleted_at"] = timeCol(*e.DeletedAt)
	}
	return row
}

func EstimateFromRow(row Row) (Estimate, error) {
	amount, err := colMoney(row, "estimated_amount")
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{
		ID:              EstimateID(colString(row, "id")),
		WorkOrderID:     WorkOrderID(colString(row, "work_order_id")),
		EstimatedAmount: amount,
		Status:          EstimateStatus(colString(row, "status")),
		HandledBy:       colString(row, "handled_by"),
		DeletedAt:       colTimePtr(row, "deleted_at"),
	}, nil
}

// =============================================================================
// PARTS
// =============================================================================

func (p Part) ToRow() Row {
	row := Row{
		"id":         string(p.ID),
		"job_id":     string(p.JobID),
		"unit_cost":  moneyCol(p.UnitCost),
		"quantity":   p.Quantity,
		"amount":     moneyCol(p.Amount),
		"deleted_at": nil,
	}
	if p.DeletedAt != nil {
		row["deleted_at"] = timeCol(*p.DeletedAt)
	}
	return row
}

func PartFromRow(row Row) (Part, error) {
	unitCost, err := colMoney(row, "unit_cost")
	if err != nil {
		return Part{}, err
	}
	amount, err := colMoney(row, "amount")
	if err != nil {
		return Part{}, err
	}
	return Part{
		ID:        PartID(colString(row, "id")),
		JobID:     JobID(colString(row, "job_id")),
		UnitCost:  unitCost,
		Quantity:  colInt(row, "quantity"),
		Amount:    amount,
		DeletedAt: colTimePtr(row, "deleted_at"),
	}, nil
}

// =============================================================================
// TECHNICIANS
// =============================================================================

func (t Technician) ToRow() Row {
	row := Row{
		"id":                      string(t.ID),
		"name":                    t.Name,
		"default_commission_rate": moneyCol(t.DefaultCommissionRate),
		"deleted_at":              nil,
	}
	if t.DeletedAt != nil {
		row["deleted_at"] = timeCol(*t.DeletedAt)
	}
	return row
}

func TechnicianFromRow(row Row) (Technician, error) {
	rate, err := colMoney(row, "default_commission_rate")
	if err != nil {
		return Technician{}, err
	}
	return Technician{
		ID:                    TechnicianID(colString(row, "id")),
		Name:                  colString(row, "name"),
		DefaultCommissionRate: rate,
		DeletedAt:             colTimePtr(row, "deleted_at"),
	}, nil
}

// =============================================================================
// REVIEWS & LOOKUPS
// =============================================================================

func (r ReviewRecord) ToRow() Row {
	row := Row{
		"id":             string(r.ID),
		"review_type_id": nil,
		"notes":          r.Notes,
		"deleted_at":     nil,
	}
	if r.ReviewTypeID != nil {
		row["review_type_id"] = string(*r.ReviewTypeID)
	}
	if r.DeletedAt != nil {
		row["deleted_at"] = timeCol(*r.DeletedAt)
	}
	return row
}

func ReviewFromRow(row Row) ReviewRecord {
	r := ReviewRecord{
		ID:        ReviewID(colString(row, "id")),
		Notes:     colString(row, "notes"),
		DeletedAt: colTimePtr(row, "deleted_at"),
	}
	if row["review_type_id"] != nil {
		id := ReviewTypeID(colString(row, "review_type_id"))
		r.ReviewTypeID = &id
	}
	return r
}

func (m PaymentMethod) ToRow() Row {
	row := Row{"id": string(m.ID), "name": m.Name, "deleted_at": nil}
	if m.DeletedAt != nil {
		row["deleted_at"] = timeCol(*m.DeletedAt)
	}
	return row
}

func PaymentMethodFromRow(row Row) PaymentMethod {
	return PaymentMethod{
		ID:        PaymentMethodID(colString(row, "id")),
		Name:      colString(row, "name"),
		DeletedAt: colTimePtr(row, "deleted_at"),
	}
}

func (rt ReviewType) ToRow() Row {
	row := Row{"id": string(rt.ID), "name": rt.Name, "deleted_at": nil}
	if rt.DeletedAt != nil {
		row["deleted_at"] = timeCol(*rt.DeletedAt)
	}
	return row
}

func ReviewTypeFromRow(row Row) ReviewType {
	return ReviewType{
		ID:        ReviewTypeID(colString(row, "id")),
		Name:      colString(row, "name"),
		DeletedAt: colTimePtr(row, "deleted_at"),
	}
}
