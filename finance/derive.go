/*
Package finance computes the derived financial figures for jobs.

PURPOSE:
  Pure, side-effect-free derivation over the money package. Raw stored
  fields (subtotal, parts cost, tips) plus a technician's commission rate
  in, gross / net revenue / commission / company net out.

THE COMMISSIONABLE BASE:
  Commission is computed on NET revenue (subtotal - parts cost), never on
  gross. Parts cost is excluded from the technician's commissionable base
  but is always included in gross.

NEGATIVE COMPANY NET:
  Parts cost plus commission can exceed the subtotal. That is a valid,
  representable state surfaced as Breakdown.NetNegative, not an error.
  MinSubtotal derives the break-even subtotal for the caller to suggest.

SEE ALSO:
  - money/money.go: The decimal arithmetic underneath
  - pipeline/pipeline.go: Where the raw fields come from
*/
package finance

import (
	"sort"
	"time"

	"github.com/warp/fieldservice-engine/money"
)

var hundred = money.FromInt(100)

// =============================================================================
// DERIVATION FUNCTIONS
// =============================================================================

// NetRevenue is subtotal minus parts cost: the commissionable base.
func NetRevenue(subtotal, partsCost money.Value) money.Value {
	return subtotal.Sub(partsCost)
}

// Commission is the technician's cut of net revenue. rate is a percentage
// in [0,100].
func Commission(netRevenue, rate money.Value) money.Value {
	return netRevenue.Mul(rate.Div(hundred))
}

// CompanyNet is what the business keeps of net revenue after commission.
// Within 2dp rounding, Commission(n, r) + CompanyNet(n, r) == n.
func CompanyNet(netRevenue, rate money.Value) money.Value {
	return netRevenue.Mul(money.FromInt(1).Sub(rate.Div(hundred)))
}

// Gross is the total billed amount: subtotal + parts + tips. Parts cost is
// never dropped from gross.
func Gross(subtotal, partsCost, tips money.Value) money.Value {
	return money.Sum(subtotal, partsCost, tips)
}

// MinSubtotal is the smallest subtotal keeping company net non-negative
// for a given parts cost and rate: partsCost / (1 - rate/100).
// ok is false when rate >= 100 (no subtotal can break even).
func MinSubtotal(partsCost, rate money.Value) (money.Value, bool) {
	if rate.Cmp(hundred) >= 0 {
		return money.Zero(), false
	}
	denom := money.FromInt(1).Sub(rate.Div(hundred))
	return partsCost.Div(denom).Round2(), true
}

// =============================================================================
// BREAKDOWN - all derived figures for one job
// =============================================================================

// Breakdown holds every derived figure for a single job, rounded to 2dp.
type Breakdown struct {
	Gross      money.Value
	NetRevenue money.Value
	Commission money.Value
	CompanyNet money.Value

	// NetNegative flags that parts cost plus commission exceeded the
	// subtotal. A warning condition for the caller, not a failure.
	NetNegative bool
}

// Derive computes the full breakdown from raw stored fields. Intermediates
// stay unrounded; only the returned figures are rounded.
func Derive(subtotal, partsCost, tips, rate money.Value) Breakdown {
	net := NetRevenue(subtotal, partsCost)
	// The flag comes from the same rounded figure callers display, so the
	// two can never disagree at the rounding boundary.
	company := CompanyNet(net, rate).Round2()
	return Breakdown{
		Gross:       Gross(subtotal, partsCost, tips).Round2(),
		NetRevenue:  net.Round2(),
		Commission:  Commission(net, rate).Round2(),
		CompanyNet:  company,
		NetNegative: company.IsNegative(),
	}
}

// =============================================================================
// ROLLUPS
// =============================================================================

// Totals is the aggregate of a collection of breakdowns.
type Totals struct {
	Gross      money.Value
	NetRevenue money.Value
	Commission money.Value
	CompanyNet money.Value
	Count      int
}

// Rollup sums a collection with the n-ary decimal sum per column.
// Order-independent: shuffling the input never changes the rounded result.
func Rollup(items []Breakdown) Totals {
	gross := make([]money.Value, len(items))
	net := make([]money.Value, len(items))
	comm := make([]money.Value, len(items))
	company := make([]money.Value, len(items))
	for i, b := range items {
		gross[i] = b.Gross
		net[i] = b.NetRevenue
		comm[i] = b.Commission
		company[i] = b.CompanyNet
	}
	return Totals{
		Gross:      money.Sum(gross...).Round2(),
		NetRevenue: money.Sum(net...).Round2(),
		Commission: money.Sum(comm...).Round2(),
		CompanyNet: money.Sum(company...).Round2(),
		Count:      len(items),
	}
}

// =============================================================================
// MONTHLY SUMMARY
// =============================================================================

// MonthInput is one job's raw fields plus its date, as fed to MonthlySummary.
type MonthInput struct {
	Date      time.Time
	Subtotal  money.Value
	PartsCost money.Value
	Tips      money.Value
	Rate      money.Value
}

// MonthTotals is the rollup for one calendar month.
type MonthTotals struct {
	Year  int
	Month time.Month
	Totals
}

// MonthlySummary groups jobs by calendar month and rolls each month up.
// Months are returned in chronological order.
func MonthlySummary(jobs []MonthInput) []MonthTotals {
	type ym struct {
		year  int
		month time.Month
	}
	buckets := make(map[ym][]Breakdown)
	for _, j := range jobs {
		k := ym{j.Date.Year(), j.Date.Month()}
		buckets[k] = append(buckets[k], Derive(j.Subtotal, j.PartsCost, j.Tips, j.Rate))
	}

	keys := make([]ym, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	out := make([]MonthTotals, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthTotals{Year: k.year, Month: k.month, Totals: Rollup(buckets[k])})
	}
	return out
}
