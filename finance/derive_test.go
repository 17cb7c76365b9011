package finance_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/warp/fieldservice-engine/finance"
	"github.com/warp/fieldservice-engine/money"
)

func dollars(f float64) money.Value { return money.FromFloat(f) }

// =============================================================================
// SCENARIO TESTS
// =============================================================================

func TestDerive_StandardJob(t *testing.T) {
	// GIVEN: subtotal=500.00, partsCost=120.00, tips=20.00, rate=50
	// WHEN: deriving the breakdown
	// THEN: net=380.00, commission=190.00, companyNet=190.00, gross=640.00

	b := finance.Derive(dollars(500), dollars(120), dollars(20), dollars(50))

	assertEq(t, "net revenue", b.NetRevenue, dollars(380))
	assertEq(t, "commission", b.Commission, dollars(190))
	assertEq(t, "company net", b.CompanyNet, dollars(190))
	assertEq(t, "gross", b.Gross, dollars(640))
	if b.NetNegative {
		t.Error("net should not be flagged negative")
	}
}

func TestDerive_NetNegativeJob(t *testing.T) {
	// GIVEN: subtotal=100.00, partsCost=150.00, rate=50
	// WHEN: deriving the breakdown
	// THEN: net=-50.00, companyNet=-25.00, flagged negative,
	//       break-even subtotal 150/(1-0.5) = 300.00

	b := finance.Derive(dollars(100), dollars(150), money.Zero(), dollars(50))

	assertEq(t, "net revenue", b.NetRevenue, dollars(-50))
	assertEq(t, "company net", b.CompanyNet, dollars(-25))
	if !b.NetNegative {
		t.Error("net negative flag should be set")
	}

	min, ok := finance.MinSubtotal(dollars(150), dollars(50))
	if !ok {
		t.Fatal("min subtotal should be computable for rate < 100")
	}
	assertEq(t, "min subtotal", min, dollars(300))
}

func TestDerive_FlagAgreesWithRoundedCompanyNet(t *testing.T) {
	// Company net of -0.001 rounds to 0.00; the flag must follow the
	// rounded figure, not the raw intermediate.
	sub, err := money.FromString("99.998")
	if err != nil {
		t.Fatal(err)
	}
	b := finance.Derive(sub, dollars(100), money.Zero(), dollars(50))
	assertEq(t, "company net", b.CompanyNet, money.Zero())
	if b.NetNegative {
		t.Error("flag set while the rounded company net is 0.00")
	}
}

func TestMinSubtotal_UndefinedAtFullRate(t *testing.T) {
	// At rate >= 100 the company keeps nothing of net revenue; no
	// subtotal can cover the parts cost.
	for _, rate := range []float64{100, 150} {
		if _, ok := finance.MinSubtotal(dollars(150), dollars(rate)); ok {
			t.Errorf("rate %v: min subtotal should be undefined", rate)
		}
	}
}

func TestGross_IncludesPartsCost(t *testing.T) {
	// Parts cost is always part of gross, never silently dropped.
	g := finance.Gross(dollars(200), dollars(75.25), dollars(10))
	assertEq(t, "gross", g, dollars(285.25))
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestCommissionPlusCompanyNet_EqualsNetRevenue(t *testing.T) {
	// For any net revenue and rate in [0,100], the technician's cut and
	// the company's cut recombine to net revenue within one cent.

	rng := rand.New(rand.NewSource(7))
	cent := money.FromFloat(0.01)

	for i := 0; i < 500; i++ {
		net := money.FromFloat(rng.Float64()*2000 - 500).Round2()
		rate := money.FromFloat(rng.Float64() * 100)

		sum := finance.Commission(net, rate).Round2().
			Add(finance.CompanyNet(net, rate).Round2())
		diff := sum.Sub(net.Round2())
		if diff.IsNegative() {
			diff = diff.Neg()
		}
		if diff.GreaterThan(cent) {
			t.Fatalf("net=%v rate=%v: commission+companyNet off by %v", net, rate, diff)
		}
	}
}

func TestRollup_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	items := make([]finance.Breakdown, 150)
	for i := range items {
		items[i] = finance.Derive(
			money.FromFloat(rng.Float64()*1000),
			money.FromFloat(rng.Float64()*400),
			money.FromFloat(rng.Float64()*50),
			money.FromFloat(rng.Float64()*100),
		)
	}
	want := finance.Rollup(items)

	for trial := 0; trial < 10; trial++ {
		rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
		got := finance.Rollup(items)
		if !got.Gross.Equal(want.Gross) || !got.Commission.Equal(want.Commission) ||
			!got.CompanyNet.Equal(want.CompanyNet) || !got.NetRevenue.Equal(want.NetRevenue) {
			t.Fatalf("trial %d: rollup changed after shuffle", trial)
		}
	}
}

// =============================================================================
// MONTHLY SUMMARY
// =============================================================================

func TestMonthlySummary_GroupsByCalendarMonth(t *testing.T) {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	jobs := []finance.MonthInput{
		{Date: date(2025, time.March, 3), Subtotal: dollars(500), PartsCost: dollars(120), Tips: dollars(20), Rate: dollars(50)},
		{Date: date(2025, time.March, 20), Subtotal: dollars(100), Rate: dollars(50)},
		{Date: date(2025, time.January, 15), Subtotal: dollars(300), Rate: dollars(40)},
	}

	months := finance.MonthlySummary(jobs)
	if len(months) != 2 {
		t.Fatalf("expected 2 months, got %d", len(months))
	}
	if months[0].Month != time.January || months[1].Month != time.March {
		t.Errorf("months out of order: %v, %v", months[0].Month, months[1].Month)
	}
	if months[1].Count != 2 {
		t.Errorf("March should hold 2 jobs, got %d", months[1].Count)
	}
	// March gross: 640.00 + 100.00
	assertEq(t, "march gross", months[1].Gross, dollars(740))
}

func assertEq(t *testing.T, name string, got, want money.Value) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}
