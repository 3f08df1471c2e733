package commission

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustPeriod(t *testing.T, start, end time.Time) Period {
	t.Helper()
	p, err := NewPeriod(start, end)
	if err != nil {
		t.Fatalf("NewPeriod: %v", err)
	}
	return p
}

func TestAggregatePeriod_SaleAndRent(t *testing.T) {
	period := mustPeriod(t, day(2025, 3, 1), day(2025, 3, 31))
	deals := []Deal{
		{ID: 1, Reference: "PRP-001", DealType: DealTypeSale, Price: dec("100000"), ClosedDate: day(2025, 3, 4)},
		{ID: 2, Reference: "PRP-002", DealType: DealTypeRent, Price: dec("50000"), ClosedDate: day(2025, 3, 9)},
	}

	r, err := AggregatePeriod(period, deals, sampleSettings())
	if err != nil {
		t.Fatalf("AggregatePeriod: %v", err)
	}
	if r.TotalSalesValue.StringFixed(2) != "100000.00" {
		t.Fatalf("expected sales value 100000.00, got %s", r.TotalSalesValue.StringFixed(2))
	}
	if r.TotalRentValue.StringFixed(2) != "50000.00" {
		t.Fatalf("expected rent value 50000.00, got %s", r.TotalRentValue.StringFixed(2))
	}
	if r.TotalCommissionAmount.StringFixed(2) != "6000.00" {
		t.Fatalf("expected commission 6000.00, got %s", r.TotalCommissionAmount.StringFixed(2))
	}
	if r.TotalPropertiesCount != 2 || r.TotalSalesCount != 1 || r.TotalRentCount != 1 {
		t.Fatalf("unexpected counts properties=%d sales=%d rent=%d", r.TotalPropertiesCount, r.TotalSalesCount, r.TotalRentCount)
	}
	if !r.CommissionPercentage.Equal(dec("4")) {
		t.Fatalf("expected percentage 4, got %s", r.CommissionPercentage)
	}
	if len(r.LineItems) != 2 || r.LineItems[0].Commission.StringFixed(2) != "4000.00" || r.LineItems[1].Commission.StringFixed(2) != "2000.00" {
		t.Fatalf("unexpected line items %+v", r.LineItems)
	}
}

func TestAggregatePeriod_LineItemOrder(t *testing.T) {
	period := mustPeriod(t, day(2025, 1, 1), day(2025, 6, 30))
	deals := []Deal{
		{ID: 9, DealType: DealTypeRent, Price: dec("1200"), ClosedDate: day(2025, 5, 2)},
		{ID: 3, DealType: DealTypeSale, Price: dec("90000"), ClosedDate: day(2025, 2, 1)},
		{ID: 7, DealType: DealTypeSale, Price: dec("75000"), ClosedDate: day(2025, 5, 2)},
		{ID: 5, DealType: DealTypeRent, Price: dec("800"), ClosedDate: day(2025, 1, 15)},
	}

	r, err := AggregatePeriod(period, deals, sampleSettings())
	if err != nil {
		t.Fatalf("AggregatePeriod: %v", err)
	}
	var ids []int
	for _, item := range r.LineItems {
		ids = append(ids, item.DealId)
	}
	if !reflect.DeepEqual(ids, []int{5, 3, 7, 9}) {
		t.Fatalf("expected order [5 3 7 9], got %v", ids)
	}
	if deals[0].ID != 9 {
		t.Fatalf("input slice must not be reordered")
	}
}

func TestAggregatePeriod_Idempotent(t *testing.T) {
	period := mustPeriod(t, day(2025, 1, 1), day(2025, 1, 31))
	deals := []Deal{
		{ID: 2, DealType: DealTypeRent, Price: dec("1333.33"), ClosedDate: day(2025, 1, 20)},
		{ID: 1, DealType: DealTypeSale, Price: dec("245999.99"), ClosedDate: day(2025, 1, 20)},
		{ID: 4, DealType: DealTypeSale, Price: dec("10.01"), ClosedDate: day(2025, 1, 3)},
	}
	s := sampleSettings()
	s.Administration = dec("3.75")

	first, err := AggregatePeriod(period, deals, s)
	if err != nil {
		t.Fatalf("AggregatePeriod: %v", err)
	}
	second, err := AggregatePeriod(period, deals, s)
	if err != nil {
		t.Fatalf("AggregatePeriod: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestAggregatePeriod_Invariants(t *testing.T) {
	period := mustPeriod(t, day(2024, 12, 1), day(2025, 2, 28))
	var deals []Deal
	for i := 1; i <= 25; i++ {
		dt := DealTypeSale
		if i%3 == 0 {
			dt = DealTypeRent
		}
		deals = append(deals, Deal{
			ID:         i,
			DealType:   dt,
			Price:      dec("1000.37").Mul(dec("1.5")).Add(dec("17")).Mul(decFromInt(i)),
			ClosedDate: day(2025, 1, i),
		})
	}
	r, err := AggregatePeriod(period, deals, sampleSettings())
	if err != nil {
		t.Fatalf("AggregatePeriod: %v", err)
	}
	if r.TotalPropertiesCount != r.TotalSalesCount+r.TotalRentCount {
		t.Fatalf("properties %d != sales %d + rent %d", r.TotalPropertiesCount, r.TotalSalesCount, r.TotalRentCount)
	}
	want := RoundMoney(r.TotalSalesValue.Add(r.TotalRentValue).Mul(r.CommissionPercentage).Div(dec("100")))
	if !r.TotalCommissionAmount.Equal(want) {
		t.Fatalf("expected total commission %s, got %s", want, r.TotalCommissionAmount)
	}
}

func TestAggregatePeriod_EmptyPeriod(t *testing.T) {
	period := mustPeriod(t, day(2025, 7, 1), day(2025, 7, 1))
	r, err := AggregatePeriod(period, nil, sampleSettings())
	if err != nil {
		t.Fatalf("AggregatePeriod: %v", err)
	}
	if r.TotalPropertiesCount != 0 || !r.TotalCommissionAmount.IsZero() || len(r.LineItems) != 0 {
		t.Fatalf("expected empty report, got %+v", r)
	}
}

func TestAggregatePeriod_RejectsBadInput(t *testing.T) {
	period := mustPeriod(t, day(2025, 1, 1), day(2025, 1, 31))

	_, err := AggregatePeriod(period, []Deal{{ID: 1, DealType: "lease", Price: dec("10"), ClosedDate: day(2025, 1, 2)}}, sampleSettings())
	var inputErr *InvalidInputError
	if !errors.As(err, &inputErr) || inputErr.Field != "deal_type" {
		t.Fatalf("expected deal_type InvalidInputError, got %v", err)
	}

	_, err = AggregatePeriod(period, []Deal{{ID: 1, DealType: DealTypeSale, Price: dec("0"), ClosedDate: day(2025, 1, 2)}}, sampleSettings())
	if !errors.As(err, &inputErr) || inputErr.Field != "price" {
		t.Fatalf("expected price InvalidInputError, got %v", err)
	}

	_, err = NewPeriod(day(2025, 2, 1), day(2025, 1, 1))
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "end_date" {
		t.Fatalf("expected end_date ValidationError, got %v", err)
	}
}

func TestCommissionReport_RecalculateUsesCurrentPercentage(t *testing.T) {
	period := mustPeriod(t, day(2025, 4, 1), day(2025, 4, 30))
	deals := []Deal{{ID: 1, DealType: DealTypeSale, Price: dec("200000"), ClosedDate: day(2025, 4, 10)}}

	r, err := AggregatePeriod(period, deals, sampleSettings())
	if err != nil {
		t.Fatalf("AggregatePeriod: %v", err)
	}
	r.ID = 42
	if err := r.ApplyOverride(CommissionReportOverride{TotalSalesCount: intPtr(9)}); err != nil {
		t.Fatalf("ApplyOverride: %v", err)
	}

	s := sampleSettings()
	s.Administration = dec("5")
	deals = append(deals, Deal{ID: 2, DealType: DealTypeRent, Price: dec("20000"), ClosedDate: day(2025, 4, 11)})
	if err := r.Recalculate(deals, s); err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if r.ID != 42 {
		t.Fatalf("expected id preserved, got %d", r.ID)
	}
	if !r.StartDate.Equal(period.StartDate) || !r.EndDate.Equal(period.EndDate) {
		t.Fatalf("expected stored period preserved")
	}
	if !r.CommissionPercentage.Equal(dec("5")) {
		t.Fatalf("expected percentage re-read as 5, got %s", r.CommissionPercentage)
	}
	if r.TotalSalesCount != 1 || r.TotalRentCount != 1 {
		t.Fatalf("expected manual count overwritten, got sales=%d rent=%d", r.TotalSalesCount, r.TotalRentCount)
	}
	if r.TotalCommissionAmount.StringFixed(2) != "11000.00" {
		t.Fatalf("expected 11000.00, got %s", r.TotalCommissionAmount.StringFixed(2))
	}
}

func TestPeriod_Contains(t *testing.T) {
	p := mustPeriod(t, day(2025, 3, 1), day(2025, 3, 31))
	if !p.Contains(time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)) {
		t.Fatalf("last day should be inside the period")
	}
	if p.Contains(day(2025, 4, 1)) {
		t.Fatalf("day after end should be outside the period")
	}
}
