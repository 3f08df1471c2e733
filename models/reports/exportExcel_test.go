package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/mmdatafocus/estate_backend/commission"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func sampleReport() commission.CommissionReport {
	closed := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	return commission.CommissionReport{
		ID:                    5,
		StartDate:             time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:               time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		CommissionPercentage:  decimal.NewFromInt(4),
		TotalPropertiesCount:  2,
		TotalSalesCount:       1,
		TotalRentCount:        1,
		TotalSalesValue:       decimal.NewFromInt(100000),
		TotalRentValue:        decimal.NewFromInt(10000),
		TotalCommissionAmount: decimal.NewFromInt(4400),
		LineItems: []commission.LineItem{
			{DealId: 1, Reference: "S-1", DealType: commission.DealTypeSale, Price: decimal.NewFromInt(100000), Commission: decimal.NewFromInt(4000), ClosedDate: closed},
			{DealId: 2, Reference: "R-1", DealType: commission.DealTypeRent, Price: decimal.NewFromInt(10000), Commission: decimal.NewFromInt(400), ClosedDate: closed},
		},
	}
}

func TestExportCommissionReportExcel(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportCommissionReportExcel(&buf, sampleReport()); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	total, err := f.GetCellValue(summarySheet, "B10")
	if err != nil {
		t.Fatalf("read total: %v", err)
	}
	if total != "4400" {
		t.Fatalf("total commission cell = %q, want 4400", total)
	}

	rows, err := f.GetRows(dealsSheet)
	if err != nil {
		t.Fatalf("read deals: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected heading plus 2 deal rows, got %d", len(rows))
	}
	if rows[1][1] != "S-1" || rows[2][2] != "rent" || rows[2][5] != "400" {
		t.Fatalf("unexpected deal rows %v", rows[1:])
	}
}

func TestExportDailyActivityExcel(t *testing.T) {
	rows := []commission.DailyActivityReport{
		{
			ID:                1,
			UserId:            7,
			ReportDate:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			DailyCounts:       commission.DailyCounts{PropertiesAdded: 2, LeadsRespondedTo: 3},
			DailyManualFields: commission.DailyManualFields{LeadsRespondedOutOfDutyTime: 5},
		},
	}
	var buf bytes.Buffer
	if err := ExportDailyActivityExcel(&buf, rows); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(dailySheet)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[1][0] != "2024-03-01" || got[1][10] != "0" {
		t.Fatalf("unexpected row %v", got[1])
	}
}

func TestSummarizeDailyActivity(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	rows := []commission.DailyActivityReport{
		{UserId: 9, ReportDate: day(1), DailyCounts: commission.DailyCounts{LeadsRespondedTo: 4}},
		{UserId: 7, ReportDate: day(1), DailyCounts: commission.DailyCounts{PropertiesAdded: 1, LeadsRespondedTo: 2},
			DailyManualFields: commission.DailyManualFields{LeadsRespondedOutOfDutyTime: 5, TasksEfficiencyDutyTime: -1}},
		{UserId: 7, ReportDate: day(2), DailyCounts: commission.DailyCounts{PropertiesAdded: 3, LeadsRespondedTo: 6},
			DailyManualFields: commission.DailyManualFields{LeadsRespondedOutOfDutyTime: 1, TasksEfficiencyUniform: 2}},
	}

	got := SummarizeDailyActivity(rows)
	if len(got) != 2 || got[0].UserId != 7 || got[1].UserId != 9 {
		t.Fatalf("unexpected grouping %+v", got)
	}
	s := got[0]
	if s.Days != 2 || s.PropertiesAdded != 4 || s.LeadsRespondedTo != 8 {
		t.Fatalf("unexpected totals %+v", s)
	}
	// day 1 floors at zero, day 2 gives 5
	if s.EffectiveLeadsResponded != 5 {
		t.Fatalf("effective leads = %d, want 5", s.EffectiveLeadsResponded)
	}
	if s.TasksEfficiencyTotal != 1 {
		t.Fatalf("efficiency total = %d, want 1", s.TasksEfficiencyTotal)
	}
}
