package models

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/mmdatafocus/estate_backend/commission"
	"github.com/mmdatafocus/estate_backend/config"
	"github.com/mmdatafocus/estate_backend/utils"
	"github.com/shopspring/decimal"
)

// These tests need a database configured through the usual DB_* variables.
func requireDatabase(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run database tests")
	}
	if config.GetDB() == nil {
		config.ConnectDatabaseWithRetry()
		MigrateTable()
	}
}

func TestIntegrationCommissionReportSaveReplacesLines(t *testing.T) {
	requireDatabase(t)
	ctx := context.Background()

	closed := time.Date(2031, 2, 3, 10, 0, 0, 0, time.UTC)
	report := commission.CommissionReport{
		StartDate:             time.Date(2031, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:               time.Date(2031, 2, 28, 0, 0, 0, 0, time.UTC),
		CommissionPercentage:  decimal.NewFromInt(10),
		TotalPropertiesCount:  1,
		TotalSalesCount:       1,
		TotalSalesValue:       decimal.NewFromInt(5000),
		TotalRentValue:        decimal.Zero,
		TotalCommissionAmount: decimal.NewFromInt(500),
		LineItems: []commission.LineItem{
			{DealId: 1, Reference: "IT-1", DealType: commission.DealTypeSale, Price: decimal.NewFromInt(5000), Commission: decimal.NewFromInt(500), ClosedDate: closed},
		},
	}
	saved, err := SaveCommissionReport(ctx, report, 1)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	defer DeleteCommissionReport(ctx, saved.ID)

	saved.LineItems = nil
	saved.TotalPropertiesCount = 0
	saved.TotalSalesCount = 0
	saved.TotalSalesValue = decimal.Zero
	saved.TotalCommissionAmount = decimal.Zero
	if _, err := SaveCommissionReport(ctx, saved, 1); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got, err := GetCommissionReport(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.LineItems) != 0 {
		t.Fatalf("expected lines to be replaced, got %d", len(got.LineItems))
	}
	if got.StartDate.Day() != 1 || got.EndDate.Day() != 28 {
		t.Fatalf("period shifted: %v - %v", got.StartDate, got.EndDate)
	}
}

func TestIntegrationDailyActivityReportIsUniquePerUserAndDay(t *testing.T) {
	requireDatabase(t)
	ctx := context.Background()

	date := time.Date(2031, 3, 4, 0, 0, 0, 0, time.UTC)
	report, err := commission.NewDailyActivityReport(987654, date, commission.DailyCounts{PropertiesAdded: 1})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	saved, err := SaveDailyActivityReport(ctx, report, 1)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	defer config.GetDB().Delete(&DailyActivityReport{}, saved.ID)

	_, err = SaveDailyActivityReport(ctx, report, 1)
	var verr *commission.ValidationError
	if !errors.As(err, &verr) || verr.Field != "report_date" {
		t.Fatalf("expected report_date validation error, got %v", err)
	}

	found, err := FindDailyActivityReport(ctx, 987654, date)
	if err != nil || found.ID != saved.ID {
		t.Fatalf("find: %+v, %v", found, err)
	}
	if _, err := FindDailyActivityReport(ctx, 987654, date.AddDate(0, 0, 1)); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
