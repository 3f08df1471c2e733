package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/estate_backend/commission"
)

// ReportRepository exposes the package functions to the report workflow.
type ReportRepository struct{}

func (ReportRepository) CommissionSettings(ctx context.Context) (commission.Settings, error) {
	return GetCommissionSettings(ctx)
}

func (ReportRepository) ClosedDeals(ctx context.Context, period commission.Period) ([]commission.Deal, error) {
	return ListClosedDeals(ctx, period)
}

func (ReportRepository) DailyCounts(ctx context.Context, userId int, date time.Time) (commission.DailyCounts, error) {
	return GetDailyCounts(ctx, userId, date)
}

func (ReportRepository) OperationsUserIds(ctx context.Context) ([]int, error) {
	users, err := ListOperationsUsers(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func (ReportRepository) SaveCommissionReport(ctx context.Context, report commission.CommissionReport, userId int) (commission.CommissionReport, error) {
	return SaveCommissionReport(ctx, report, userId)
}

func (ReportRepository) GetCommissionReport(ctx context.Context, id int) (commission.CommissionReport, error) {
	return GetCommissionReport(ctx, id)
}

func (ReportRepository) SaveDailyActivityReport(ctx context.Context, report commission.DailyActivityReport, userId int) (commission.DailyActivityReport, error) {
	return SaveDailyActivityReport(ctx, report, userId)
}

func (ReportRepository) GetDailyActivityReport(ctx context.Context, id int) (commission.DailyActivityReport, error) {
	return GetDailyActivityReport(ctx, id)
}

func (ReportRepository) FindDailyActivityReport(ctx context.Context, userId int, date time.Time) (commission.DailyActivityReport, error) {
	return FindDailyActivityReport(ctx, userId, date)
}
