package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/estate_backend/commission"
	"github.com/mmdatafocus/estate_backend/config"
	"github.com/mmdatafocus/estate_backend/models"
	"github.com/mmdatafocus/estate_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const moduleName = "reportWorkflow.go"

var tracer = otel.Tracer("estate-backend/workflow")

// ReportSource reads the CRM data a report is calculated from.
type ReportSource interface {
	CommissionSettings(ctx context.Context) (commission.Settings, error)
	ClosedDeals(ctx context.Context, period commission.Period) ([]commission.Deal, error)
	DailyCounts(ctx context.Context, userId int, date time.Time) (commission.DailyCounts, error)
	OperationsUserIds(ctx context.Context) ([]int, error)
}

// ReportStore persists report records.
type ReportStore interface {
	SaveCommissionReport(ctx context.Context, report commission.CommissionReport, userId int) (commission.CommissionReport, error)
	GetCommissionReport(ctx context.Context, id int) (commission.CommissionReport, error)
	SaveDailyActivityReport(ctx context.Context, report commission.DailyActivityReport, userId int) (commission.DailyActivityReport, error)
	GetDailyActivityReport(ctx context.Context, id int) (commission.DailyActivityReport, error)
	FindDailyActivityReport(ctx context.Context, userId int, date time.Time) (commission.DailyActivityReport, error)
}

// ReportLocker serialises writes to one report. The returned func releases the lock.
type ReportLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type ReportWorkflow struct {
	Source ReportSource
	Store  ReportStore
	Locker ReportLocker
	Logger *logrus.Logger
}

// NewReportWorkflow wires the workflow to the database, and to Redis locks when enabled.
func NewReportWorkflow() *ReportWorkflow {
	repo := models.ReportRepository{}
	w := &ReportWorkflow{
		Source: repo,
		Store:  repo,
		Logger: config.GetLogger(),
	}
	if config.ReportLockEnabled() {
		w.Locker = NewRedisReportLocker()
	}
	return w
}

// DailyRangeResult summarises a backfill run.
type DailyRangeResult struct {
	Created      int `json:"created"`
	Recalculated int `json:"recalculated"`
	Failed       int `json:"failed"`
}

func (w *ReportWorkflow) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if userName, ok := utils.GetUserNameFromContext(ctx); ok {
		attrs = append(attrs, attribute.String("user.name", userName))
	}
	return tracer.Start(ctx, "workflow."+name, trace.WithAttributes(attrs...))
}

// fail records err on the span and logs it. Configuration errors are always logged.
func (w *ReportWorkflow) fail(span trace.Span, funcName string, step string, data any, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var cfgErr *commission.ConfigurationError
	if errors.As(err, &cfgErr) {
		config.LogError(w.Logger, moduleName, funcName, step+" (check commission settings)", data, err)
		return err
	}
	if isInputError(err) {
		return err
	}
	config.LogError(w.Logger, moduleName, funcName, step, data, err)
	return err
}

func isInputError(err error) bool {
	var invalid *commission.InvalidInputError
	var verr *commission.ValidationError
	return errors.As(err, &invalid) || errors.As(err, &verr) ||
		errors.Is(err, utils.ErrorRecordNotFound) || errors.Is(err, utils.ErrorReportLocked)
}

func (w *ReportWorkflow) lock(ctx context.Context, key string) (func(), error) {
	if w.Locker == nil {
		return func() {}, nil
	}
	return w.Locker.Lock(ctx, key)
}

func currentUserId(ctx context.Context) int {
	id, _ := utils.GetUserIdFromContext(ctx)
	return id
}

// ComputeDealShares returns the per-role split of one deal price using the current settings.
// A breakdown is returned together with a *ConfigurationError when the manager share is misconfigured.
func (w *ReportWorkflow) ComputeDealShares(ctx context.Context, price decimal.Decimal) (commission.ShareBreakdown, error) {
	ctx, span := w.startSpan(ctx, "ComputeDealShares", attribute.String("price", price.String()))
	defer span.End()

	settings, err := w.Source.CommissionSettings(ctx)
	if err != nil {
		return commission.ShareBreakdown{}, w.fail(span, "ComputeDealShares", "CommissionSettings", nil, err)
	}
	breakdown, err := commission.ComputeShares(price, settings)
	if err != nil {
		return breakdown, w.fail(span, "ComputeDealShares", "ComputeShares", price.String(), err)
	}
	return breakdown, nil
}

func (w *ReportWorkflow) CreateCommissionReport(ctx context.Context, period commission.Period) (commission.CommissionReport, error) {
	ctx, span := w.startSpan(ctx, "CreateCommissionReport",
		attribute.String("start_date", period.StartDate.Format(utils.DateLayout)),
		attribute.String("end_date", period.EndDate.Format(utils.DateLayout)))
	defer span.End()

	if err := period.Validate(); err != nil {
		return commission.CommissionReport{}, w.fail(span, "CreateCommissionReport", "Validate period", period, err)
	}
	report, err := w.aggregate(ctx, period)
	if err != nil {
		return commission.CommissionReport{}, w.fail(span, "CreateCommissionReport", "AggregatePeriod", period, err)
	}
	saved, err := w.Store.SaveCommissionReport(ctx, report, currentUserId(ctx))
	if err != nil {
		return commission.CommissionReport{}, w.fail(span, "CreateCommissionReport", "SaveCommissionReport", period, err)
	}
	span.SetAttributes(attribute.Int("report_id", saved.ID))
	return saved, nil
}

// aggregate reads a fresh settings snapshot and the closed deals, then runs the aggregation.
func (w *ReportWorkflow) aggregate(ctx context.Context, period commission.Period) (commission.CommissionReport, error) {
	settings, err := w.Source.CommissionSettings(ctx)
	if err != nil {
		return commission.CommissionReport{}, err
	}
	deals, err := w.Source.ClosedDeals(ctx, period)
	if err != nil {
		return commission.CommissionReport{}, err
	}
	return commission.AggregatePeriod(period, deals, settings)
}

// RecalculateCommissionReport re-reads the deals and settings for the stored period
// and overwrites every calculated field. Manual overrides are lost.
func (w *ReportWorkflow) RecalculateCommissionReport(ctx context.Context, id int) (commission.CommissionReport, error) {
	ctx, span := w.startSpan(ctx, "RecalculateCommissionReport", attribute.Int("report_id", id))
	defer span.End()

	unlock, err := w.lock(ctx, commissionLockKey(id))
	if err != nil {
		return commission.CommissionReport{}, w.fail(span, "RecalculateCommissionReport", "Lock", id, err)
	}
	defer unlock()

	report, err := w.Store.GetCommissionReport(ctx, id)
	if err != nil {
		return commission.CommissionReport{}, w.fail(span, "RecalculateCommissionReport", "GetCommissionReport", id, err)
	}
	settings, err := w.Source.CommissionSettings(ctx)
	if err != nil {
		return commission.CommissionReport{}, w.fail(span, "RecalculateCommissionReport", "CommissionSettings", id, err)
	}
	deals, err := w.Source.ClosedDeals(ctx, report.Period())
	if err != nil {
		return commission.CommissionReport{}, w.fail(span, "RecalculateCommissionReport", "ClosedDeals", id, err)
	}
	if err := report.Recalculate(deals, settings); err != nil {
		return commission.CommissionReport{}, w.fail(span, "RecalculateCommissionReport", "Recalculate", id, err)
	}
	saved, err := w.Store.SaveCommissionReport(ctx, report, currentUserId(ctx))
	if err != nil {
		return commission.CommissionReport{}, w.fail(span, "RecalculateCommissionReport", "SaveCommissionReport", id, err)
	}
	return saved, nil
}

// UpdateCommissionReport applies a manual override. Nothing is saved when the result is invalid.
func (w *ReportWorkflow) UpdateCommissionReport(ctx context.Context, id int, override commission.CommissionReportOverride) (commission.CommissionReport, error) {
	ctx, span := w.startSpan(ctx, "UpdateCommissionReport", attribute.Int("report_id", id))
	defer span.End()

	unlock, err := w.lock(ctx, commissionLockKey(id))
	if err != nil {
		return commission.CommissionReport{}, w.fail(span, "UpdateCommissionReport", "Lock", id, err)
	}
	defer unlock()

	report, err := w.Store.GetCommissionReport(ctx, id)
	if err != nil {
		return commission.CommissionReport{}, w.fail(span, "UpdateCommissionReport", "GetCommissionReport", id, err)
	}
	if err := report.ApplyOverride(override); err != nil {
		return commission.CommissionReport{}, w.fail(span, "UpdateCommissionReport", "ApplyOverride", override, err)
	}
	saved, err := w.Store.SaveCommissionReport(ctx, report, currentUserId(ctx))
	if err != nil {
		return commission.CommissionReport{}, w.fail(span, "UpdateCommissionReport", "SaveCommissionReport", id, err)
	}
	return saved, nil
}

// CreateDailyActivityReport builds the report for one user and day.
// An existing report for the same pair is a *ValidationError on report_date.
func (w *ReportWorkflow) CreateDailyActivityReport(ctx context.Context, userId int, date time.Time) (commission.DailyActivityReport, error) {
	ctx, span := w.startSpan(ctx, "CreateDailyActivityReport",
		attribute.Int("user_id", userId),
		attribute.String("report_date", date.Format(utils.DateLayout)))
	defer span.End()

	unlock, err := w.lock(ctx, dailyLockKey(userId, date))
	if err != nil {
		return commission.DailyActivityReport{}, w.fail(span, "CreateDailyActivityReport", "Lock", userId, err)
	}
	defer unlock()

	if _, err := w.Store.FindDailyActivityReport(ctx, userId, date); err == nil {
		return commission.DailyActivityReport{}, w.fail(span, "CreateDailyActivityReport", "FindDailyActivityReport", userId,
			&commission.ValidationError{
				Field:   "report_date",
				Message: fmt.Sprintf("a report for user %d on %s already exists", userId, date.Format(utils.DateLayout)),
			})
	} else if !errors.Is(err, utils.ErrorRecordNotFound) {
		return commission.DailyActivityReport{}, w.fail(span, "CreateDailyActivityReport", "FindDailyActivityReport", userId, err)
	}

	report, err := w.newDailyReport(ctx, userId, date)
	if err != nil {
		return commission.DailyActivityReport{}, w.fail(span, "CreateDailyActivityReport", "NewDailyActivityReport", userId, err)
	}
	saved, err := w.Store.SaveDailyActivityReport(ctx, report, currentUserId(ctx))
	if err != nil {
		return commission.DailyActivityReport{}, w.fail(span, "CreateDailyActivityReport", "SaveDailyActivityReport", userId, err)
	}
	span.SetAttributes(attribute.Int("report_id", saved.ID))
	return saved, nil
}

func (w *ReportWorkflow) newDailyReport(ctx context.Context, userId int, date time.Time) (commission.DailyActivityReport, error) {
	if userId <= 0 {
		return commission.DailyActivityReport{}, &commission.ValidationError{Field: "user_id", Message: "is required"}
	}
	if date.IsZero() {
		return commission.DailyActivityReport{}, &commission.ValidationError{Field: "report_date", Message: "is required"}
	}
	counts, err := w.Source.DailyCounts(ctx, userId, date)
	if err != nil {
		return commission.DailyActivityReport{}, err
	}
	return commission.NewDailyActivityReport(userId, date, counts)
}

// RecalculateDailyActivityReport refreshes the calculated counts. Manual fields are
// kept unless resetManual is set.
func (w *ReportWorkflow) RecalculateDailyActivityReport(ctx context.Context, id int, resetManual bool) (commission.DailyActivityReport, error) {
	ctx, span := w.startSpan(ctx, "RecalculateDailyActivityReport",
		attribute.Int("report_id", id), attribute.Bool("reset_manual", resetManual))
	defer span.End()

	report, err := w.Store.GetDailyActivityReport(ctx, id)
	if err != nil {
		return commission.DailyActivityReport{}, w.fail(span, "RecalculateDailyActivityReport", "GetDailyActivityReport", id, err)
	}

	unlock, err := w.lock(ctx, dailyLockKey(report.UserId, report.ReportDate))
	if err != nil {
		return commission.DailyActivityReport{}, w.fail(span, "RecalculateDailyActivityReport", "Lock", id, err)
	}
	defer unlock()

	saved, err := w.recalculateDaily(ctx, report, resetManual)
	if err != nil {
		return commission.DailyActivityReport{}, w.fail(span, "RecalculateDailyActivityReport", "recalculateDaily", id, err)
	}
	return saved, nil
}

func (w *ReportWorkflow) recalculateDaily(ctx context.Context, report commission.DailyActivityReport, resetManual bool) (commission.DailyActivityReport, error) {
	counts, err := w.Source.DailyCounts(ctx, report.UserId, report.ReportDate)
	if err != nil {
		return commission.DailyActivityReport{}, err
	}
	if err := report.Recalculate(counts); err != nil {
		return commission.DailyActivityReport{}, err
	}
	if resetManual {
		report.ResetManual()
	}
	return w.Store.SaveDailyActivityReport(ctx, report, currentUserId(ctx))
}

// UpdateDailyActivityReport edits the manual fields only.
func (w *ReportWorkflow) UpdateDailyActivityReport(ctx context.Context, id int, update commission.DailyManualUpdate) (commission.DailyActivityReport, error) {
	ctx, span := w.startSpan(ctx, "UpdateDailyActivityReport", attribute.Int("report_id", id))
	defer span.End()

	report, err := w.Store.GetDailyActivityReport(ctx, id)
	if err != nil {
		return commission.DailyActivityReport{}, w.fail(span, "UpdateDailyActivityReport", "GetDailyActivityReport", id, err)
	}

	unlock, err := w.lock(ctx, dailyLockKey(report.UserId, report.ReportDate))
	if err != nil {
		return commission.DailyActivityReport{}, w.fail(span, "UpdateDailyActivityReport", "Lock", id, err)
	}
	defer unlock()

	if err := report.ApplyManual(update); err != nil {
		return commission.DailyActivityReport{}, w.fail(span, "UpdateDailyActivityReport", "ApplyManual", update, err)
	}
	saved, err := w.Store.SaveDailyActivityReport(ctx, report, currentUserId(ctx))
	if err != nil {
		return commission.DailyActivityReport{}, w.fail(span, "UpdateDailyActivityReport", "SaveDailyActivityReport", id, err)
	}
	return saved, nil
}

// RecalculateDailyActivityRange creates missing reports and refreshes existing ones for
// every user and day in [from, to]. Manual fields are preserved. An empty userIds means all
// operations users. Failures are logged and counted; the run continues.
func (w *ReportWorkflow) RecalculateDailyActivityRange(ctx context.Context, userIds []int, from time.Time, to time.Time) (DailyRangeResult, error) {
	ctx, span := w.startSpan(ctx, "RecalculateDailyActivityRange",
		attribute.String("from", from.Format(utils.DateLayout)),
		attribute.String("to", to.Format(utils.DateLayout)))
	defer span.End()

	var result DailyRangeResult
	period, err := commission.NewPeriod(from, to)
	if err != nil {
		return result, w.fail(span, "RecalculateDailyActivityRange", "NewPeriod", nil, err)
	}
	if len(userIds) == 0 {
		userIds, err = w.Source.OperationsUserIds(ctx)
		if err != nil {
			return result, w.fail(span, "RecalculateDailyActivityRange", "OperationsUserIds", nil, err)
		}
	}

	for _, userId := range userIds {
		for day := period.StartDate; !day.After(period.EndDate); day = day.AddDate(0, 0, 1) {
			if err := ctx.Err(); err != nil {
				return result, w.fail(span, "RecalculateDailyActivityRange", "context", nil, err)
			}
			created, err := w.refreshDay(ctx, userId, day)
			if err != nil {
				result.Failed++
				config.LogError(w.Logger, moduleName, "RecalculateDailyActivityRange", "refreshDay",
					map[string]any{"user_id": userId, "report_date": day.Format(utils.DateLayout)}, err)
				continue
			}
			if created {
				result.Created++
			} else {
				result.Recalculated++
			}
		}
	}
	span.SetAttributes(
		attribute.Int("created", result.Created),
		attribute.Int("recalculated", result.Recalculated),
		attribute.Int("failed", result.Failed))
	return result, nil
}

func (w *ReportWorkflow) refreshDay(ctx context.Context, userId int, day time.Time) (bool, error) {
	unlock, err := w.lock(ctx, dailyLockKey(userId, day))
	if err != nil {
		return false, err
	}
	defer unlock()

	existing, err := w.Store.FindDailyActivityReport(ctx, userId, day)
	if err == nil {
		_, err = w.recalculateDaily(ctx, existing, false)
		return false, err
	}
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		return false, err
	}
	report, err := w.newDailyReport(ctx, userId, day)
	if err != nil {
		return false, err
	}
	_, err = w.Store.SaveDailyActivityReport(ctx, report, currentUserId(ctx))
	return err == nil, err
}

func commissionLockKey(id int) string {
	return fmt.Sprintf("report:commission:%d", id)
}

func dailyLockKey(userId int, date time.Time) string {
	return fmt.Sprintf("report:daily:%d:%s", userId, date.Format(utils.DateLayout))
}
