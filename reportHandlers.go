package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/estate_backend/commission"
	"github.com/mmdatafocus/estate_backend/config"
	"github.com/mmdatafocus/estate_backend/middlewares"
	"github.com/mmdatafocus/estate_backend/models"
	"github.com/mmdatafocus/estate_backend/models/reports"
	"github.com/mmdatafocus/estate_backend/utils"
	"github.com/mmdatafocus/estate_backend/workflow"
	"github.com/shopspring/decimal"
)

// reportQueries are the read and admin operations that do not go through the workflow.
type reportQueries interface {
	ListCommissionSettings(ctx context.Context) ([]*models.CommissionSetting, error)
	SetCommissionSetting(ctx context.Context, name string, value decimal.Decimal, updatedBy int) (*models.CommissionSetting, error)
	ListCommissionReports(ctx context.Context, from *time.Time, to *time.Time) ([]commission.CommissionReport, error)
	DeleteCommissionReport(ctx context.Context, id int) error
	ListDailyActivityReports(ctx context.Context, from time.Time, to time.Time, userId *int) ([]commission.DailyActivityReport, error)
	GetOperationsSummary(ctx context.Context, from time.Time, to time.Time, userId *int) ([]*reports.OperationsSummary, error)
}

type modelQueries struct{}

func (modelQueries) ListCommissionSettings(ctx context.Context) ([]*models.CommissionSetting, error) {
	return models.ListCommissionSettings(ctx)
}

func (modelQueries) SetCommissionSetting(ctx context.Context, name string, value decimal.Decimal, updatedBy int) (*models.CommissionSetting, error) {
	return models.SetCommissionSetting(ctx, name, value, updatedBy)
}

func (modelQueries) ListCommissionReports(ctx context.Context, from *time.Time, to *time.Time) ([]commission.CommissionReport, error) {
	return models.ListCommissionReports(ctx, from, to)
}

func (modelQueries) DeleteCommissionReport(ctx context.Context, id int) error {
	return models.DeleteCommissionReport(ctx, id)
}

func (modelQueries) ListDailyActivityReports(ctx context.Context, from time.Time, to time.Time, userId *int) ([]commission.DailyActivityReport, error) {
	return models.ListDailyActivityReports(ctx, from, to, userId)
}

func (modelQueries) GetOperationsSummary(ctx context.Context, from time.Time, to time.Time, userId *int) ([]*reports.OperationsSummary, error) {
	return reports.GetOperationsSummary(ctx, from, to, userId)
}

type reportHandlers struct {
	workflow *workflow.ReportWorkflow
	queries  reportQueries
}

type settingInput struct {
	Value *decimal.Decimal `json:"value" validate:"required"`
}

type sharesInput struct {
	Price *decimal.Decimal `json:"price" validate:"required"`
}

type periodInput struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

type dailyReportInput struct {
	UserId     int    `json:"user_id" validate:"required,gt=0"`
	ReportDate string `json:"report_date" validate:"required"`
}

// writeError maps domain errors to HTTP responses.
func writeError(c *gin.Context, err error) {
	var invalid *commission.InvalidInputError
	var verr *commission.ValidationError
	var cfgErr *commission.ConfigurationError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error(), "field": invalid.Field})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "report could not be calculated, check commission settings",
			"key":   cfgErr.Key,
		})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorReportLocked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "correlation_id": cid})
	}
}

// bindJSON decodes and validates the body. It writes the 400 response itself.
func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return false
	}
	if err := utils.ValidateStruct(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
		return false
	}
	return true
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id", "field": "id"})
		return 0, false
	}
	return id, true
}

func parseDateField(field string, value string) (time.Time, error) {
	d, err := utils.ParseDate(value, config.BusinessTimezone())
	if err != nil {
		return time.Time{}, &commission.ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return d, nil
}

// rangeQuery reads the required from/to and the optional user_id query parameters.
func rangeQuery(c *gin.Context) (time.Time, time.Time, *int, error) {
	from, err := parseDateField("from", c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, nil, err
	}
	to, err := parseDateField("to", c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, nil, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, nil, &commission.ValidationError{Field: "to", Message: "must not be before from"}
	}
	var userId *int
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return time.Time{}, time.Time{}, nil, &commission.ValidationError{Field: "user_id", Message: "must be a positive integer"}
		}
		userId = &n
	}
	return from, to, userId, nil
}

func currentUser(c *gin.Context) int {
	id, _ := utils.GetUserIdFromContext(c.Request.Context())
	return id
}

func (h *reportHandlers) listCommissionSettings(c *gin.Context) {
	settings, err := h.queries.ListCommissionSettings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *reportHandlers) setCommissionSetting(c *gin.Context) {
	var input settingInput
	if !bindJSON(c, &input) {
		return
	}
	setting, err := h.queries.SetCommissionSetting(c.Request.Context(), c.Param("name"), *input.Value, currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (h *reportHandlers) computeShares(c *gin.Context) {
	var input sharesInput
	if !bindJSON(c, &input) {
		return
	}
	breakdown, err := h.workflow.ComputeDealShares(c.Request.Context(), *input.Price)
	var cfgErr *commission.ConfigurationError
	if errors.As(err, &cfgErr) && breakdown.Shares != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "report could not be calculated, check commission settings",
			"key":       cfgErr.Key,
			"detail":    cfgErr.Message,
			"breakdown": breakdown,
		})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func (h *reportHandlers) createCommissionReport(c *gin.Context) {
	var input periodInput
	if !bindJSON(c, &input) {
		return
	}
	start, err := parseDateField("start_date", input.StartDate)
	if err != nil {
		writeError(c, err)
		return
	}
	end, err := parseDateField("end_date", input.EndDate)
	if err != nil {
		writeError(c, err)
		return
	}
	period, err := commission.NewPeriod(start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	report, err := h.workflow.CreateCommissionReport(c.Request.Context(), period)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *reportHandlers) listCommissionReports(c *gin.Context) {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		d, err := parseDateField("from", raw)
		if err != nil {
			writeError(c, err)
			return
		}
		from = &d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := parseDateField("to", raw)
		if err != nil {
			writeError(c, err)
			return
		}
		to = &d
	}
	results, err := h.queries.ListCommissionReports(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *reportHandlers) getCommissionReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	report, err := h.workflow.Store.GetCommissionReport(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportHandlers) updateCommissionReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input commission.CommissionReportOverride
	if !bindJSON(c, &input) {
		return
	}
	report, err := h.workflow.UpdateCommissionReport(c.Request.Context(), id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportHandlers) recalculateCommissionReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	report, err := h.workflow.RecalculateCommissionReport(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportHandlers) deleteCommissionReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.queries.DeleteCommissionReport(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *reportHandlers) exportCommissionReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	report, err := h.workflow.Store.GetCommissionReport(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Type", reports.ExcelContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=commission-report-%d.xlsx", id))
	if err := reports.ExportCommissionReportExcel(c.Writer, report); err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
	}
}

func (h *reportHandlers) createDailyActivityReport(c *gin.Context) {
	var input dailyReportInput
	if !bindJSON(c, &input) {
		return
	}
	date, err := parseDateField("report_date", input.ReportDate)
	if err != nil {
		writeError(c, err)
		return
	}
	report, err := h.workflow.CreateDailyActivityReport(c.Request.Context(), input.UserId, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *reportHandlers) listDailyActivityReports(c *gin.Context) {
	from, to, userId, err := rangeQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	results, err := h.queries.ListDailyActivityReports(c.Request.Context(), from, to, userId)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *reportHandlers) getDailyActivityReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	report, err := h.workflow.Store.GetDailyActivityReport(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportHandlers) updateDailyActivityReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input commission.DailyManualUpdate
	if !bindJSON(c, &input) {
		return
	}
	report, err := h.workflow.UpdateDailyActivityReport(c.Request.Context(), id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportHandlers) recalculateDailyActivityReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	resetManual, _ := strconv.ParseBool(c.DefaultQuery("reset_manual", "false"))
	report, err := h.workflow.RecalculateDailyActivityReport(c.Request.Context(), id, resetManual)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportHandlers) exportDailyActivityReports(c *gin.Context) {
	from, to, userId, err := rangeQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	rows, err := h.queries.ListDailyActivityReports(c.Request.Context(), from, to, userId)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Type", reports.ExcelContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=daily-activity-%s-%s.xlsx",
		from.Format(utils.DateLayout), to.Format(utils.DateLayout)))
	if err := reports.ExportDailyActivityExcel(c.Writer, rows); err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
	}
}

func (h *reportHandlers) operationsSummary(c *gin.Context) {
	from, to, userId, err := rangeQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	results, err := h.queries.GetOperationsSummary(c.Request.Context(), from, to, userId)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *reportHandlers) register(r gin.IRouter) {
	admin := string(models.UserRoleAdmin)
	manager := string(models.UserRoleOperationsManager)

	settings := r.Group("/commission-settings", middlewares.RequireRole())
	settings.GET("", h.listCommissionSettings)
	settings.PUT("/:name", middlewares.RequireRole(admin), h.setCommissionSetting)

	r.POST("/commission-shares", middlewares.RequireRole(), h.computeShares)

	commissionReports := r.Group("/commission-reports", middlewares.RequireRole(admin, manager))
	commissionReports.POST("", h.createCommissionReport)
	commissionReports.GET("", h.listCommissionReports)
	commissionReports.GET("/:id", h.getCommissionReport)
	commissionReports.PUT("/:id", h.updateCommissionReport)
	commissionReports.POST("/:id/recalculate", h.recalculateCommissionReport)
	commissionReports.DELETE("/:id", middlewares.RequireRole(admin), h.deleteCommissionReport)
	commissionReports.GET("/:id/export", h.exportCommissionReport)

	daily := r.Group("/daily-activity-reports", middlewares.RequireRole())
	daily.POST("", h.createDailyActivityReport)
	daily.GET("", h.listDailyActivityReports)
	daily.GET("/export", h.exportDailyActivityReports)
	daily.GET("/:id", h.getDailyActivityReport)
	daily.PUT("/:id", h.updateDailyActivityReport)
	daily.POST("/:id/recalculate", h.recalculateDailyActivityReport)

	r.GET("/operations-summary", middlewares.RequireRole(admin, manager), h.operationsSummary)
}
