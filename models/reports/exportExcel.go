package reports

import (
	"fmt"
	"io"

	"github.com/mmdatafocus/estate_backend/commission"
	"github.com/mmdatafocus/estate_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	summarySheet = "Summary"
	dealsSheet   = "Deals"
	dailySheet   = "Daily Activity"
)

type ExcelExporter interface {
	GetCellValues() []interface{}
}

type lineItemRow commission.LineItem

func (l lineItemRow) GetCellValues() []interface{} {
	return []interface{}{
		l.DealId,
		l.Reference,
		string(l.DealType),
		l.ClosedDate.Format(utils.DateLayout),
		money(l.Price),
		money(l.Commission),
	}
}

type dailyRow commission.DailyActivityReport

func (d dailyRow) GetCellValues() []interface{} {
	r := commission.DailyActivityReport(d)
	return []interface{}{
		r.ReportDate.Format(utils.DateLayout),
		r.UserId,
		r.PropertiesAdded,
		r.LeadsRespondedTo,
		r.AmendingPreviousProperties,
		r.PreparingContract,
		r.TasksEfficiencyDutyTime,
		r.TasksEfficiencyUniform,
		r.TasksEfficiencyAfterDuty,
		r.LeadsRespondedOutOfDutyTime,
		r.EffectiveLeadsResponded(),
	}
}

func money(d decimal.Decimal) float64 {
	return commission.RoundMoney(d).InexactFloat64()
}

// writeSheet fills sheet with a heading row followed by one row per exporter.
func writeSheet(f *excelize.File, sheet string, headings []string, data []ExcelExporter) error {
	for i, h := range headings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for rowNo, d := range data {
		for i, value := range d.GetCellValues() {
			cell, err := excelize.CoordinatesToCellName(i+1, rowNo+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExportCommissionReportExcel writes a workbook with the report totals and its deal lines.
func ExportCommissionReportExcel(w io.Writer, report commission.CommissionReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	summary := [][]interface{}{
		{"Report", report.ID},
		{"Start Date", report.StartDate.Format(utils.DateLayout)},
		{"End Date", report.EndDate.Format(utils.DateLayout)},
		{"Commission Percentage", report.CommissionPercentage.InexactFloat64()},
		{"Total Properties", report.TotalPropertiesCount},
		{"Sales Count", report.TotalSalesCount},
		{"Rent Count", report.TotalRentCount},
		{"Sales Value", money(report.TotalSalesValue)},
		{"Rent Value", money(report.TotalRentValue)},
		{"Total Commission", money(report.TotalCommissionAmount)},
		{"Manually Edited", report.ManuallyEdited},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(dealsSheet); err != nil {
		return err
	}
	lines := make([]ExcelExporter, 0, len(report.LineItems))
	for _, item := range report.LineItems {
		lines = append(lines, lineItemRow(item))
	}
	headings := []string{"Deal", "Reference", "Type", "Closed Date", "Price", "Commission"}
	if err := writeSheet(f, dealsSheet, headings, lines); err != nil {
		return err
	}

	return f.Write(w)
}

// ExportDailyActivityExcel writes one row per stored daily report.
func ExportDailyActivityExcel(w io.Writer, rows []commission.DailyActivityReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dailySheet); err != nil {
		return err
	}
	data := make([]ExcelExporter, 0, len(rows))
	for _, r := range rows {
		data = append(data, dailyRow(r))
	}
	headings := []string{
		"Report Date", "User", "Properties Added", "Leads Responded", "Amended Properties",
		"Preparing Contract", "Efficiency Duty Time", "Efficiency Uniform", "Efficiency After Duty",
		"Leads Out Of Duty", "Effective Leads",
	}
	if err := writeSheet(f, dailySheet, headings, data); err != nil {
		return err
	}
	return f.Write(w)
}
