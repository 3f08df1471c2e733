package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/estate_backend/commission"
	"github.com/mmdatafocus/estate_backend/config"
	"github.com/mmdatafocus/estate_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionReport is the stored header of a period commission report.
type CommissionReport struct {
	ID                    int                     `gorm:"primary_key" json:"id"`
	StartDate             time.Time               `gorm:"type:date;not null;index:idx_commission_report_period,priority:1" json:"start_date"`
	EndDate               time.Time               `gorm:"type:date;not null;index:idx_commission_report_period,priority:2" json:"end_date"`
	CommissionPercentage  decimal.Decimal         `gorm:"type:decimal(10,4);not null;default:0" json:"commission_percentage"`
	TotalPropertiesCount  int                     `gorm:"not null;default:0" json:"total_properties_count"`
	TotalSalesCount       int                     `gorm:"not null;default:0" json:"total_sales_count"`
	TotalRentCount        int                     `gorm:"not null;default:0" json:"total_rent_count"`
	TotalSalesValue       decimal.Decimal         `gorm:"type:decimal(20,4);not null;default:0" json:"total_sales_value"`
	TotalRentValue        decimal.Decimal         `gorm:"type:decimal(20,4);not null;default:0" json:"total_rent_value"`
	TotalCommissionAmount decimal.Decimal         `gorm:"type:decimal(20,4);not null;default:0" json:"total_commission_amount"`
	ManuallyEdited        bool                    `gorm:"not null;default:false" json:"manually_edited"`
	CreatedBy             int                     `gorm:"default:0" json:"created_by"`
	UpdatedBy             int                     `gorm:"default:0" json:"updated_by"`
	Lines                 []*CommissionReportLine `gorm:"foreignKey:CommissionReportId;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt             time.Time               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
}

// CommissionReportLine snapshots one deal at the time the report was calculated.
type CommissionReportLine struct {
	ID                 int                 `gorm:"primary_key" json:"id"`
	CommissionReportId int                 `gorm:"not null;index" json:"commission_report_id"`
	SortOrder          int                 `gorm:"not null;default:0" json:"sort_order"`
	DealId             int                 `gorm:"not null;index" json:"deal_id"`
	Reference          string              `gorm:"size:64" json:"reference"`
	DealType           commission.DealType `gorm:"size:10;not null" json:"deal_type"`
	Price              decimal.Decimal     `gorm:"type:decimal(20,4);not null;default:0" json:"price"`
	Commission         decimal.Decimal     `gorm:"type:decimal(20,4);not null;default:0" json:"commission"`
	ClosedDate         time.Time           `gorm:"not null" json:"closed_date"`
}

func commissionReportCacheKey(id int) string {
	return "CommissionReport:" + fmt.Sprint(id)
}

func (r *CommissionReport) toCommission() commission.CommissionReport {
	out := commission.CommissionReport{
		ID:                    r.ID,
		StartDate:             businessDate(r.StartDate),
		EndDate:               businessDate(r.EndDate),
		CommissionPercentage:  r.CommissionPercentage,
		TotalPropertiesCount:  r.TotalPropertiesCount,
		TotalSalesCount:       r.TotalSalesCount,
		TotalRentCount:        r.TotalRentCount,
		TotalSalesValue:       r.TotalSalesValue,
		TotalRentValue:        r.TotalRentValue,
		TotalCommissionAmount: r.TotalCommissionAmount,
		ManuallyEdited:        r.ManuallyEdited,
		LineItems:             make([]commission.LineItem, 0, len(r.Lines)),
	}
	for _, line := range r.Lines {
		out.LineItems = append(out.LineItems, commission.LineItem{
			DealId:     line.DealId,
			Reference:  line.Reference,
			DealType:   line.DealType,
			Price:      line.Price,
			Commission: line.Commission,
			ClosedDate: line.ClosedDate,
		})
	}
	return out
}

func commissionReportFromCore(report commission.CommissionReport) (CommissionReport, []*CommissionReportLine) {
	header := CommissionReport{
		ID:                    report.ID,
		StartDate:             dateColumn(report.StartDate),
		EndDate:               dateColumn(report.EndDate),
		CommissionPercentage:  report.CommissionPercentage,
		TotalPropertiesCount:  report.TotalPropertiesCount,
		TotalSalesCount:       report.TotalSalesCount,
		TotalRentCount:        report.TotalRentCount,
		TotalSalesValue:       report.TotalSalesValue,
		TotalRentValue:        report.TotalRentValue,
		TotalCommissionAmount: report.TotalCommissionAmount,
		ManuallyEdited:        report.ManuallyEdited,
	}
	lines := make([]*CommissionReportLine, 0, len(report.LineItems))
	for i, item := range report.LineItems {
		lines = append(lines, &CommissionReportLine{
			SortOrder:  i + 1,
			DealId:     item.DealId,
			Reference:  item.Reference,
			DealType:   item.DealType,
			Price:      item.Price,
			Commission: item.Commission,
			ClosedDate: item.ClosedDate,
		})
	}
	return header, lines
}

// SaveCommissionReport creates or replaces a report. Stored lines are always
// replaced as a whole so a report never mixes two calculations.
func SaveCommissionReport(ctx context.Context, report commission.CommissionReport, userId int) (commission.CommissionReport, error) {
	if err := report.Validate(); err != nil {
		return commission.CommissionReport{}, err
	}
	header, lines := commissionReportFromCore(report)
	header.UpdatedBy = userId

	db := config.GetDB()
	tx := db.Begin()

	if header.ID == 0 {
		header.CreatedBy = userId
		if err := tx.WithContext(ctx).Omit("Lines").Create(&header).Error; err != nil {
			tx.Rollback()
			return commission.CommissionReport{}, err
		}
	} else {
		var existing CommissionReport
		if err := tx.WithContext(ctx).Select("id", "created_by").First(&existing, header.ID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return commission.CommissionReport{}, utils.ErrorRecordNotFound
			}
			return commission.CommissionReport{}, err
		}
		header.CreatedBy = existing.CreatedBy
		if err := tx.WithContext(ctx).Omit("Lines", "CreatedAt").Save(&header).Error; err != nil {
			tx.Rollback()
			return commission.CommissionReport{}, err
		}
		if err := tx.WithContext(ctx).Where("commission_report_id = ?", header.ID).Delete(&CommissionReportLine{}).Error; err != nil {
			tx.Rollback()
			return commission.CommissionReport{}, err
		}
	}

	for _, line := range lines {
		line.CommissionReportId = header.ID
	}
	if len(lines) > 0 {
		if err := tx.WithContext(ctx).Create(&lines).Error; err != nil {
			tx.Rollback()
			return commission.CommissionReport{}, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return commission.CommissionReport{}, err
	}
	if err := config.RemoveRedisKey(commissionReportCacheKey(header.ID)); err != nil {
		return commission.CommissionReport{}, err
	}

	header.Lines = lines
	return header.toCommission(), nil
}

func GetCommissionReport(ctx context.Context, id int) (commission.CommissionReport, error) {
	key := commissionReportCacheKey(id)
	cache := config.ReportCacheEnabled()

	var report commission.CommissionReport
	if cache {
		exists, err := config.GetRedisObject(key, &report)
		if err != nil {
			return commission.CommissionReport{}, err
		}
		if exists {
			return report, nil
		}
	}

	db := config.GetDB()
	var row CommissionReport
	err := db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order")
	}).First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return commission.CommissionReport{}, utils.ErrorRecordNotFound
		}
		return commission.CommissionReport{}, err
	}
	report = row.toCommission()

	if cache {
		if err := config.SetRedisObject(key, &report, config.ReportCacheTTL()); err != nil {
			return commission.CommissionReport{}, err
		}
	}
	return report, nil
}

// ListCommissionReports returns report headers, newest period first.
// Periods overlapping [from, to] are included when the bounds are given.
func ListCommissionReports(ctx context.Context, from *time.Time, to *time.Time) ([]commission.CommissionReport, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&CommissionReport{})
	if from != nil {
		dbCtx = dbCtx.Where("end_date >= ?", dateColumn(*from))
	}
	if to != nil {
		dbCtx = dbCtx.Where("start_date <= ?", dateColumn(*to))
	}

	var rows []*CommissionReport
	if err := dbCtx.Order("start_date DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	results := make([]commission.CommissionReport, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.toCommission())
	}
	return results, nil
}

func DeleteCommissionReport(ctx context.Context, id int) error {
	db := config.GetDB()
	tx := db.Begin()

	result := tx.WithContext(ctx).Delete(&CommissionReport{}, id)
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return utils.ErrorRecordNotFound
	}
	if err := tx.WithContext(ctx).Where("commission_report_id = ?", id).Delete(&CommissionReportLine{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}
	return config.RemoveRedisKey(commissionReportCacheKey(id))
}
