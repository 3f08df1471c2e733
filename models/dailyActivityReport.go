package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/estate_backend/commission"
	"github.com/mmdatafocus/estate_backend/config"
	"github.com/mmdatafocus/estate_backend/utils"
	"gorm.io/gorm"
)

// DailyActivityReport stores one row per operations user and business day.
type DailyActivityReport struct {
	ID                          int       `gorm:"primary_key" json:"id"`
	UserId                      int       `gorm:"not null;uniqueIndex:idx_daily_activity_user_date,priority:1" json:"user_id"`
	ReportDate                  time.Time `gorm:"type:date;not null;uniqueIndex:idx_daily_activity_user_date,priority:2;index" json:"report_date"`
	PropertiesAdded             int       `gorm:"not null;default:0" json:"properties_added"`
	LeadsRespondedTo            int       `gorm:"not null;default:0" json:"leads_responded_to"`
	AmendingPreviousProperties  int       `gorm:"not null;default:0" json:"amending_previous_properties"`
	PreparingContract           int       `gorm:"not null;default:0" json:"preparing_contract"`
	TasksEfficiencyDutyTime     int       `gorm:"not null;default:0" json:"tasks_efficiency_duty_time"`
	TasksEfficiencyUniform      int       `gorm:"not null;default:0" json:"tasks_efficiency_uniform"`
	TasksEfficiencyAfterDuty    int       `gorm:"not null;default:0" json:"tasks_efficiency_after_duty"`
	LeadsRespondedOutOfDutyTime int       `gorm:"not null;default:0" json:"leads_responded_out_of_duty_time"`
	UpdatedBy                   int       `gorm:"default:0" json:"updated_by"`
	CreatedAt                   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func dailyActivityCacheKey(id int) string {
	return "DailyActivityReport:" + fmt.Sprint(id)
}

func (r *DailyActivityReport) toCommission() commission.DailyActivityReport {
	return commission.DailyActivityReport{
		ID:         r.ID,
		UserId:     r.UserId,
		ReportDate: businessDate(r.ReportDate),
		DailyCounts: commission.DailyCounts{
			PropertiesAdded:            r.PropertiesAdded,
			LeadsRespondedTo:           r.LeadsRespondedTo,
			AmendingPreviousProperties: r.AmendingPreviousProperties,
		},
		DailyManualFields: commission.DailyManualFields{
			PreparingContract:           r.PreparingContract,
			TasksEfficiencyDutyTime:     r.TasksEfficiencyDutyTime,
			TasksEfficiencyUniform:      r.TasksEfficiencyUniform,
			TasksEfficiencyAfterDuty:    r.TasksEfficiencyAfterDuty,
			LeadsRespondedOutOfDutyTime: r.LeadsRespondedOutOfDutyTime,
		},
	}
}

func dailyActivityFromCore(report commission.DailyActivityReport) DailyActivityReport {
	return DailyActivityReport{
		ID:                          report.ID,
		UserId:                      report.UserId,
		ReportDate:                  dateColumn(report.ReportDate),
		PropertiesAdded:             report.PropertiesAdded,
		LeadsRespondedTo:            report.LeadsRespondedTo,
		AmendingPreviousProperties:  report.AmendingPreviousProperties,
		PreparingContract:           report.PreparingContract,
		TasksEfficiencyDutyTime:     report.TasksEfficiencyDutyTime,
		TasksEfficiencyUniform:      report.TasksEfficiencyUniform,
		TasksEfficiencyAfterDuty:    report.TasksEfficiencyAfterDuty,
		LeadsRespondedOutOfDutyTime: report.LeadsRespondedOutOfDutyTime,
	}
}

// SaveDailyActivityReport inserts or updates a report. A second row for the same
// user and day is refused with a validation error on report_date.
func SaveDailyActivityReport(ctx context.Context, report commission.DailyActivityReport, userId int) (commission.DailyActivityReport, error) {
	if err := report.Validate(); err != nil {
		return commission.DailyActivityReport{}, err
	}
	row := dailyActivityFromCore(report)
	row.UpdatedBy = userId

	db := config.GetDB()
	tx := db.Begin()

	var count int64
	if err := tx.WithContext(ctx).Model(&DailyActivityReport{}).
		Where("user_id = ? AND report_date = ? AND id <> ?", row.UserId, row.ReportDate, row.ID).
		Count(&count).Error; err != nil {
		tx.Rollback()
		return commission.DailyActivityReport{}, err
	}
	if count > 0 {
		tx.Rollback()
		return commission.DailyActivityReport{}, &commission.ValidationError{
			Field:   "report_date",
			Message: fmt.Sprintf("a report for user %d on %s already exists", row.UserId, row.ReportDate.Format(utils.DateLayout)),
		}
	}

	if row.ID == 0 {
		if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
			tx.Rollback()
			return commission.DailyActivityReport{}, err
		}
	} else {
		result := tx.WithContext(ctx).Model(&DailyActivityReport{ID: row.ID}).
			Select("*").Omit("ID", "CreatedAt").Updates(&row)
		if result.Error != nil {
			tx.Rollback()
			return commission.DailyActivityReport{}, result.Error
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			return commission.DailyActivityReport{}, utils.ErrorRecordNotFound
		}
	}

	if err := tx.Commit().Error; err != nil {
		return commission.DailyActivityReport{}, err
	}
	if err := config.RemoveRedisKey(dailyActivityCacheKey(row.ID)); err != nil {
		return commission.DailyActivityReport{}, err
	}
	return row.toCommission(), nil
}

func GetDailyActivityReport(ctx context.Context, id int) (commission.DailyActivityReport, error) {
	key := dailyActivityCacheKey(id)
	cache := config.ReportCacheEnabled()

	var report commission.DailyActivityReport
	if cache {
		var cached DailyActivityReport
		exists, err := config.GetRedisObject(key, &cached)
		if err != nil {
			return commission.DailyActivityReport{}, err
		}
		if exists {
			return cached.toCommission(), nil
		}
	}

	row, err := utils.FetchModel[DailyActivityReport](ctx, id)
	if err != nil {
		return commission.DailyActivityReport{}, err
	}
	report = row.toCommission()

	if cache {
		if err := config.SetRedisObject(key, row, config.ReportCacheTTL()); err != nil {
			return commission.DailyActivityReport{}, err
		}
	}
	return report, nil
}

// FindDailyActivityReport looks a report up by its natural key.
func FindDailyActivityReport(ctx context.Context, userId int, date time.Time) (commission.DailyActivityReport, error) {
	db := config.GetDB()
	var row DailyActivityReport
	err := db.WithContext(ctx).
		Where("user_id = ? AND report_date = ?", userId, dateColumn(date)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return commission.DailyActivityReport{}, utils.ErrorRecordNotFound
		}
		return commission.DailyActivityReport{}, err
	}
	return row.toCommission(), nil
}

// ListDailyActivityReports filters by an inclusive date range and, optionally, one user.
func ListDailyActivityReports(ctx context.Context, from time.Time, to time.Time, userId *int) ([]commission.DailyActivityReport, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&DailyActivityReport{}).
		Where("report_date BETWEEN ? AND ?", dateColumn(from), dateColumn(to))
	if userId != nil && *userId > 0 {
		dbCtx = dbCtx.Where("user_id = ?", *userId)
	}

	var rows []*DailyActivityReport
	if err := dbCtx.Order("report_date, user_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	results := make([]commission.DailyActivityReport, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.toCommission())
	}
	return results, nil
}
