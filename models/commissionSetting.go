package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/estate_backend/commission"
	"github.com/mmdatafocus/estate_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// CommissionSetting is one row of the flat key/value settings table.
type CommissionSetting struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"size:64;not null;uniqueIndex" json:"name"`
	Value     decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"value"`
	UpdatedBy int             `gorm:"default:0" json:"updated_by"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func ListCommissionSettings(ctx context.Context) ([]*CommissionSetting, error) {
	db := config.GetDB()
	var results []*CommissionSetting
	if err := db.WithContext(ctx).Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetCommissionSettings reads a fresh snapshot. It is never cached so that
// every computation sees the current policy.
func GetCommissionSettings(ctx context.Context) (commission.Settings, error) {
	rows, err := ListCommissionSettings(ctx)
	if err != nil {
		return commission.Settings{}, err
	}
	values := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		values[row.Name] = row.Value
	}
	return commission.SettingsFromMap(values)
}

// SetCommissionSetting upserts one setting after validating it.
func SetCommissionSetting(ctx context.Context, name string, value decimal.Decimal, updatedBy int) (*CommissionSetting, error) {
	if err := commission.ValidateSetting(name, value); err != nil {
		return nil, err
	}
	setting := CommissionSetting{
		Name:      name,
		Value:     value,
		UpdatedBy: updatedBy,
	}
	db := config.GetDB()
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}
