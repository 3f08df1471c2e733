package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/estate_backend/commission"
	"github.com/mmdatafocus/estate_backend/config"
	"github.com/mmdatafocus/estate_backend/utils"
)

// Property, Lead and PropertyAmendment carry only the columns daily activity counting needs.

type Property struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Reference string    `gorm:"size:64;not null;uniqueIndex" json:"reference"`
	OwnerId   int       `gorm:"not null;index:idx_property_owner_created,priority:1" json:"owner_id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_property_owner_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Lead struct {
	ID          int        `gorm:"primary_key" json:"id"`
	AssignedTo  int        `gorm:"index" json:"assigned_to"`
	RespondedBy *int       `gorm:"index:idx_lead_responded,priority:1" json:"responded_by"`
	RespondedAt *time.Time `gorm:"index:idx_lead_responded,priority:2" json:"responded_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// PropertyAmendment is written whenever a user edits an existing listing.
type PropertyAmendment struct {
	ID         int       `gorm:"primary_key" json:"id"`
	PropertyId int       `gorm:"not null;index" json:"property_id"`
	UserId     int       `gorm:"not null;index:idx_amendment_user_created,priority:1" json:"user_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_amendment_user_created,priority:2" json:"created_at"`
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	from := businessDate(date)
	return from, utils.EndOfDay(from)
}

// GetDailyCounts counts one user's activity on one business day.
// Amendments count distinct properties that already existed before that day.
func GetDailyCounts(ctx context.Context, userId int, date time.Time) (commission.DailyCounts, error) {
	from, to := dayBounds(date)
	db := config.GetDB().WithContext(ctx)

	var propertiesAdded int64
	if err := db.Model(&Property{}).
		Where("owner_id = ? AND created_at BETWEEN ? AND ?", userId, from, to).
		Count(&propertiesAdded).Error; err != nil {
		return commission.DailyCounts{}, err
	}

	var leadsResponded int64
	if err := db.Model(&Lead{}).
		Where("responded_by = ? AND responded_at BETWEEN ? AND ?", userId, from, to).
		Count(&leadsResponded).Error; err != nil {
		return commission.DailyCounts{}, err
	}

	var amended int64
	if err := db.Model(&PropertyAmendment{}).
		Joins("JOIN properties ON properties.id = property_amendments.property_id").
		Where("property_amendments.user_id = ?", userId).
		Where("property_amendments.created_at BETWEEN ? AND ?", from, to).
		Where("properties.created_at < ?", from).
		Distinct("property_amendments.property_id").
		Count(&amended).Error; err != nil {
		return commission.DailyCounts{}, err
	}

	return commission.DailyCounts{
		PropertiesAdded:            int(propertiesAdded),
		LeadsRespondedTo:           int(leadsResponded),
		AmendingPreviousProperties: int(amended),
	}, nil
}
