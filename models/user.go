package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/estate_backend/config"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique" json:"email"`
	Role      UserRole  `gorm:"size:30;not null;index" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ListOperationsUsers returns active users whose daily activity is reported.
func ListOperationsUsers(ctx context.Context) ([]*User, error) {
	db := config.GetDB()
	var results []*User
	err := db.WithContext(ctx).
		Where("role IN ?", []UserRole{UserRoleOperations, UserRoleOperationsManager}).
		Where("is_active = ?", true).
		Order("id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
