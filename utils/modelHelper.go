package utils

import (
	"context"
	"errors"

	"github.com/mmdatafocus/estate_backend/config"
	"gorm.io/gorm"
)

// FetchModel loads one row by primary key, preloading the given associations.
// A missing row is reported as ErrorRecordNotFound.
func FetchModel[T any](ctx context.Context, id int, associations ...string) (*T, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	if err := dbCtx.First(&result, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}
