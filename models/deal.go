package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/estate_backend/commission"
	"github.com/mmdatafocus/estate_backend/config"
	"github.com/mmdatafocus/estate_backend/utils"
	"github.com/shopspring/decimal"
)

// Deal is a property transaction owned by the CRM. Reporting only reads it.
type Deal struct {
	ID         int                 `gorm:"primary_key" json:"id"`
	Reference  string              `gorm:"size:64;not null;index" json:"reference"`
	PropertyId int                 `gorm:"index" json:"property_id"`
	AgentId    int                 `gorm:"index" json:"agent_id"`
	DealType   commission.DealType `gorm:"size:10;not null" json:"deal_type"`
	Status     DealStatus          `gorm:"size:20;not null;default:open;index:idx_deal_status_closed,priority:1" json:"status"`
	Price      decimal.Decimal     `gorm:"type:decimal(20,4);not null;default:0" json:"price"`
	ClosedDate *time.Time          `gorm:"index:idx_deal_status_closed,priority:2" json:"closed_date"`
	CreatedAt  time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d Deal) toCommissionDeal() commission.Deal {
	return commission.Deal{
		ID:         d.ID,
		Reference:  d.Reference,
		DealType:   d.DealType,
		Price:      d.Price,
		ClosedDate: utils.DereferencePtr(d.ClosedDate),
	}
}

// businessDate keeps the calendar date of t and places it at midnight in the
// business timezone. Date columns come back from the drivers at UTC midnight.
func businessDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, config.BusinessTimezone())
}

// dateColumn is the value written to and compared against DATE columns.
func dateColumn(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// periodBounds turns an inclusive date period into instants in the business timezone.
func periodBounds(period commission.Period) (time.Time, time.Time) {
	return businessDate(period.StartDate), utils.EndOfDay(businessDate(period.EndDate))
}

// ListClosedDeals returns closed deals whose closed date falls inside the period.
func ListClosedDeals(ctx context.Context, period commission.Period) ([]commission.Deal, error) {
	from, to := periodBounds(period)

	db := config.GetDB()
	var rows []*Deal
	err := db.WithContext(ctx).
		Where("status = ?", DealStatusClosed).
		Where("closed_date BETWEEN ? AND ?", from, to).
		Order("closed_date, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	deals := make([]commission.Deal, 0, len(rows))
	for _, row := range rows {
		deals = append(deals, row.toCommissionDeal())
	}
	return deals, nil
}
