package commission

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type DealType string

const (
	DealTypeSale DealType = "sale"
	DealTypeRent DealType = "rent"
)

func (t DealType) IsValid() bool {
	return t == DealTypeSale || t == DealTypeRent
}

// Deal is a closed sale or rental as read from the CRM. The core never modifies it.
type Deal struct {
	ID         int             `json:"id"`
	Reference  string          `json:"reference"`
	DealType   DealType        `json:"deal_type"`
	Price      decimal.Decimal `json:"price"`
	ClosedDate time.Time       `json:"closed_date"`
}

// Period is an inclusive, caller-chosen date window. No calendar alignment is assumed.
type Period struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

func NewPeriod(start time.Time, end time.Time) (Period, error) {
	p := Period{StartDate: DateOnly(start), EndDate: DateOnly(end)}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (p Period) Validate() error {
	if p.StartDate.IsZero() {
		return validationFailed("start_date", "is required")
	}
	if p.EndDate.IsZero() {
		return validationFailed("end_date", "is required")
	}
	if p.EndDate.Before(p.StartDate) {
		return validationFailed("end_date", "must not be before start_date")
	}
	return nil
}

// Contains reports whether t falls on any day of the period.
func (p Period) Contains(t time.Time) bool {
	d := DateOnly(t.In(p.StartDate.Location()))
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// LineItem is a snapshot of one deal inside a commission report.
type LineItem struct {
	DealId     int             `json:"deal_id"`
	Reference  string          `json:"reference"`
	DealType   DealType        `json:"deal_type"`
	Price      decimal.Decimal `json:"price"`
	Commission decimal.Decimal `json:"commission"`
	ClosedDate time.Time       `json:"closed_date"`
}

// CommissionReport is the aggregate commission row for one period.
type CommissionReport struct {
	ID                    int             `json:"id"`
	StartDate             time.Time       `json:"start_date"`
	EndDate               time.Time       `json:"end_date"`
	CommissionPercentage  decimal.Decimal `json:"commission_percentage"`
	TotalPropertiesCount  int             `json:"total_properties_count"`
	TotalSalesCount       int             `json:"total_sales_count"`
	TotalRentCount        int             `json:"total_rent_count"`
	TotalSalesValue       decimal.Decimal `json:"total_sales_value"`
	TotalRentValue        decimal.Decimal `json:"total_rent_value"`
	TotalCommissionAmount decimal.Decimal `json:"total_commission_amount"`
	ManuallyEdited        bool            `json:"manually_edited"`
	LineItems             []LineItem      `json:"line_items"`
}

func (r *CommissionReport) Period() Period {
	return Period{StartDate: r.StartDate, EndDate: r.EndDate}
}

// AggregatePeriod builds the headline commission report for the deals handed in.
// The caller supplies only closed deals inside the period; nothing is filtered here.
// Only the administration percentage is applied per deal.
func AggregatePeriod(period Period, deals []Deal, settings Settings) (CommissionReport, error) {
	if err := period.Validate(); err != nil {
		return CommissionReport{}, err
	}
	pct := settings.Administration
	if err := ValidatePercentage(SettingAdministration, pct); err != nil {
		return CommissionReport{}, err
	}

	report := CommissionReport{
		StartDate:             period.StartDate,
		EndDate:               period.EndDate,
		CommissionPercentage:  pct,
		TotalSalesValue:       decimal.Zero,
		TotalRentValue:        decimal.Zero,
		TotalCommissionAmount: decimal.Zero,
		LineItems:             make([]LineItem, 0, len(deals)),
	}

	for _, deal := range sortedDeals(deals) {
		if !deal.Price.IsPositive() {
			return CommissionReport{}, invalidInput("price", "deal %d: must be greater than zero, got %s", deal.ID, deal.Price.String())
		}
		switch deal.DealType {
		case DealTypeSale:
			report.TotalSalesCount++
			report.TotalSalesValue = report.TotalSalesValue.Add(deal.Price)
		case DealTypeRent:
			report.TotalRentCount++
			report.TotalRentValue = report.TotalRentValue.Add(deal.Price)
		default:
			return CommissionReport{}, invalidInput("deal_type", "deal %d: unknown deal type %q", deal.ID, deal.DealType)
		}
		report.LineItems = append(report.LineItems, LineItem{
			DealId:     deal.ID,
			Reference:  deal.Reference,
			DealType:   deal.DealType,
			Price:      deal.Price,
			Commission: percentOf(deal.Price, pct),
			ClosedDate: deal.ClosedDate,
		})
	}
	report.TotalPropertiesCount = report.TotalSalesCount + report.TotalRentCount
	report.RecomputeTotal()

	return report, nil
}

// Recalculate re-runs the aggregation over the stored period and overwrites every
// calculated field, the percentage included. Manual overrides are discarded and
// ManuallyEdited is cleared.
func (r *CommissionReport) Recalculate(deals []Deal, settings Settings) error {
	fresh, err := AggregatePeriod(r.Period(), deals, settings)
	if err != nil {
		return err
	}
	fresh.ID = r.ID
	*r = fresh
	return nil
}

// RecomputeTotal derives the total commission from the value totals.
func (r *CommissionReport) RecomputeTotal() {
	r.TotalCommissionAmount = percentOf(r.TotalSalesValue.Add(r.TotalRentValue), r.CommissionPercentage)
}

// sortedDeals returns a copy ordered by closed date, then id.
func sortedDeals(deals []Deal) []Deal {
	out := make([]Deal, len(deals))
	copy(out, deals)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ClosedDate.Equal(out[j].ClosedDate) {
			return out[i].ClosedDate.Before(out[j].ClosedDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
