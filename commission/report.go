package commission

import "github.com/shopspring/decimal"

// CommissionReportOverride carries manual edits to a stored commission report.
// Nil fields are left as they are. Id and period boundaries cannot be overridden.
type CommissionReportOverride struct {
	CommissionPercentage  *decimal.Decimal `json:"commission_percentage"`
	TotalPropertiesCount  *int             `json:"total_properties_count" validate:"omitempty,min=0"`
	TotalSalesCount       *int             `json:"total_sales_count" validate:"omitempty,min=0"`
	TotalRentCount        *int             `json:"total_rent_count" validate:"omitempty,min=0"`
	TotalSalesValue       *decimal.Decimal `json:"total_sales_value"`
	TotalRentValue        *decimal.Decimal `json:"total_rent_value"`
	TotalCommissionAmount *decimal.Decimal `json:"total_commission_amount"`
}

// ApplyOverride writes the manual values and validates the result.
// Changing the sales value, rent value or percentage recomputes the total
// commission; an explicit total in the same override is applied afterwards.
// Counts are never adjusted automatically.
func (r *CommissionReport) ApplyOverride(o CommissionReportOverride) error {
	next := *r
	recompute := false

	if o.CommissionPercentage != nil {
		next.CommissionPercentage = *o.CommissionPercentage
		recompute = true
	}
	if o.TotalSalesValue != nil {
		next.TotalSalesValue = *o.TotalSalesValue
		recompute = true
	}
	if o.TotalRentValue != nil {
		next.TotalRentValue = *o.TotalRentValue
		recompute = true
	}
	if o.TotalPropertiesCount != nil {
		next.TotalPropertiesCount = *o.TotalPropertiesCount
	}
	if o.TotalSalesCount != nil {
		next.TotalSalesCount = *o.TotalSalesCount
	}
	if o.TotalRentCount != nil {
		next.TotalRentCount = *o.TotalRentCount
	}

	if err := next.Validate(); err != nil {
		return err
	}
	if recompute {
		next.RecomputeTotal()
	}
	if o.TotalCommissionAmount != nil {
		if o.TotalCommissionAmount.IsNegative() {
			return validationFailed("total_commission_amount", "must not be negative")
		}
		next.TotalCommissionAmount = *o.TotalCommissionAmount
	}

	next.ManuallyEdited = true
	*r = next
	return nil
}

// Validate guards the stored shape of a commission report.
func (r *CommissionReport) Validate() error {
	if err := r.Period().Validate(); err != nil {
		return err
	}
	if r.CommissionPercentage.IsNegative() || r.CommissionPercentage.GreaterThan(hundred) {
		return validationFailed("commission_percentage", "must be between 0 and 100")
	}
	counts := []struct {
		field string
		value int
	}{
		{"total_properties_count", r.TotalPropertiesCount},
		{"total_sales_count", r.TotalSalesCount},
		{"total_rent_count", r.TotalRentCount},
	}
	for _, c := range counts {
		if c.value < 0 {
			return validationFailed(c.field, "must not be negative")
		}
	}
	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"total_sales_value", r.TotalSalesValue},
		{"total_rent_value", r.TotalRentValue},
		{"total_commission_amount", r.TotalCommissionAmount},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return validationFailed(a.field, "must not be negative")
		}
	}
	for _, item := range r.LineItems {
		if !item.Price.IsPositive() {
			return validationFailed("price", "line item %q must have a positive price", item.Reference)
		}
		if item.Commission.IsNegative() {
			return validationFailed("commission", "line item %q must not be negative", item.Reference)
		}
	}
	return nil
}
