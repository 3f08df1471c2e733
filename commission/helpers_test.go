package commission

import "github.com/shopspring/decimal"

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func decFromInt(v int) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}
