package commission

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount accepts operator-formatted numbers such as "100,000", " 4.5 " or "-20"
// and rejects anything that is not a number.
func ParseAmount(field string, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, invalidInput(field, "value is required")
	}
	for i, r := range s {
		if r == '-' && i == 0 {
			continue
		}
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, invalidInput(field, "%q is not numeric", raw)
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalidInput(field, "%q is not numeric", raw)
	}
	return d, nil
}

// RoundMoney rounds to two decimal places, halves away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func percentOf(amount decimal.Decimal, pct decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(pct).Shift(-2))
}
