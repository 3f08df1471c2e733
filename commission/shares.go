package commission

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Role is a participant that is owed a share of a closed deal.
type Role string

const (
	RoleAgent            Role = "agent"
	RoleFinders          Role = "finders"
	RoleReferralInternal Role = "referral_internal"
	RoleReferralExternal Role = "referral_external"
	RoleTeamLeader       Role = "team_leader"
	RoleAdministration   Role = "administration"
)

// Roles is the fixed order shares are computed and reported in.
var Roles = []Role{
	RoleAgent,
	RoleFinders,
	RoleReferralInternal,
	RoleReferralExternal,
	RoleTeamLeader,
	RoleAdministration,
}

// ShareBreakdown is the per-role split of one deal.
//
// AdministrationShare = OperationsManagerFixedShare + AdministrationRemainder holds exactly.
// The remainder is divided among operations staff elsewhere.
type ShareBreakdown struct {
	Price                       decimal.Decimal          `json:"price"`
	Shares                      map[Role]decimal.Decimal `json:"shares"`
	OperationsManagerFixedShare decimal.Decimal          `json:"operations_manager_fixed_share"`
	AdministrationRemainder     decimal.Decimal          `json:"administration_remainder"`
	TotalCommission             decimal.Decimal          `json:"total_commission"`
}

func (b ShareBreakdown) Share(role Role) decimal.Decimal {
	return b.Shares[role]
}

func (b ShareBreakdown) AdministrationShare() decimal.Decimal {
	return b.Shares[RoleAdministration]
}

// ComputeShares applies every role percentage independently to price.
// The percentages are layered, not a partition, so they need not sum to 100.
//
// When the operations manager share exceeds the administration share the
// breakdown is returned as computed along with a *ConfigurationError.
func ComputeShares(price decimal.Decimal, settings Settings) (ShareBreakdown, error) {
	if !price.IsPositive() {
		return ShareBreakdown{}, invalidInput("price", "must be greater than zero, got %s", price.String())
	}
	if err := settings.Validate(); err != nil {
		return ShareBreakdown{}, err
	}

	breakdown := ShareBreakdown{
		Price:  price,
		Shares: make(map[Role]decimal.Decimal, len(Roles)),
	}
	total := decimal.Zero
	for _, role := range Roles {
		share := percentOf(price, settings.Percentage(role))
		breakdown.Shares[role] = share
		total = total.Add(share)
	}
	breakdown.TotalCommission = total

	admin := breakdown.Shares[RoleAdministration]
	breakdown.OperationsManagerFixedShare = percentOf(admin, settings.OperationsManagerShareOfAdmin)
	breakdown.AdministrationRemainder = admin.Sub(breakdown.OperationsManagerFixedShare)

	if breakdown.AdministrationRemainder.IsNegative() {
		return breakdown, &ConfigurationError{
			Key: SettingOperationsManagerShareOfAdmin,
			Message: fmt.Sprintf("operations manager share %s exceeds administration share %s (remainder %s)",
				breakdown.OperationsManagerFixedShare.StringFixed(2), admin.StringFixed(2),
				breakdown.AdministrationRemainder.StringFixed(2)),
		}
	}
	return breakdown, nil
}
