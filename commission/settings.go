package commission

import "github.com/shopspring/decimal"

// Setting keys as stored in the commission_settings table.
const (
	SettingAgent                         = "agent"
	SettingFinders                       = "finders"
	SettingReferralInternal              = "referral_internal"
	SettingReferralExternal              = "referral_external"
	SettingTeamLeader                    = "team_leader"
	SettingAdministration                = "administration"
	SettingOperationsManagerShareOfAdmin = "operations_manager_share_of_admin"
)

// SettingKeys lists every required key in the order they are checked.
var SettingKeys = []string{
	SettingAgent,
	SettingFinders,
	SettingReferralInternal,
	SettingReferralExternal,
	SettingTeamLeader,
	SettingAdministration,
	SettingOperationsManagerShareOfAdmin,
}

var hundred = decimal.NewFromInt(100)

// Settings is a point-in-time snapshot of the commission percentages (0-100).
// OperationsManagerShareOfAdmin is a percentage of the administration share, not of the deal price.
type Settings struct {
	Agent                         decimal.Decimal `json:"agent"`
	Finders                       decimal.Decimal `json:"finders"`
	ReferralInternal              decimal.Decimal `json:"referral_internal"`
	ReferralExternal              decimal.Decimal `json:"referral_external"`
	TeamLeader                    decimal.Decimal `json:"team_leader"`
	Administration                decimal.Decimal `json:"administration"`
	OperationsManagerShareOfAdmin decimal.Decimal `json:"operations_manager_share_of_admin"`
}

// SettingsFromMap builds a snapshot from raw key/value rows.
// A missing key is a configuration error; it is never read as zero.
func SettingsFromMap(values map[string]decimal.Decimal) (Settings, error) {
	for _, key := range SettingKeys {
		if _, ok := values[key]; !ok {
			return Settings{}, &ConfigurationError{Key: key, Message: "required setting is missing"}
		}
	}
	return Settings{
		Agent:                         values[SettingAgent],
		Finders:                       values[SettingFinders],
		ReferralInternal:              values[SettingReferralInternal],
		ReferralExternal:              values[SettingReferralExternal],
		TeamLeader:                    values[SettingTeamLeader],
		Administration:                values[SettingAdministration],
		OperationsManagerShareOfAdmin: values[SettingOperationsManagerShareOfAdmin],
	}, nil
}

func (s Settings) AsMap() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		SettingAgent:                         s.Agent,
		SettingFinders:                       s.Finders,
		SettingReferralInternal:              s.ReferralInternal,
		SettingReferralExternal:              s.ReferralExternal,
		SettingTeamLeader:                    s.TeamLeader,
		SettingAdministration:                s.Administration,
		SettingOperationsManagerShareOfAdmin: s.OperationsManagerShareOfAdmin,
	}
}

// Percentage returns the configured percentage for a deal-level role.
func (s Settings) Percentage(role Role) decimal.Decimal {
	switch role {
	case RoleAgent:
		return s.Agent
	case RoleFinders:
		return s.Finders
	case RoleReferralInternal:
		return s.ReferralInternal
	case RoleReferralExternal:
		return s.ReferralExternal
	case RoleTeamLeader:
		return s.TeamLeader
	case RoleAdministration:
		return s.Administration
	}
	return decimal.Zero
}

// Validate checks that role percentages are within [0,100] and that the
// operations manager share is non-negative. A share above 100 is reported
// later as a negative administration remainder.
func (s Settings) Validate() error {
	for _, role := range Roles {
		if err := ValidatePercentage(string(role), s.Percentage(role)); err != nil {
			return err
		}
	}
	if s.OperationsManagerShareOfAdmin.IsNegative() {
		return invalidInput(SettingOperationsManagerShareOfAdmin, "must not be negative")
	}
	return nil
}

// ValidateSetting checks a single key/value pair before it is written by the settings page.
func ValidateSetting(key string, value decimal.Decimal) error {
	switch key {
	case SettingOperationsManagerShareOfAdmin:
		if value.IsNegative() {
			return invalidInput(key, "must not be negative")
		}
		return nil
	case SettingAgent, SettingFinders, SettingReferralInternal, SettingReferralExternal, SettingTeamLeader, SettingAdministration:
		return ValidatePercentage(key, value)
	}
	return invalidInput(key, "unknown commission setting")
}

func ValidatePercentage(field string, pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return invalidInput(field, "percentage %s is outside 0-100", pct.String())
	}
	return nil
}
