package commission

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleSettings() Settings {
	return Settings{
		Agent:                         dec("2"),
		Finders:                       dec("1"),
		ReferralInternal:              dec("0.5"),
		ReferralExternal:              dec("2"),
		TeamLeader:                    dec("1"),
		Administration:                dec("4"),
		OperationsManagerShareOfAdmin: dec("0.5"),
	}
}

func TestComputeShares_ExampleDeal(t *testing.T) {
	b, err := ComputeShares(dec("100000"), sampleSettings())
	if err != nil {
		t.Fatalf("ComputeShares: %v", err)
	}
	cases := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"agent", b.Share(RoleAgent), "2000.00"},
		{"finders", b.Share(RoleFinders), "1000.00"},
		{"referral_internal", b.Share(RoleReferralInternal), "500.00"},
		{"referral_external", b.Share(RoleReferralExternal), "2000.00"},
		{"team_leader", b.Share(RoleTeamLeader), "1000.00"},
		{"administration", b.AdministrationShare(), "4000.00"},
		{"operations_manager_fixed_share", b.OperationsManagerFixedShare, "20.00"},
		{"administration_remainder", b.AdministrationRemainder, "3980.00"},
		{"total_commission", b.TotalCommission, "10500.00"},
	}
	for _, tc := range cases {
		if tc.got.StringFixed(2) != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, tc.got.StringFixed(2))
		}
	}
}

func TestComputeShares_NegativeRemainderIsConfigurationError(t *testing.T) {
	s := sampleSettings()
	s.OperationsManagerShareOfAdmin = dec("150")

	b, err := ComputeShares(dec("100000"), s)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Key != SettingOperationsManagerShareOfAdmin {
		t.Fatalf("expected key %s, got %s", SettingOperationsManagerShareOfAdmin, cfgErr.Key)
	}
	if b.OperationsManagerFixedShare.StringFixed(2) != "6000.00" {
		t.Fatalf("expected fixed share 6000.00, got %s", b.OperationsManagerFixedShare.StringFixed(2))
	}
	if b.AdministrationRemainder.StringFixed(2) != "-2000.00" {
		t.Fatalf("expected remainder -2000.00 (not clamped), got %s", b.AdministrationRemainder.StringFixed(2))
	}
}

func TestComputeShares_FullAdministrationShareLeavesZeroRemainder(t *testing.T) {
	s := sampleSettings()
	s.OperationsManagerShareOfAdmin = dec("100")

	b, err := ComputeShares(dec("100000"), s)
	if err != nil {
		t.Fatalf("ComputeShares: %v", err)
	}
	if !b.AdministrationRemainder.IsZero() {
		t.Fatalf("expected zero remainder, got %s", b.AdministrationRemainder)
	}
}

func TestComputeShares_RoundingLaw(t *testing.T) {
	prices := []string{"0.01", "1", "333.33", "123456.789", "99999.995", "7"}
	pcts := []string{"0", "0.333", "1.125", "2.5", "3.3333", "12.345", "100"}
	for _, p := range prices {
		for _, pct := range pcts {
			s := Settings{
				Agent:                         dec(pct),
				Finders:                       dec(pct),
				ReferralInternal:              dec(pct),
				ReferralExternal:              dec(pct),
				TeamLeader:                    dec(pct),
				Administration:                dec(pct),
				OperationsManagerShareOfAdmin: dec(pct),
			}
			b, err := ComputeShares(dec(p), s)
			if err != nil {
				t.Fatalf("ComputeShares(%s, %s): %v", p, pct, err)
			}
			for _, role := range Roles {
				share := b.Share(role)
				if !share.Equal(share.Round(2)) {
					t.Fatalf("price=%s pct=%s role=%s: share %s has more than 2 decimals", p, pct, role, share)
				}
			}
			if !b.OperationsManagerFixedShare.Equal(b.OperationsManagerFixedShare.Round(2)) {
				t.Fatalf("price=%s pct=%s: fixed share %s not rounded", p, pct, b.OperationsManagerFixedShare)
			}
			sum := b.OperationsManagerFixedShare.Add(b.AdministrationRemainder)
			if !sum.Equal(b.AdministrationShare()) {
				t.Fatalf("price=%s pct=%s: fixed %s + remainder %s != admin %s", p, pct,
					b.OperationsManagerFixedShare, b.AdministrationRemainder, b.AdministrationShare())
			}
		}
	}
}

func TestComputeShares_HalfUpRounding(t *testing.T) {
	s := Settings{Agent: dec("1"), OperationsManagerShareOfAdmin: dec("0")}
	// 1% of 100.50 = 1.005 -> 1.01
	b, err := ComputeShares(dec("100.50"), s)
	if err != nil {
		t.Fatalf("ComputeShares: %v", err)
	}
	if b.Share(RoleAgent).StringFixed(2) != "1.01" {
		t.Fatalf("expected 1.01, got %s", b.Share(RoleAgent).StringFixed(2))
	}
}

func TestComputeShares_Deterministic(t *testing.T) {
	first, err := ComputeShares(dec("254321.77"), sampleSettings())
	if err != nil {
		t.Fatalf("ComputeShares: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := ComputeShares(dec("254321.77"), sampleSettings())
		if err != nil {
			t.Fatalf("ComputeShares: %v", err)
		}
		for _, role := range Roles {
			if again.Share(role).String() != first.Share(role).String() {
				t.Fatalf("role %s differs between calls: %s vs %s", role, first.Share(role), again.Share(role))
			}
		}
		if again.AdministrationRemainder.String() != first.AdministrationRemainder.String() {
			t.Fatalf("remainder differs between calls")
		}
	}
}

func TestComputeShares_InvalidInput(t *testing.T) {
	outOfRange := sampleSettings()
	outOfRange.TeamLeader = dec("101")
	negative := sampleSettings()
	negative.Finders = dec("-1")
	negativeManager := sampleSettings()
	negativeManager.OperationsManagerShareOfAdmin = dec("-0.5")

	cases := []struct {
		name     string
		price    string
		settings Settings
		field    string
	}{
		{"zero price", "0", sampleSettings(), "price"},
		{"negative price", "-10", sampleSettings(), "price"},
		{"percentage above 100", "1000", outOfRange, "team_leader"},
		{"negative percentage", "1000", negative, "finders"},
		{"negative manager share", "1000", negativeManager, SettingOperationsManagerShareOfAdmin},
	}
	for _, tc := range cases {
		_, err := ComputeShares(dec(tc.price), tc.settings)
		var inputErr *InvalidInputError
		if !errors.As(err, &inputErr) {
			t.Fatalf("%s: expected InvalidInputError, got %v", tc.name, err)
		}
		if inputErr.Field != tc.field {
			t.Fatalf("%s: expected field %s, got %s", tc.name, tc.field, inputErr.Field)
		}
	}
}

func TestSettingsFromMap_MissingKey(t *testing.T) {
	values := sampleSettings().AsMap()
	delete(values, SettingTeamLeader)

	_, err := SettingsFromMap(values)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Key != SettingTeamLeader {
		t.Fatalf("expected missing key %s, got %s", SettingTeamLeader, cfgErr.Key)
	}
}

func TestSettingsFromMap_RoundTrip(t *testing.T) {
	s, err := SettingsFromMap(sampleSettings().AsMap())
	if err != nil {
		t.Fatalf("SettingsFromMap: %v", err)
	}
	if !s.Administration.Equal(dec("4")) || !s.OperationsManagerShareOfAdmin.Equal(dec("0.5")) {
		t.Fatalf("unexpected settings %+v", s)
	}
}

func TestValidateSetting(t *testing.T) {
	if err := ValidateSetting(SettingOperationsManagerShareOfAdmin, dec("150")); err != nil {
		t.Fatalf("manager share above 100 should be accepted, got %v", err)
	}
	if err := ValidateSetting(SettingAgent, dec("150")); err == nil {
		t.Fatalf("expected error for agent percentage above 100")
	}
	if err := ValidateSetting("bonus", dec("1")); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"100000", "100000"},
		{"100,000", "100000"},
		{" 4.5 ", "4.5"},
		{"$1,234.50", "1234.5"},
		{"-20", "-20"},
	}
	for _, tc := range cases {
		d, err := ParseAmount("price", tc.in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) error: %v", tc.in, err)
		}
		if d.String() != tc.expected {
			t.Fatalf("ParseAmount(%q) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}

	for _, bad := range []string{"", "abc", "12a", "1-2"} {
		_, err := ParseAmount("price", bad)
		var inputErr *InvalidInputError
		if !errors.As(err, &inputErr) {
			t.Fatalf("ParseAmount(%q) expected InvalidInputError, got %v", bad, err)
		}
	}
}
