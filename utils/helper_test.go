package utils

import (
	"testing"
	"time"
)

type sampleInput struct {
	Count *int   `validate:"omitempty,min=0"`
	Name  string `validate:"required"`
}

func TestValidateStruct_ReportsFailedFields(t *testing.T) {
	err := ValidateStruct(sampleInput{Count: NewInt(-1)})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	fields := ProcessValidationErrors(err)
	if fields["Count"] != "min" {
		t.Fatalf("expected Count=min, got %v", fields)
	}
	if fields["Name"] != "required" {
		t.Fatalf("expected Name=required, got %v", fields)
	}
	if err := ValidateStruct(sampleInput{Name: "ok"}); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestParseDateAndBoundaries(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Dubai")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	d, err := ParseDate("2025-03-31", loc)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Hour() != 0 || d.Day() != 31 || d.Location() != loc {
		t.Fatalf("unexpected date %s", d)
	}
	end := EndOfDay(d)
	if end.Day() != 31 || end.Hour() != 23 || end.Nanosecond() != 999999999 {
		t.Fatalf("unexpected end of day %s", end)
	}
	// 22:00 UTC on the 30th is already the 31st in Dubai (UTC+4).
	if got := ConvertToDate(time.Date(2025, 3, 30, 22, 0, 0, 0, time.UTC), loc); !got.Equal(d) {
		t.Fatalf("expected %s, got %s", d, got)
	}
	if _, err := ParseDate("31/03/2025", loc); err == nil {
		t.Fatalf("expected error for wrong layout")
	}
}

func TestJwtRoundTrip(t *testing.T) {
	token, err := JwtGenerate(12, "Mona", "operations")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	parsed, err := JwtValidate(token)
	if err != nil || !parsed.Valid {
		t.Fatalf("JwtValidate: %v", err)
	}
	claim, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok || claim.ID != 12 || claim.Role != "operations" {
		t.Fatalf("unexpected claims %+v", parsed.Claims)
	}
}
