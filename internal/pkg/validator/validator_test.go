package validator

import (
	"strings"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0190f1b2-7c3e-7a1b-8c2d-1234567890ab",
		"550e8400-e29b-41d4-a716-446655440000",
		"550E8400-E29B-41D4-A716-446655440000",
	}
	invalid := []string{"", "not-a-uuid", "550e8400-e29b-01d4-a716-446655440000", "550e8400e29b41d4a716446655440000"}
	for _, s := range valid {
		if !IsValidUUID(s) {
			t.Errorf("IsValidUUID(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidUUID(s) {
			t.Errorf("IsValidUUID(%q) = true, want false", s)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidClock(t *testing.T) {
	valid := []string{"08:00", "17:30", "23:59:59", "00:00"}
	invalid := []string{"24:00", "8am", "08:60", "", "2024-01-01"}
	for _, s := range valid {
		if _, ok := IsValidClock(s); !ok {
			t.Errorf("IsValidClock(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidClock(s); ok {
			t.Errorf("IsValidClock(%q) = true, want false", s)
		}
	}
}

func TestParseClockOrDateTime(t *testing.T) {
	cases := []struct {
		input   string
		ok      bool
		hasDate bool
	}{
		{"08:15", true, false},
		{"08:15:30", true, false},
		{"2024-03-04 08:15:00", true, true},
		{"2024-03-04 08:15", true, true},
		{"2024-03-04T08:15:00+07:00", true, true},
		{"tomorrow", false, false},
		{"", false, false},
	}
	for _, c := range cases {
		got, ok := ParseClockOrDateTime(c.input)
		if ok != c.ok {
			t.Errorf("ParseClockOrDateTime(%q) ok = %v, want %v", c.input, ok, c.ok)
			continue
		}
		if ok && got.HasDate != c.hasDate {
			t.Errorf("ParseClockOrDateTime(%q) HasDate = %v, want %v", c.input, got.HasDate, c.hasDate)
		}
		if ok && got.HasZone != strings.Contains(c.input, "T") {
			t.Errorf("ParseClockOrDateTime(%q) HasZone = %v", c.input, got.HasZone)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "latitude", Message: "invalid"},
		{Field: "photo", Message: "required"},
	}
	got := errs.Error()
	want := "latitude: invalid; photo: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "latitude", Message: "invalid"},
		{Field: "photo", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"latitude": "invalid", "photo": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}
