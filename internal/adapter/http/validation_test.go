package http

import (
	"errors"
	"strings"
	"testing"
)

func TestPlateValidation(t *testing.T) {
	type P struct {
		Plate string `json:"registration_plate" validate:"plate"`
	}
	cv := NewValidator()

	for _, s := range []string{"DK-1234-A", "dk 1234 a", "A", " TH-99-ZZ ", strings.Repeat("A", 20)} {
		if err := cv.Validate(P{Plate: s}); err != nil {
			t.Fatalf("expected valid plate %q, got err: %v", s, err)
		}
	}
	for _, s := range []string{
		"",                      // empty
		"   ",                   // blank
		"DK_1234",               // underscore
		"-DK1",                  // leading dash
		strings.Repeat("A", 21), // too long
		"DK/1234",               // slash
	} {
		err := cv.Validate(P{Plate: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if !containsFieldMsg(ToFieldErrors(err), "registration_plate", "letters, digits") {
			t.Fatalf("expected plate message for %q, got: %+v", s, ToFieldErrors(err))
		}
	}
}

func TestCategoryAndRoleValidation(t *testing.T) {
	type P struct {
		Category string  `json:"vehicle_category" validate:"category"`
		Role     *string `json:"role" validate:"omitempty,role"`
	}
	cv := NewValidator()
	role := func(s string) *string { return &s }

	for _, p := range []P{
		{Category: "VL"},
		{Category: "pl", Role: role("superviseur")},
		{Category: " TAXI ", Role: role("admin")},
	} {
		if err := cv.Validate(p); err != nil {
			t.Fatalf("expected valid %+v, got %v", p, err)
		}
	}

	err := cv.Validate(P{Category: "CTBUS", Role: role("boss")})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)
	if !containsFieldMsg(fe, "vehicle_category", "VL, PL, TAXI") {
		t.Fatalf("missing category message: %+v", fe)
	}
	if !containsFieldMsg(fe, "role", "technician, supervisor") {
		t.Fatalf("missing role message: %+v", fe)
	}
}

func TestRequiredAndBoundsMapping(t *testing.T) {
	type P struct {
		Name  string   `json:"name" validate:"required"`
		Email string   `json:"email" validate:"email"`
		Date  string   `json:"visit_date" validate:"datetime=2006-01-02"`
		Lat   *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
		Pass  string   `validate:"min=6"`
	}
	cv := NewValidator()
	lat := 91.0

	err := cv.Validate(P{Email: "nope", Date: "31/01/2024", Lat: &lat, Pass: "123"})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)

	if !containsFieldMsg(fe, "name", "is required") {
		t.Fatalf("missing 'is required' for name: %+v", fe)
	}
	if !containsFieldMsg(fe, "email", "valid email") {
		t.Fatalf("missing email message: %+v", fe)
	}
	if !containsFieldMsg(fe, "visit_date", "YYYY-MM-DD") {
		t.Fatalf("missing date message: %+v", fe)
	}
	if !containsFieldMsg(fe, "latitude", "less than or equal to 90") {
		t.Fatalf("missing lte message: %+v", fe)
	}
	// no json tag falls back to the Go field name
	if !containsFieldMsg(fe, "Pass", "at least 6") {
		t.Fatalf("missing min message: %+v", fe)
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	fe := ToFieldErrors(errors.New("boom"))
	if len(fe) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(fe))
	}
	if fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe[0])
	}
}
