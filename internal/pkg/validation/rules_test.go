package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestIsDocID(t *testing.T) {
	valid := []string{"R100", "2024-CS-01", "A B"}
	invalid := []string{"", "   ", "a/b", `a\b`, ".", ".."}

	for _, s := range valid {
		if !IsDocID(s) {
			t.Errorf("IsDocID(%q) = false", s)
		}
	}
	for _, s := range invalid {
		if IsDocID(s) {
			t.Errorf("IsDocID(%q) = true", s)
		}
	}
}

func TestIsDate(t *testing.T) {
	if !IsDate("2007-02-28") {
		t.Error("2007-02-28 should be valid")
	}
	for _, s := range []string{"2007-02-30", "28/02/2007", "2007-2-8"} {
		if IsDate(s) {
			t.Errorf("IsDate(%q) = true", s)
		}
	}
}

type ruleSample struct {
	RollNo string `validate:"omitempty,docid"`
	DOB    string `validate:"omitempty,isodate"`
	Income string `validate:"omitempty,decimal"`
	Year   string `validate:"omitempty,year"`
	Phone  string `validate:"omitempty,phone"`
}

func TestRegisterRules(t *testing.T) {
	v := validator.New()
	if err := RegisterRules(v); err != nil {
		t.Fatalf("RegisterRules: %v", err)
	}

	ok := ruleSample{RollNo: "R1", DOB: "2008-06-01", Income: "125000.50", Year: "2024", Phone: "+91 98450 12345"}
	if err := v.Struct(ok); err != nil {
		t.Fatalf("valid sample rejected: %v", err)
	}
	if err := v.Struct(ruleSample{}); err != nil {
		t.Fatalf("empty sample rejected: %v", err)
	}

	bad := ruleSample{RollNo: "a/b", DOB: "01-06-2008", Income: "lots", Year: "24", Phone: "call me"}
	err := v.Struct(bad)
	verrs, isValidationErrs := err.(validator.ValidationErrors)
	if !isValidationErrs {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if len(verrs) != 5 {
		t.Errorf("expected 5 failures, got %d: %v", len(verrs), verrs)
	}
}
