package models

import (
	"strings"
	"testing"
)

func TestFormPreferences_Validate(t *testing.T) {
	valid := FormPreferences{MinMonthlyRent: 1000, MaxMonthlyRent: 2000, SchoolID: 1}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid preferences rejected: %v", err)
	}

	inverted := FormPreferences{MinMonthlyRent: 2000, MaxMonthlyRent: 1000, SchoolID: 1}
	if err := inverted.Validate(); err == nil {
		t.Fatalf("inverted rent range should be rejected")
	}

	noSchool := FormPreferences{MinMonthlyRent: 1000, MaxMonthlyRent: 2000}
	if err := noSchool.Validate(); err == nil {
		t.Fatalf("missing school should be rejected")
	}

	negative := FormPreferences{MinMonthlyRent: -1, MaxMonthlyRent: 2000, SchoolID: 1}
	if err := negative.Validate(); err == nil {
		t.Fatalf("negative rent should be rejected")
	}
}

func TestDescriptionEnquiry_Validate(t *testing.T) {
	ok := DescriptionEnquiry{RequirementDescription: "room near NUS, 1000-1500 SGD"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid description rejected: %v", err)
	}

	empty := DescriptionEnquiry{}
	if err := empty.Validate(); err == nil {
		t.Fatalf("empty description should be rejected")
	}

	long := DescriptionEnquiry{RequirementDescription: strings.Repeat("a", 501)}
	if err := long.Validate(); err == nil {
		t.Fatalf("over-length description should be rejected")
	}
}

func TestCanonicalizeCoordinates_DoesNotMutateInput(t *testing.T) {
	in := []Property{
		{PropertyID: 1},
		{PropertyID: 2},
	}

	out := CanonicalizeCoordinates(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(out))
	}
	if &in[0] == &out[0] {
		t.Fatalf("canonicalization must copy, not alias")
	}
	if !out[0].Latitude.IsZero() || !out[0].Longitude.IsZero() {
		t.Fatalf("absent coordinates should canonicalize to zero")
	}

	if CanonicalizeCoordinates(nil) != nil {
		t.Fatalf("nil input should stay nil")
	}
}
