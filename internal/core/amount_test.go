package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0.00", "", false},
		{"", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
	}
	for i, tc := range cases {
		d, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("case %d (%q) expected ok, got %v", i, tc.in, err)
			}
			if d.String() != tc.out {
				t.Fatalf("case %d (%q) expected %s, got %s", i, tc.in, tc.out, d)
			}
			continue
		}
		if err == nil {
			t.Fatalf("case %d (%q) expected error", i, tc.in)
		}
	}
}

func TestParseSavedAmountAllowsZero(t *testing.T) {
	d, err := ParseSavedAmount("0")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !d.IsZero() {
		t.Fatalf("expected zero, got %s", d)
	}

	if _, err := ParseSavedAmount("-1"); err == nil {
		t.Fatalf("expected error for negative")
	}
}
