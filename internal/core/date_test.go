package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 {
		t.Fatalf("unexpected parts: %d-%d-%d", d.Year(), d.Month(), d.Day())
	}

	bads := []string{"", "2024-13-01", "2023-02-29", "29/02/2024", "2024-2-9"}
	for i, s := range bads {
		if _, err := ParseDate(s); err == nil {
			t.Fatalf("case %d (%q) expected error", i, s)
		}
	}
}

func TestDateValidate(t *testing.T) {
	if err := NewDate(2025, 6, 15).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Date{Time: time.Time{}}).Validate(); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestDateSameMonth(t *testing.T) {
	a := NewDate(2025, 3, 1)
	b := NewDate(2025, 3, 31)
	c := NewDate(2024, 3, 15)
	if !a.SameMonth(b) {
		t.Fatalf("expected same month")
	}
	if a.SameMonth(c) {
		t.Fatalf("different years must not match")
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, 1, 5)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-01-05"` {
		t.Fatalf("unexpected JSON: %s", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip mismatch: %s", back)
	}
}
