package log

import (
	"errors"
	"testing"
)

func TestLogFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentHTTP).
		WithRequestID("req_abc").
		WithHTTPRequest("GET", "/api/summary", "year=2025", "curl").
		WithHTTPResponse(200, 12, true)

	want := map[string]any{
		FieldComponent:  ComponentHTTP,
		FieldRequestID:  "req_abc",
		FieldMethod:     "GET",
		FieldPath:       "/api/summary",
		FieldQuery:      "year=2025",
		FieldUserAgent:  "curl",
		FieldStatusCode: 200,
		FieldDuration:   int64(12),
		FieldSuccess:    true,
	}
	if len(f) != len(want) {
		t.Fatalf("fields: %d, want %d", len(f), len(want))
	}
	for k, v := range want {
		if f[k] != v {
			t.Fatalf("%s = %v, want %v", k, f[k], v)
		}
	}

	slice := f.ToSlice()
	if len(slice) != len(f)*2 {
		t.Fatalf("slice length: %d", len(slice))
	}
}

func TestWithErrorNilIsNoOp(t *testing.T) {
	f := NewFields().WithError(nil)
	if _, ok := f[FieldError]; ok {
		t.Fatalf("nil error must not add a field")
	}

	f = f.WithError(errors.New("boom"))
	if f[FieldError] != "boom" {
		t.Fatalf("error field: %v", f[FieldError])
	}
}
