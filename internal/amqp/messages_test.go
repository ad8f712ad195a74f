package amqp

import "testing"

func TestMonthClosedMessageRoundTrip(t *testing.T) {
	msg := NewMonthClosedMessage("2025-03", 2, 3)
	if msg.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	back, err := MonthClosedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Month != "2025-03" || back.Promoted != 2 || back.Generated != 3 {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestMonthClosedMessageFromJSONInvalid(t *testing.T) {
	if _, err := MonthClosedMessageFromJSON([]byte("nope")); err == nil {
		t.Fatalf("expected error")
	}
}
