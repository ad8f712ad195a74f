package amqp

import (
	"encoding/json"
	"time"
)

// MonthClosedMessage announces that reconciliation advanced the sync marker:
// a new calendar month was processed. Consumers use it to fan out exports.
type MonthClosedMessage struct {
	Month     string    `json:"month"` // canonical YYYY-MM
	Promoted  int       `json:"promoted"`
	Generated int       `json:"generated"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMonthClosedMessage creates a message for the given reconciliation pass.
func NewMonthClosedMessage(month string, promoted, generated int) *MonthClosedMessage {
	return &MonthClosedMessage{
		Month:     month,
		Promoted:  promoted,
		Generated: generated,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *MonthClosedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MonthClosedMessageFromJSON creates a message from JSON bytes.
func MonthClosedMessageFromJSON(data []byte) (*MonthClosedMessage, error) {
	var msg MonthClosedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
