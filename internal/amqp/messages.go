package amqp

import (
	"encoding/json"
	"time"
)

// DecisionMessage announces that a claim received its disposition. It
// carries the full claim so consumers (notifier, finance export) do not
// need database access.
type DecisionMessage struct {
	ID          int64     `json:"id"`
	Owner       string    `json:"owner"`
	Status      string    `json:"status"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        string    `json:"date"` // YYYY-MM-DD
	DecidedBy   string    `json:"decided_by"`
	Timestamp   time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *DecisionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DecisionMessageFromJSON creates a message from JSON bytes
func DecisionMessageFromJSON(data []byte) (*DecisionMessage, error) {
	var msg DecisionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
