package events

import (
	"encoding/json"
	"time"
)

// RefreshCompletedMessage announces that a report rebuild finished.
// It carries run metadata only, consumers fetch the report itself
// over the HTTP API.
type RefreshCompletedMessage struct {
	RunID        string    `json:"run_id"`
	GeneratedAt  time.Time `json:"generated_at"`
	Periods      int       `json:"periods"`
	Transactions int       `json:"transactions"`
	Skipped      int       `json:"skipped"`
	Empty        bool      `json:"empty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewRefreshCompletedMessage creates a message describing one refresh run.
func NewRefreshCompletedMessage(runID string, generatedAt time.Time, periods, transactions, skipped int, empty bool) *RefreshCompletedMessage {
	return &RefreshCompletedMessage{
		RunID:        runID,
		GeneratedAt:  generatedAt,
		Periods:      periods,
		Transactions: transactions,
		Skipped:      skipped,
		Empty:        empty,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RefreshCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshCompletedMessageFromJSON parses a message from JSON bytes.
func RefreshCompletedMessageFromJSON(data []byte) (*RefreshCompletedMessage, error) {
	var msg RefreshCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
