package amqp

import (
	"encoding/json"
	"time"
)

// TransactionSyncMessage represents a lightweight message for syncing a
// transaction to the export sink. Contains only the identifiers, the worker
// will fetch the full transaction from the store.
type TransactionSyncMessage struct {
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionSyncMessage creates a new sync message with just the identifiers
func NewTransactionSyncMessage(userID, transactionID string) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		UserID:        userID,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSyncMessageFromJSON creates a message from JSON bytes
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SolvencyAlertMessage is published when a forecast finds a month whose
// projected need spending exceeds the needs allocation.
type SolvencyAlertMessage struct {
	UserID            string    `json:"user_id"`
	FirstFailingMonth string    `json:"first_failing_month"`
	FailingMonths     []string  `json:"failing_months"`
	HorizonMonths     int       `json:"horizon_months"`
	Timestamp         time.Time `json:"timestamp"`
}

// NewSolvencyAlertMessage creates a new alert message
func NewSolvencyAlertMessage(userID, firstFailingMonth string, failingMonths []string, horizonMonths int) *SolvencyAlertMessage {
	return &SolvencyAlertMessage{
		UserID:            userID,
		FirstFailingMonth: firstFailingMonth,
		FailingMonths:     failingMonths,
		HorizonMonths:     horizonMonths,
		Timestamp:         time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SolvencyAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SolvencyAlertMessageFromJSON creates a message from JSON bytes
func SolvencyAlertMessageFromJSON(data []byte) (*SolvencyAlertMessage, error) {
	var msg SolvencyAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
