package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType routes a message to its handler in the worker.
type MessageType string

const (
	TypeTransactionSync MessageType = "transaction.sync"
	TypeBudgetAlert     MessageType = "notification.budget_alert"
)

// Envelope is the wire format of every message on the queue.
type Envelope struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// TransactionSyncMessage announces a newly appended ledger entry. It carries
// only the id; the worker reads the row from the database.
type TransactionSyncMessage struct {
	ID int64 `json:"id"`
}

// BudgetAlertMessage asks the worker to deliver a budget notification.
type BudgetAlertMessage struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

func newEnvelope(t MessageType, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return &Envelope{Type: t, Timestamp: time.Now().UTC(), Data: data}, nil
}

// NewTransactionSyncMessage wraps a sync request for transaction id.
func NewTransactionSyncMessage(id int64) (*Envelope, error) {
	return newEnvelope(TypeTransactionSync, TransactionSyncMessage{ID: id})
}

// NewBudgetAlertMessage wraps a notification for the phone number to.
func NewBudgetAlertMessage(to, body string) (*Envelope, error) {
	return newEnvelope(TypeBudgetAlert, BudgetAlertMessage{To: to, Body: body})
}

// ToJSON converts the message to JSON bytes
func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EnvelopeFromJSON decodes a delivery body.
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Type == "" {
		return nil, fmt.Errorf("message has no type")
	}
	return &env, nil
}

// TransactionSync decodes the payload of a TypeTransactionSync envelope.
func (e *Envelope) TransactionSync() (*TransactionSyncMessage, error) {
	if e.Type != TypeTransactionSync {
		return nil, fmt.Errorf("message type %q is not %q", e.Type, TypeTransactionSync)
	}
	var msg TransactionSyncMessage
	if err := json.Unmarshal(e.Data, &msg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", e.Type, err)
	}
	if msg.ID <= 0 {
		return nil, fmt.Errorf("decode %s: invalid id %d", e.Type, msg.ID)
	}
	return &msg, nil
}

// BudgetAlert decodes the payload of a TypeBudgetAlert envelope.
func (e *Envelope) BudgetAlert() (*BudgetAlertMessage, error) {
	if e.Type != TypeBudgetAlert {
		return nil, fmt.Errorf("message type %q is not %q", e.Type, TypeBudgetAlert)
	}
	var msg BudgetAlertMessage
	if err := json.Unmarshal(e.Data, &msg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", e.Type, err)
	}
	if msg.To == "" {
		return nil, fmt.Errorf("decode %s: missing recipient", e.Type)
	}
	return &msg, nil
}
