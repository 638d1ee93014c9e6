package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wallet/internal/core"
)

// Operation names the mutation an ExpenseEvent reports.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// ExpenseEvent is published after a successful mutation of the ledger.
// Expense is nil for deletes.
type ExpenseEvent struct {
	MessageID string             `json:"message_id"`
	Operation Operation          `json:"operation"`
	ExpenseID int64              `json:"expense_id"`
	Expense   *core.ExpenseInput `json:"expense,omitempty"`
	Backend   string             `json:"backend"`
	Timestamp time.Time          `json:"timestamp"`
}

// NewExpenseEvent stamps a fresh message id and the current time.
func NewExpenseEvent(op Operation, id int64, in *core.ExpenseInput, backend string) *ExpenseEvent {
	return &ExpenseEvent{
		MessageID: uuid.NewString(),
		Operation: op,
		ExpenseID: id,
		Expense:   in,
		Backend:   backend,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON decodes and checks a message body.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Operation.Valid() {
		return nil, fmt.Errorf("unknown operation %q", msg.Operation)
	}
	if _, err := uuid.Parse(msg.MessageID); err != nil {
		return nil, fmt.Errorf("invalid message id: %w", err)
	}
	if msg.Operation != OperationDelete && msg.Expense == nil {
		return nil, errors.New("missing expense payload")
	}
	return &msg, nil
}
