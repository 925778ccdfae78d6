package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"expensetracker/internal/core"
)

type EventType string

const (
	EventExpenseCreated EventType = "expense.created"
	EventExpenseDeleted EventType = "expense.deleted"
)

// ExpensePayload is the wire form of a created record. Amounts travel as
// integer cents so consumers never round.
type ExpensePayload struct {
	ID             string    `json:"id"`
	AmountCents    int64     `json:"amount_cents"`
	Category       string    `json:"category"`
	Description    string    `json:"description"`
	Date           string    `json:"date"`
	CreatedAt      time.Time `json:"created_at"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
}

// ExpenseEvent is published after every successful create or delete.
// Deletions carry only the ID.
type ExpenseEvent struct {
	Type      EventType       `json:"type"`
	ID        string          `json:"id"`
	Expense   *ExpensePayload `json:"expense,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewExpenseCreatedEvent(e core.Expense) *ExpenseEvent {
	return &ExpenseEvent{
		Type: EventExpenseCreated,
		ID:   e.ID,
		Expense: &ExpensePayload{
			ID:             e.ID,
			AmountCents:    e.Amount.Cents,
			Category:       e.Category,
			Description:    e.Description,
			Date:           e.Date,
			CreatedAt:      e.CreatedAt,
			IdempotencyKey: e.IdempotencyKey,
		},
		Timestamp: time.Now().UTC(),
	}
}

func NewExpenseDeletedEvent(id string) *ExpenseEvent {
	return &ExpenseEvent{
		Type:      EventExpenseDeleted,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON decodes and sanity-checks an event body.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case EventExpenseCreated:
		if msg.Expense == nil {
			return nil, fmt.Errorf("%s event without expense payload", msg.Type)
		}
	case EventExpenseDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("%s event without id", msg.Type)
	}
	return &msg, nil
}

// Record converts the payload back into a domain record.
func (p ExpensePayload) Record() core.Expense {
	return core.Expense{
		ID:             p.ID,
		Amount:         core.Money{Cents: p.AmountCents},
		Category:       p.Category,
		Description:    p.Description,
		Date:           p.Date,
		CreatedAt:      p.CreatedAt.UTC(),
		IdempotencyKey: p.IdempotencyKey,
	}
}
