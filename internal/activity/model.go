package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActionType identifies what kind of state change an event records.
type ActionType string

const (
	ActionExpenseSplitInGroup ActionType = "EXPENSE_SPLIT_IN_GROUP"
	ActionSettlementUpdated   ActionType = "SETTLEMENT_UPDATED"
	ActionSplitSharesUpdated  ActionType = "SPLIT_SHARES_UPDATED"
	ActionSplitDeleted        ActionType = "SPLIT_DELETED"
	ActionMemberAdded         ActionType = "MEMBER_ADDED"
	ActionMemberRemoved       ActionType = "MEMBER_REMOVED"
)

// Event is one entry in the audit log. Every mutating operation that
// changes balances emits one synchronously as part of the same logical
// operation.
type Event struct {
	ID               uuid.UUID  `json:"id"`
	ActorID          int64      `json:"actor_id"`
	ActorName        string     `json:"actor_name"`
	Action           ActionType `json:"action"`
	Details          string     `json:"details"`
	RelatedExpenseID *int64     `json:"related_expense_id,omitempty"`
	RelatedMemberID  *int64     `json:"related_member_id,omitempty"`
	PreviousValue    *string    `json:"previous_value,omitempty"`
	NewValue         *string    `json:"new_value,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// EventOption customizes an event at construction time.
type EventOption func(*Event)

// WithExpense links the event to the expense it concerns.
func WithExpense(expenseID int64) EventOption {
	return func(e *Event) {
		e.RelatedExpenseID = &expenseID
	}
}

// WithMember links the event to the affected member.
func WithMember(userID int64) EventOption {
	return func(e *Event) {
		e.RelatedMemberID = &userID
	}
}

// WithChange records the before and after values of the mutated field.
func WithChange(previous, next string) EventOption {
	return func(e *Event) {
		e.PreviousValue = &previous
		e.NewValue = &next
	}
}

// NewEvent builds an event with a fresh ID and timestamp.
func NewEvent(actorID int64, actorName string, action ActionType, details string, opts ...EventOption) Event {
	e := Event{
		ID:        uuid.New(),
		ActorID:   actorID,
		ActorName: actorName,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Recorder is the seam through which mutating operations report events to
// the audit log. A Record failure must not roll back the mutation that
// produced the event; callers surface it as a warning instead.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}
