package expense

import "time"

// RecurrenceInput describes the recurrence of a new expense.
type RecurrenceInput struct {
	Frequency string     `json:"frequency" validate:"required,oneof=DAILY WEEKLY MONTHLY YEARLY"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// CreateExpenseRequest represents the request to create an expense.
type CreateExpenseRequest struct {
	Description string           `json:"description" validate:"required,min=1,max=255"`
	Amount      float64          `json:"amount" validate:"required,gt=0"`
	Currency    string           `json:"currency" validate:"required,len=3"`
	Category    string           `json:"category" validate:"required,min=1,max=100"`
	Date        time.Time        `json:"date" validate:"required"`
	GroupID     *int64           `json:"group_id,omitempty"`
	Recurrence  *RecurrenceInput `json:"recurrence,omitempty"`
}

// UpdateExpenseRequest represents the request to update an expense's own
// fields. Each field is an explicit optional; omitted fields are untouched.
type UpdateExpenseRequest struct {
	Description *string    `json:"description,omitempty" validate:"omitempty,min=1,max=255"`
	Amount      *float64   `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Category    *string    `json:"category,omitempty" validate:"omitempty,min=1,max=100"`
	Date        *time.Time `json:"date,omitempty"`
}

// ExpenseResponse represents the response for an expense.
type ExpenseResponse struct {
	ID          int64       `json:"id"`
	PayerID     int64       `json:"payer_id"`
	Description string      `json:"description"`
	Amount      float64     `json:"amount"`
	Currency    string      `json:"currency"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
	GroupID     *int64      `json:"group_id,omitempty"`
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
	CreatedAt   string      `json:"created_at"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO.
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:          e.ID,
		PayerID:     e.PayerID,
		Description: e.Description,
		Amount:      e.Amount,
		Currency:    e.Currency,
		Category:    e.Category,
		Date:        e.Date.Format("2006-01-02"),
		GroupID:     e.GroupID,
		Recurrence:  e.Recurrence,
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
