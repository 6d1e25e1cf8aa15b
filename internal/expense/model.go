package expense

import "time"

// Frequency is how often a recurring expense repeats.
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Recurrence describes how an expense repeats. NextDate is the next
// occurrence the worker will materialize; EndDate, when set, stops the
// series after that day.
type Recurrence struct {
	Frequency Frequency  `json:"frequency"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	NextDate  time.Time  `json:"next_date"`
}

// Expense represents an amount paid by one user on a date. It carries no
// split information of its own; splitting creates a separate settlement
// ledger referencing the expense.
type Expense struct {
	ID          int64       `json:"id"`
	PayerID     int64       `json:"payer_id"`
	Description string      `json:"description"`
	Amount      float64     `json:"amount"`
	Currency    string      `json:"currency"`
	Category    string      `json:"category"`
	Date        time.Time   `json:"date"`
	GroupID     *int64      `json:"group_id,omitempty"`
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
