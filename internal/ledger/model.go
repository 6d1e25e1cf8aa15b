package ledger

import (
	"sort"
	"time"

	"github.com/yzeid/tally/internal/ledger/split"
)

// Ledger is the settlement record for one expense's split: who paid, who
// owes what, and each participant's settled state. Description and group
// name are denormalized snapshots written at creation time; they can go
// stale if the source expense or group is renamed later.
type Ledger struct {
	ID              int64          `json:"id"`
	ExpenseID       int64          `json:"expense_id"`
	Description     string         `json:"description"`
	TotalAmount     float64        `json:"total_amount"`
	Currency        string         `json:"currency"`
	SplitMethod     split.Method   `json:"split_method"`
	PaidBy          int64          `json:"paid_by"`
	GroupID         *int64         `json:"group_id,omitempty"`
	GroupName       *string        `json:"group_name,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	Participants    []*Participant `json:"participants"`
	InvolvedUserIDs []int64        `json:"involved_user_ids"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Participant is one person's share within a ledger. The payer is a
// participant too and is settled from creation.
type Participant struct {
	UserID     int64    `json:"user_id"`
	AmountOwed float64  `json:"amount_owed"`
	Percentage *float64 `json:"percentage,omitempty"`
	IsSettled  bool     `json:"is_settled"`
}

// Participant returns the participant with the given user ID, or nil.
func (l *Ledger) Participant(userID int64) *Participant {
	for _, p := range l.Participants {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// RecomputeInvolvedUserIDs rebuilds the derived index key: the payer plus
// every participant, deduplicated and sorted. Called whenever the
// participant set is written.
func (l *Ledger) RecomputeInvolvedUserIDs() {
	seen := map[int64]bool{l.PaidBy: true}
	ids := []int64{l.PaidBy}
	for _, p := range l.Participants {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ids = append(ids, p.UserID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	l.InvolvedUserIDs = ids
}
